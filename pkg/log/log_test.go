/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, "warning")
	defer Init(os.Stderr, "info")

	Info("hidden %d", 1)
	Warning("shown %d", 2)
	Error("shown %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, WarningPrefix+"shown 2")
	assert.Contains(t, out, ErrorPrefix+"shown 3")
	assert.Contains(t, out, LogPrefix)
}

func TestInitWrongLevelFallsBackToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, "loud")
	defer Init(os.Stderr, "info")

	assert.Equal(t, InfoLevel, GetLevel())
	assert.Contains(t, buf.String(), "Wrong log level")
}

func TestWriterDiscardsBelowDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, "info")
	defer Init(os.Stderr, "info")

	Writer().Write([]byte("access"))
	assert.Empty(t, buf.String())

	Init(buf, "debug")
	Writer().Write([]byte("access"))
	assert.Equal(t, "access", buf.String())
}
