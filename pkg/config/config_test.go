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

package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", ConfigFile)

	cfg := NewDefaultConfig()
	cfg.SetPath(path)
	cfg.LogLevel = "debug"
	cfg.ApiPort = 9000
	cfg.TimeScale = 2000
	require.NoError(t, cfg.Persist(false))

	loaded := NewDefaultConfig()
	loaded.SetPath(path)
	require.NoError(t, loaded.Load())
	assert.Equal(t, "debug", loaded.LogLevel)
	assert.Equal(t, 9000, loaded.ApiPort)
	assert.Equal(t, float32(2000), loaded.TimeScale)
	assert.Equal(t, DefaultValuesPerDivision, loaded.ValuesPerDivision)
}

func TestPersistRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	cfg := NewDefaultConfig()
	cfg.SetPath(path)
	require.NoError(t, cfg.Persist(false))

	err := cfg.Persist(false)
	var exists ErrConfigFileExists
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, path, exists.Path)

	assert.NoError(t, cfg.Persist(true))
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetPath(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, cfg.Load())
	assert.Equal(t, DefaultApiPort, cfg.ApiPort)
	assert.Equal(t, "127.0.0.1:8010", cfg.ApiAddress())
}
