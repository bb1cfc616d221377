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

package scope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-scope/pkg/chart"
)

func TestToScreen(t *testing.T) {
	s := NewFrameSink(850, 500, 10)
	assert.Equal(t, float32(250), s.ToScreen(0))
	assert.Equal(t, float32(500), s.ToScreen(5))
	assert.Equal(t, float32(0), s.ToScreen(-5))
	assert.Equal(t, float32(300), s.ToScreen(1))
}

func TestNewFrameSinkDefaults(t *testing.T) {
	s := NewFrameSink(0, 0, 0)
	assert.Equal(t, 850, s.pointCount)
	assert.Equal(t, float32(500), s.axisMax)
	assert.Equal(t, 10, s.yDivisions)
}

func TestPublishResamplesAndDropsNaN(t *testing.T) {
	s := NewFrameSink(8, 500, 10)
	nan := float32(math.NaN())
	s.Publish(chart.Channel1, []float32{0, 1, nan, 3})

	f := s.Frame(chart.Channel1)
	require.Len(t, f.Points, 8)
	want := []interface{}{float32(250), float32(250), float32(300), float32(300), nil, nil, float32(400), float32(400)}
	for i, p := range f.Points {
		if want[i] == nil {
			assert.Nil(t, p, "point %d", i)
			continue
		}
		require.NotNil(t, p, "point %d", i)
		assert.Equal(t, want[i], *p, "point %d", i)
	}
	assert.Equal(t, uint64(1), f.Published)
	assert.Equal(t, 1, f.Channel)
}

func TestFrameSinkIndicators(t *testing.T) {
	s := NewFrameSink(4, 500, 10)
	f := s.Frame(chart.Channel2)
	assert.Nil(t, f.Points)
	assert.Nil(t, f.TriggerLevel)
	assert.Nil(t, f.Progress)

	s.UpdateTriggerIndicator(chart.Channel2, 2)
	s.UpdateProgress(0.25)
	f = s.Frame(chart.Channel2)
	require.NotNil(t, f.TriggerLevel)
	assert.Equal(t, float32(350), *f.TriggerLevel)
	require.NotNil(t, f.Progress)
	assert.Equal(t, float32(0.25), *f.Progress)

	s.HideTriggerIndicator(chart.Channel2)
	s.HideProgress()
	f = s.Frame(chart.Channel2)
	assert.Nil(t, f.TriggerLevel)
	assert.Nil(t, f.Progress)

	s.Publish(chart.Channel2, []float32{1, 1})
	s.Clear(chart.Channel2)
	assert.Nil(t, s.Frame(chart.Channel2).Points)

	assert.Nil(t, s.Frame(chart.ChannelCount))
	assert.NotPanics(t, func() {
		s.Publish(chart.Channel(9), []float32{1})
		s.Clear(chart.Channel(-1))
	})
}

func TestFrameIsACopy(t *testing.T) {
	s := NewFrameSink(2, 500, 10)
	s.Publish(chart.Channel1, []float32{0, 0})
	f := s.Frame(chart.Channel1)
	f.Points[0] = nil
	assert.NotNil(t, s.Frame(chart.Channel1).Points[0])
}
