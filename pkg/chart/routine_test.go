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

package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutineWaitsForCompleteWindow(t *testing.T) {
	h, sink := newTestHandler(10, 10)
	feed(h, Channel1, constant(50, 1))

	h.Routine()
	assert.Empty(t, sink.published[Channel1])
	assert.Equal(t, []float32{0.5}, sink.progress)
}

func TestRoutinePublishesGridUnits(t *testing.T) {
	h, sink := newTestHandler(10, 10)
	require.True(t, h.SetVoltageOffset(Channel1, 100))
	require.True(t, h.SetVoltageScale(Channel1, 500))

	feed(h, Channel1, constant(100, h.Converter().MaxCode()))
	h.Routine()

	display := sink.last(Channel1)
	require.Len(t, display, 100)
	for _, v := range display {
		assert.InDelta(t, 6.8, v, 1e-5)
	}
	assert.False(t, h.IsReady(Channel1))
	assert.Equal(t, display, h.DisplayWindow(Channel1))
}

func TestPausedViewFollowsTimeBase(t *testing.T) {
	h, sink := newTestHandler(10, 10)
	h.SetRunning(Channel1, false)
	codes := make([]uint16, 100)
	for i := range codes {
		codes[i] = uint16(100 * i)
	}
	feed(h, Channel1, codes)
	require.Equal(t, StatePaused, h.State(Channel1))
	c := &h.channels[Channel1]

	h.Routine()
	for i, v := range sink.last(Channel1) {
		assert.Equal(t, h.toGrid(c, codes[i]), v)
	}

	// zoom out: twice the time per division squeezes the frozen window into the left half
	require.True(t, h.SetTimeScale(Channel1, 2000))
	h.Routine()
	display := sink.last(Channel1)
	for i := 0; i < 50; i++ {
		assert.Equal(t, h.toGrid(c, codes[2*i]), display[i])
	}
	for i := 50; i < 100; i++ {
		assert.True(t, math.IsNaN(float64(display[i])), "index %d", i)
	}

	// shift right by five values
	require.True(t, h.SetTimeScale(Channel1, 1000))
	require.True(t, h.SetTimeOffset(Channel1, 500))
	h.Routine()
	display = sink.last(Channel1)
	for i := 0; i < 5; i++ {
		assert.True(t, math.IsNaN(float64(display[i])), "index %d", i)
	}
	for i := 5; i < 100; i++ {
		assert.Equal(t, h.toGrid(c, codes[i-5]), display[i])
	}

	assert.Equal(t, codes, h.RawWindow(Channel1), "the frozen window is never modified")
	assert.Equal(t, StatePaused, h.State(Channel1))
}

func TestPausedTriggeredViewStaysCentered(t *testing.T) {
	h, sink := newTestHandler(10, 10)
	h.SetTriggerPolarity(true, false)
	h.SetRunning(Channel1, false)
	feed(h, Channel1, step(1000, 70))
	require.Equal(t, StatePaused, h.State(Channel1))

	// turning the trigger off afterwards does not touch the frozen window
	h.SetTriggerPolarity(false, false)
	assert.Equal(t, 70, h.TriggerIndex(Channel1))

	h.Routine()
	c := &h.channels[Channel1]
	display := sink.last(Channel1)
	assert.Equal(t, h.toGrid(c, low), display[49])
	assert.Equal(t, h.toGrid(c, high), display[50])
}

func TestProgressIsHiddenOnceNothingAcquires(t *testing.T) {
	h, sink := newTestHandler(10, 10)
	feed(h, Channel1, constant(25, 1))
	h.Routine()
	assert.Equal(t, []float32{0.25}, sink.progress)

	h.SetRunning(Channel1, false)
	feed(h, Channel1, constant(75, 1))
	require.Equal(t, StatePaused, h.State(Channel1))
	h.Routine()
	h.Routine()
	assert.Equal(t, 1, sink.progressHidden)
	assert.Len(t, sink.progress, 1)
}

func TestProgressTracksSlowestChannel(t *testing.T) {
	h, sink := newTestHandler(10, 10)
	h.SetEnabled(Channel2, true)
	var raw [ChannelCount][]uint16
	raw[Channel1] = constant(20, 1)
	raw[Channel2] = constant(20, 1)
	h.Update(raw, 2000)
	feed(h, Channel1, constant(40, 1))

	h.Routine()
	require.Len(t, sink.progress, 1)
	assert.InDelta(t, 0.2, sink.progress[0], 1e-6)
}

func TestStatus(t *testing.T) {
	h, _ := newTestHandler(10, 10)
	feed(h, Channel1, constant(12, 1))
	h.SetRunning(Channel1, false)

	st := h.Status(Channel1)
	assert.Equal(t, 1, st.Channel)
	assert.Equal(t, "pausing", st.State)
	assert.True(t, st.Running)
	assert.True(t, st.StopRequest)
	assert.Equal(t, 12, st.WriteIndex)
	assert.Equal(t, 100, st.Capacity)
	assert.Equal(t, float32(1000), st.TimeScale)

	st = h.Status(Channel2)
	assert.Equal(t, 2, st.Channel)
	assert.Equal(t, "disabled", st.State)

	st = h.Status(Channel(5))
	assert.Equal(t, -1, st.TriggerIndex)
}
