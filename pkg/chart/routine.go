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
)

var nan = float32(math.NaN())

// Routine converts every ready window, and every paused one, to grid units
// and publishes it. It is meant to be polled from the main loop; it never
// waits for acquisition.
func (h *Handler) Routine() {
	if h == nil {
		return
	}
	for i := range h.channels {
		ch := Channel(i)
		c := &h.channels[i]
		if !c.enabled || (c.running && !c.ready) {
			continue
		}

		if c.running {
			h.transformLive(c)
		} else {
			h.transformPaused(c)
		}
		h.sink.Publish(ch, c.display)

		c.ready = false
		if c.running {
			c.triggerIndex = -1
			c.preTrigger = 0
			c.postTrigger = 0
		}
	}
	h.updateProgress()
}

func (h *Handler) toGrid(c *channel, code uint16) float32 {
	return (h.conv.CodeToVoltage(code) + c.voltageOffset) / c.voltageScale
}

// start is the raw index shown first. A triggered window is circular and is
// rotated so the edge ends up in the middle.
func (h *Handler) start(c *channel) int {
	if c.triggerIndex < 0 {
		return 0
	}
	return (c.triggerIndex + h.half) % h.capacity
}

func (h *Handler) transformLive(c *channel) {
	start := 0
	if h.TriggerEnabled() {
		start = h.start(c)
	}
	for i := 0; i < h.capacity; i++ {
		c.display[i] = h.toGrid(c, c.raw[(start+i)%h.capacity])
	}
}

// transformPaused rebuilds the view of a frozen window with the time base in
// effect now, so zooming and panning work on a paused trace. Positions with no
// frozen sample behind them are NaN.
func (h *Handler) transformPaused(c *channel) {
	start := h.start(c)
	scalePaused := c.timeScalePaused
	if scalePaused <= 0 {
		scalePaused = c.timeScale
	}
	ratio := c.timeScale / scalePaused
	timePerValue := c.timeScale / float32(h.params.ValuesPerDivision)
	shift := (c.timeOffset - c.timeOffsetPaused) / timePerValue

	// TODO: indexes that wrap around the trigger point are not corrected when
	// the time base changes on a triggered frozen window.
	for i := 0; i < h.capacity; i++ {
		j := int(math.Round(float64((float32(i) - shift) * ratio)))
		if j < 0 || j >= h.capacity {
			c.display[i] = nan
			continue
		}
		c.display[i] = h.toGrid(c, c.raw[(start+j)%h.capacity])
	}
}

func (h *Handler) fill(c *channel) float32 {
	if h.TriggerEnabled() {
		return float32(c.preTrigger+c.postTrigger) / float32(h.capacity)
	}
	return float32(c.writeIndex) / float32(h.capacity)
}

// updateProgress drives the loading bar with the least filled window among
// the channels that are acquiring.
func (h *Handler) updateProgress() {
	progress := float32(-1)
	for i := range h.channels {
		c := &h.channels[i]
		if !c.enabled || !c.running || c.ready {
			continue
		}
		if f := h.fill(c); progress < 0 || f < progress {
			progress = f
		}
	}
	if progress < 0 {
		if h.progressShown {
			h.sink.HideProgress()
			h.progressShown = false
		}
		return
	}
	if progress > 1 {
		progress = 1
	}
	h.sink.UpdateProgress(progress)
	h.progressShown = true
}

// ChannelStatus is a snapshot of a channel's settings and acquisition state.
type ChannelStatus struct {
	Channel          int     `json:"channel"`
	State            string  `json:"state"`
	Enabled          bool    `json:"enabled"`
	Running          bool    `json:"running"`
	StopRequest      bool    `json:"stopRequest"`
	Ready            bool    `json:"ready"`
	VoltageScale     float32 `json:"voltageScale"`
	VoltageOffset    float32 `json:"voltageOffset"`
	TimeScale        float32 `json:"timeScale"`
	TimeOffset       float32 `json:"timeOffset"`
	TimeScalePaused  float32 `json:"timeScalePaused"`
	TimeOffsetPaused float32 `json:"timeOffsetPaused"`
	TriggerLevel     uint16  `json:"triggerLevel"`
	TriggerIndex     int     `json:"triggerIndex"`
	WriteIndex       int     `json:"writeIndex"`
	Capacity         int     `json:"capacity"`
}

func (h *Handler) Status(ch Channel) ChannelStatus {
	c := h.channel(ch)
	if c == nil {
		return ChannelStatus{State: StateDisabled.String(), TriggerIndex: -1}
	}
	return ChannelStatus{
		Channel:          int(ch) + 1,
		State:            c.state().String(),
		Enabled:          c.enabled,
		Running:          c.running,
		StopRequest:      c.stopRequest,
		Ready:            c.ready,
		VoltageScale:     c.voltageScale,
		VoltageOffset:    c.voltageOffset,
		TimeScale:        c.timeScale,
		TimeOffset:       c.timeOffset,
		TimeScalePaused:  c.timeScalePaused,
		TimeOffsetPaused: c.timeOffsetPaused,
		TriggerLevel:     c.triggerLevel,
		TriggerIndex:     c.triggerIndex,
		WriteIndex:       c.writeIndex,
		Capacity:         h.capacity,
	}
}
