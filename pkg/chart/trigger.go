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

// TriggerEnabled is true when at least one edge polarity is armed.
func (h *Handler) TriggerEnabled() bool {
	return h != nil && (h.ascending || h.descending)
}

func (h *Handler) TriggerPolarity() (ascending, descending bool) {
	if h == nil {
		return false, false
	}
	return h.ascending, h.descending
}

// SetTriggerPolarity arms rising and/or falling edges for both channels.
// Running channels restart their capture window when the polarity changes.
func (h *Handler) SetTriggerPolarity(ascending, descending bool) {
	if h == nil || (h.ascending == ascending && h.descending == descending) {
		return
	}
	h.ascending = ascending
	h.descending = descending
	for i := range h.channels {
		ch := Channel(i)
		c := &h.channels[i]
		if c.enabled && c.running {
			h.invalidate(c)
		}
		h.refreshTriggerIndicator(ch, c)
	}
}

// TriggerLevel is in ADC codes.
func (h *Handler) TriggerLevel(ch Channel) uint16 {
	c := h.channel(ch)
	if c == nil {
		return 0
	}
	return c.triggerLevel
}

// SetTriggerLevel is rejected while the trigger is disabled or when the level
// is beyond the ADC range.
func (h *Handler) SetTriggerLevel(ch Channel, level uint16) bool {
	c := h.channel(ch)
	if c == nil || !h.TriggerEnabled() || level > h.conv.MaxCode() {
		return false
	}
	c.triggerLevel = level
	h.refreshTriggerIndicator(ch, c)
	return true
}

// TriggerIndex is the window position of the last trigger edge, -1 if none.
func (h *Handler) TriggerIndex(ch Channel) int {
	c := h.channel(ch)
	if c == nil {
		return -1
	}
	return c.triggerIndex
}

func (h *Handler) refreshTriggerIndicator(ch Channel, c *channel) {
	if !c.enabled {
		return
	}
	if !h.TriggerEnabled() {
		h.sink.HideTriggerIndicator(ch)
		return
	}
	h.sink.UpdateTriggerIndicator(ch, h.toGrid(c, c.triggerLevel))
}

func (h *Handler) isEdge(prev, cur, level uint16) bool {
	if h.ascending && prev <= level && cur > level {
		return true
	}
	return h.descending && prev >= level && cur < level
}

// push stores one decimated sample and reports whether the capture window is
// complete.
//
// With the trigger disabled the window is a linear fill. With the trigger
// enabled the window is circular: half of it is filled before edges are
// searched for, and it completes half a window after the edge, which leaves
// the edge in the middle once the transform unrotates the buffer.
func (h *Handler) push(c *channel, v uint16) bool {
	idx := c.writeIndex
	c.raw[idx] = v
	c.writeIndex++
	if c.writeIndex >= h.capacity {
		c.writeIndex = 0
	}
	prev := c.prevRaw
	c.prevRaw = v

	if !h.TriggerEnabled() {
		return c.writeIndex == 0
	}
	if c.triggerIndex < 0 {
		if c.preTrigger < h.half {
			c.preTrigger++
			return false
		}
		if !h.isEdge(prev, v, c.triggerLevel) {
			return false
		}
		c.triggerIndex = idx
	}
	// the edge sample is the first post trigger sample
	c.postTrigger++
	return c.postTrigger >= h.half
}

// pushRun stores count copies of v. It returns how many copies were taken
// before the window completed, or count if it did not.
//
// Only the first copy can be an edge, the rest compare equal to their
// predecessor. They are accounted for arithmetically and at most one window
// worth of them is written.
func (h *Handler) pushRun(c *channel, v uint16, count int) (int, bool) {
	if h.push(c, v) {
		return 1, true
	}
	rest := count - 1
	if rest <= 0 {
		return 1, false
	}

	switch {
	case !h.TriggerEnabled():
		// linear fill, writeIndex > 0 here
		if left := h.capacity - c.writeIndex; rest >= left {
			h.repeat(c, v, left)
			return 1 + left, true
		}
		h.repeat(c, v, rest)
		return count, false
	case c.triggerIndex >= 0:
		if left := h.half - c.postTrigger; rest >= left {
			h.repeat(c, v, left)
			c.postTrigger = h.half
			return 1 + left, true
		}
		h.repeat(c, v, rest)
		c.postTrigger += rest
		return count, false
	}
	// still searching for an edge: the window keeps overwriting itself
	h.repeat(c, v, rest)
	if c.preTrigger+rest < h.half {
		c.preTrigger += rest
	} else {
		c.preTrigger = h.half
	}
	return count, false
}

// repeat writes v count times from writeIndex on, wrapping around the window.
func (h *Handler) repeat(c *channel, v uint16, count int) {
	writes := count
	if writes > h.capacity {
		writes = h.capacity
	}
	idx := c.writeIndex
	for k := 0; k < writes; k++ {
		c.raw[idx] = v
		idx++
		if idx == h.capacity {
			idx = 0
		}
	}
	c.writeIndex = (c.writeIndex + count%h.capacity) % h.capacity
}
