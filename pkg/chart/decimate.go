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

// Update consumes one revolution of the raw buffers. elapsedUs is the time the
// revolution took. It never allocates and never blocks; channels whose window
// is still waiting for Routine are skipped, dropping the revolution for them.
func (h *Handler) Update(raw [ChannelCount][]uint16, elapsedUs uint32) {
	if h == nil {
		return
	}
	if elapsedUs == 0 {
		elapsedUs = 1
	}
	for i := range h.channels {
		c := &h.channels[i]
		if !c.enabled || !c.running || c.ready {
			continue
		}
		h.decimate(c, raw[i], elapsedUs)
	}
}

// maxRun caps the number of repeats of one raw sample counted in a single
// step when the time base is far finer than the sample period.
const maxRun = 1 << 30

// decimate picks one raw sample every samplesPerValue raw samples. The phase
// left over at the end of the buffer is kept in carry so the stride continues
// seamlessly on the next revolution.
//
// When samplesPerValue is below one a raw sample is repeated. The walk goes
// over raw samples rather than values and hands every run of repeats to
// pushRun in one step, so the work per revolution is bounded by the buffer
// length no matter how fine the time base is.
func (h *Handler) decimate(c *channel, buf []uint16, elapsedUs uint32) {
	n := len(buf)
	if n == 0 {
		return
	}
	timePerSample := float32(elapsedUs) / float32(n)
	timePerValue := c.timeScale / float32(h.params.ValuesPerDivision)
	samplesPerValue := timePerValue / timePerSample
	if !(samplesPerValue > 0) || !finite(samplesPerValue) {
		return
	}

	spv := float64(samplesPerValue)
	carry := float64(c.carry)
	end := float64(n)
	i := 0
	for {
		pos := spv*float64(i) + carry
		if pos >= end {
			c.carry = float32(pos - end)
			return
		}
		j := int(pos)
		// first value index that moves past raw sample j
		nextF := math.Ceil((float64(j+1) - carry) / spv)
		if nextF-float64(i) > maxRun {
			nextF = float64(i) + maxRun
		}
		next := int(nextF)
		for next <= i || (next-i < maxRun && spv*float64(next)+carry < float64(j+1)) {
			next++
		}
		consumed, done := h.pushRun(c, buf[j], next-i)
		if done {
			h.complete(c)
			return
		}
		i += consumed
	}
}

// complete publishes the window to Routine. A pending stop turns into a pause
// here, so a paused channel always holds a whole window.
func (h *Handler) complete(c *channel) {
	c.writeIndex = 0
	c.carry = 0
	c.preTrigger = 0
	c.postTrigger = 0
	c.ready = true
	if c.stopRequest {
		c.timeScalePaused = c.timeScale
		c.timeOffsetPaused = c.timeOffset
		c.running = false
		c.stopRequest = false
	}
}
