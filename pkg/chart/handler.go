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

	"jinr.ru/greenlab/go-scope/pkg/adc"
)

type channel struct {
	enabled     bool
	running     bool
	stopRequest bool
	ready       bool

	timeScale        float32
	timeScalePaused  float32
	timeOffset       float32
	timeOffsetPaused float32
	voltageScale     float32
	voltageOffset    float32

	triggerLevel uint16
	// -1 while no edge was found in the current window
	triggerIndex int
	preTrigger   int
	postTrigger  int

	writeIndex int
	// decimation phase carried over to the next raw buffer
	carry   float32
	prevRaw uint16

	raw     []uint16
	display []float32
}

func (c *channel) state() State {
	switch {
	case !c.enabled:
		return StateDisabled
	case c.running && c.stopRequest:
		return StatePausing
	case c.running:
		return StateRunning
	}
	return StatePaused
}

func (c *channel) clearBuffers() {
	for i := range c.raw {
		c.raw[i] = 0
		c.display[i] = 0
	}
}

// Handler owns both channels and the device wide trigger polarity.
// All methods are no-ops on a nil Handler or an invalid Channel.
type Handler struct {
	params   Params
	capacity int
	half     int
	conv     adc.Converter
	sink     Sink

	ascending  bool
	descending bool

	channels [ChannelCount]channel

	progressShown bool
}

// NewHandler allocates the capture windows once. Invalid params fall back to
// DefaultParams and a nil sink discards everything.
func NewHandler(params Params, conv adc.Converter, sink Sink) *Handler {
	if !params.valid() {
		params = DefaultParams()
	}
	if sink == nil {
		sink = nopSink{}
	}
	if conv.Resolution == 0 {
		conv = adc.DefaultConverter()
	}
	h := &Handler{
		params:   params,
		capacity: params.Capacity(),
		half:     params.Capacity() / 2,
		conv:     conv,
		sink:     sink,
	}
	for i := range h.channels {
		c := &h.channels[i]
		c.timeScale = params.TimeScale
		c.timeScalePaused = params.TimeScale
		c.voltageScale = params.VoltageScale
		c.triggerLevel = conv.Midpoint()
		c.triggerIndex = -1
		c.raw = make([]uint16, h.capacity)
		c.display = make([]float32, h.capacity)
	}
	h.channels[Channel1].enabled = true
	h.channels[Channel1].running = true
	return h
}

func (h *Handler) channel(ch Channel) *channel {
	if h == nil || !ch.Valid() {
		return nil
	}
	return &h.channels[ch]
}

func (h *Handler) Params() Params {
	if h == nil {
		return Params{}
	}
	return h.params
}

func (h *Handler) Capacity() int {
	if h == nil {
		return 0
	}
	return h.capacity
}

func (h *Handler) Converter() adc.Converter {
	if h == nil {
		return adc.Converter{}
	}
	return h.conv
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// Invalidate drops the capture window in flight. A paused channel keeps its
// frozen samples and trigger alignment.
func (h *Handler) Invalidate(ch Channel) {
	c := h.channel(ch)
	if c == nil {
		return
	}
	h.invalidate(c)
}

func (h *Handler) invalidate(c *channel) {
	c.ready = false
	c.writeIndex = 0
	c.carry = 0
	c.preTrigger = 0
	c.postTrigger = 0
	if c.running {
		c.triggerIndex = -1
	}
}

// Restart invalidates every running channel. Used when the sample source
// faults and acquisition has to start over.
func (h *Handler) Restart() {
	if h == nil {
		return
	}
	for i := range h.channels {
		c := &h.channels[i]
		if c.enabled && c.running {
			h.invalidate(c)
		}
	}
}

// touch is called after a parameter of an enabled channel changed.
func (h *Handler) touch(ch Channel, c *channel) {
	if !c.enabled {
		return
	}
	h.invalidate(c)
	h.refreshTriggerIndicator(ch, c)
}

func (h *Handler) State(ch Channel) State {
	c := h.channel(ch)
	if c == nil {
		return StateDisabled
	}
	return c.state()
}

func (h *Handler) IsEnabled(ch Channel) bool {
	c := h.channel(ch)
	return c != nil && c.enabled
}

// IsRunning reports whether the channel is acquiring, including a channel
// with a pending stop request.
func (h *Handler) IsRunning(ch Channel) bool {
	c := h.channel(ch)
	return c != nil && c.running
}

func (h *Handler) IsStopRequested(ch Channel) bool {
	c := h.channel(ch)
	return c != nil && c.stopRequest
}

func (h *Handler) IsReady(ch Channel) bool {
	c := h.channel(ch)
	return c != nil && c.ready
}

func (h *Handler) SetEnabled(ch Channel, enabled bool) {
	c := h.channel(ch)
	if c == nil || c.enabled == enabled {
		return
	}
	if enabled {
		c.enabled = true
		c.running = true
		c.stopRequest = false
		c.prevRaw = 0
		c.clearBuffers()
		h.invalidate(c)
		h.refreshTriggerIndicator(ch, c)
		return
	}
	c.enabled = false
	c.stopRequest = false
	c.ready = false
	h.sink.Clear(ch)
	h.sink.HideTriggerIndicator(ch)
}

func (h *Handler) ToggleEnabled(ch Channel) {
	c := h.channel(ch)
	if c == nil {
		return
	}
	h.SetEnabled(ch, !c.enabled)
}

// SetRunning arms a paused channel or requests a stop of a running one.
// A stop takes effect only when the capture window in flight completes.
func (h *Handler) SetRunning(ch Channel, run bool) {
	c := h.channel(ch)
	if c == nil || !c.enabled {
		return
	}
	if !run {
		if c.running {
			c.stopRequest = true
		}
		return
	}
	if c.running {
		c.stopRequest = false
		return
	}
	c.running = true
	c.stopRequest = false
	c.triggerIndex = -1
	h.invalidate(c)
}

func (h *Handler) ToggleRunning(ch Channel) {
	c := h.channel(ch)
	if c == nil {
		return
	}
	h.SetRunning(ch, !(c.running && !c.stopRequest))
}

func (h *Handler) VoltageScale(ch Channel) float32 {
	c := h.channel(ch)
	if c == nil {
		return 0
	}
	return c.voltageScale
}

// SetVoltageScale sets the mV per division. Values outside the bounds are rejected.
func (h *Handler) SetVoltageScale(ch Channel, value float32) bool {
	c := h.channel(ch)
	if c == nil || !finite(value) || value < h.params.MinVoltageScale || value > h.params.MaxVoltageScale {
		return false
	}
	c.voltageScale = value
	h.touch(ch, c)
	return true
}

func (h *Handler) VoltageOffset(ch Channel) float32 {
	c := h.channel(ch)
	if c == nil {
		return 0
	}
	return c.voltageOffset
}

func (h *Handler) SetVoltageOffset(ch Channel, value float32) bool {
	c := h.channel(ch)
	if c == nil || !finite(value) || value < -h.params.MaxVoltageOffset || value > h.params.MaxVoltageOffset {
		return false
	}
	c.voltageOffset = value
	h.touch(ch, c)
	return true
}

func (h *Handler) TimeScale(ch Channel) float32 {
	c := h.channel(ch)
	if c == nil {
		return 0
	}
	return c.timeScale
}

// SetTimeScale sets the us per division. Values outside the bounds are rejected.
func (h *Handler) SetTimeScale(ch Channel, value float32) bool {
	c := h.channel(ch)
	if c == nil || !finite(value) || value < h.params.MinTimeScale || value > h.params.MaxTimeScale {
		return false
	}
	c.timeScale = value
	h.touch(ch, c)
	return true
}

func (h *Handler) TimeOffset(ch Channel) float32 {
	c := h.channel(ch)
	if c == nil {
		return 0
	}
	return c.timeOffset
}

func (h *Handler) SetTimeOffset(ch Channel, value float32) bool {
	c := h.channel(ch)
	limit := h.params.maxTimeOffset()
	if c == nil || !finite(value) || value < -limit || value > limit {
		return false
	}
	c.timeOffset = value
	h.touch(ch, c)
	return true
}

// TimeScalePaused and TimeOffsetPaused return the time base frozen at the last pause.
func (h *Handler) TimeScalePaused(ch Channel) float32 {
	c := h.channel(ch)
	if c == nil {
		return 0
	}
	return c.timeScalePaused
}

func (h *Handler) TimeOffsetPaused(ch Channel) float32 {
	c := h.channel(ch)
	if c == nil {
		return 0
	}
	return c.timeOffsetPaused
}

// WriteIndex is the position the next decimated sample goes to.
func (h *Handler) WriteIndex(ch Channel) int {
	c := h.channel(ch)
	if c == nil {
		return 0
	}
	return c.writeIndex
}

// RawWindow returns a copy of the decimated, not yet converted, samples.
func (h *Handler) RawWindow(ch Channel) []uint16 {
	c := h.channel(ch)
	if c == nil {
		return nil
	}
	out := make([]uint16, len(c.raw))
	copy(out, c.raw)
	return out
}

// DisplayWindow returns a copy of the last published grid unit values.
func (h *Handler) DisplayWindow(ch Channel) []float32 {
	c := h.channel(ch)
	if c == nil {
		return nil
	}
	out := make([]float32, len(c.display))
	copy(out, c.display)
	return out
}
