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

// Package chart turns the raw ADC ring of each oscilloscope channel into
// display ready capture windows.
//
// Update is the acquisition side: it is called once per raw buffer revolution,
// decimates the raw samples according to the time base, searches for trigger
// edges and flags a channel ready when its capture window is complete.
// Routine is the presentation side: it converts ready (or paused) windows to
// grid units and publishes them to a Sink. Both sides share a channel through
// the ready flag only, so they must be driven from a single goroutine or be
// otherwise serialized by the caller.
package chart

import (
	"fmt"
)

// Channel identifies one of the two acquisition lanes.
type Channel int

const (
	Channel1 Channel = iota
	Channel2
	ChannelCount
)

func (ch Channel) Valid() bool {
	return ch >= Channel1 && ch < ChannelCount
}

func (ch Channel) String() string {
	return fmt.Sprintf("CH%d", int(ch)+1)
}

// State of a channel as seen by the user.
type State int

const (
	StateDisabled State = iota
	StateRunning
	// StatePausing means a stop was requested and takes effect at the end
	// of the capture window in flight.
	StatePausing
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateRunning:
		return "running"
	case StatePausing:
		return "pausing"
	case StatePaused:
		return "paused"
	}
	return "unknown"
}

// Params are fixed for the lifetime of a Handler.
// Time values are in us, voltage values in mV.
type Params struct {
	// Capacity of a capture window is Divisions * ValuesPerDivision.
	Divisions         int
	ValuesPerDivision int

	MinTimeScale    float32
	MaxTimeScale    float32
	MinVoltageScale float32
	MaxVoltageScale float32

	MaxVoltageOffset float32
	// MaxTimeOffset defaults to one full screen at the maximum time scale.
	MaxTimeOffset float32

	TimeScale    float32
	VoltageScale float32
}

func DefaultParams() Params {
	return Params{
		Divisions:         16,
		ValuesPerDivision: 50,
		MinTimeScale:      1000,
		MaxTimeScale:      100000,
		MinVoltageScale:   10,
		MaxVoltageScale:   10000,
		MaxVoltageOffset:  3300,
		TimeScale:         5000,
		VoltageScale:      1000,
	}
}

func (p Params) Capacity() int {
	return p.Divisions * p.ValuesPerDivision
}

func (p Params) valid() bool {
	return p.Divisions > 0 && p.ValuesPerDivision > 0 && p.Capacity() >= 2 &&
		p.MinTimeScale > 0 && p.MinTimeScale <= p.MaxTimeScale &&
		p.MinVoltageScale > 0 && p.MinVoltageScale <= p.MaxVoltageScale &&
		p.TimeScale >= p.MinTimeScale && p.TimeScale <= p.MaxTimeScale &&
		p.VoltageScale >= p.MinVoltageScale && p.VoltageScale <= p.MaxVoltageScale &&
		p.MaxVoltageOffset >= 0 && p.MaxTimeOffset >= 0
}

func (p Params) maxTimeOffset() float32 {
	if p.MaxTimeOffset > 0 {
		return p.MaxTimeOffset
	}
	return p.MaxTimeScale * float32(p.Divisions)
}

// Sink receives what the chart wants on screen.
//
// Publish hands over a channel's window in grid units, NaN meaning no point.
// The slice is owned by the Handler and overwritten on the next Routine, so
// a Sink that keeps it must copy it.
type Sink interface {
	Publish(ch Channel, values []float32)
	Clear(ch Channel)
	// UpdateTriggerIndicator moves the trigger line of a channel, level is in grid units.
	UpdateTriggerIndicator(ch Channel, level float32)
	HideTriggerIndicator(ch Channel)
	// UpdateProgress reports how much of the slowest capture window is filled, 0..1.
	UpdateProgress(value float32)
	HideProgress()
}

type nopSink struct{}

func (nopSink) Publish(Channel, []float32)              {}
func (nopSink) Clear(Channel)                           {}
func (nopSink) UpdateTriggerIndicator(Channel, float32) {}
func (nopSink) HideTriggerIndicator(Channel)            {}
func (nopSink) UpdateProgress(float32)                  {}
func (nopSink) HideProgress()                           {}
