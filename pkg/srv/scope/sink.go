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

	"jinr.ru/greenlab/go-scope/pkg/chart"
	"jinr.ru/greenlab/go-scope/pkg/config"
)

// Frame is what a screen shows for one channel.
// Coordinates are in screen units, 0..AxisMax from the bottom of the plot.
type Frame struct {
	Channel int `json:"channel"`
	// Points is nil until the first window was published. A null point means no data.
	Points []*float32 `json:"points"`
	// TriggerLevel is nil when the trigger indicator is hidden
	TriggerLevel *float32 `json:"triggerLevel,omitempty"`
	// Progress is nil when no channel is acquiring
	Progress *float32 `json:"progress,omitempty"`
	// Published counts windows published for the channel
	Published uint64 `json:"published"`
}

// FrameSink is the chart.Sink of the scope server. It keeps the latest
// screen of every channel for the API.
type FrameSink struct {
	pointCount int
	axisMax    float32
	yDivisions int

	points    [chart.ChannelCount][]*float32
	trigger   [chart.ChannelCount]*float32
	published [chart.ChannelCount]uint64
	progress  *float32
}

var _ chart.Sink = &FrameSink{}

func NewFrameSink(pointCount int, axisMax float32, yDivisions int) *FrameSink {
	if pointCount <= 0 {
		pointCount = config.DefaultPointCount
	}
	if axisMax <= 0 {
		axisMax = config.DefaultAxisMax
	}
	if yDivisions <= 0 {
		yDivisions = config.DefaultYDivisions
	}
	return &FrameSink{
		pointCount: pointCount,
		axisMax:    axisMax,
		yDivisions: yDivisions,
	}
}

// ToScreen maps grid units (divisions above the center line) to screen units.
func (s *FrameSink) ToScreen(grid float32) float32 {
	return grid*s.axisMax/float32(s.yDivisions) + s.axisMax/2
}

// Publish resamples the window to the screen width, nearest value per point.
func (s *FrameSink) Publish(ch chart.Channel, values []float32) {
	if !ch.Valid() || len(values) == 0 {
		return
	}
	points := make([]*float32, s.pointCount)
	for p := range points {
		v := values[p*len(values)/s.pointCount]
		if math.IsNaN(float64(v)) {
			continue
		}
		y := s.ToScreen(v)
		points[p] = &y
	}
	s.points[ch] = points
	s.published[ch]++
}

func (s *FrameSink) Clear(ch chart.Channel) {
	if !ch.Valid() {
		return
	}
	s.points[ch] = nil
}

func (s *FrameSink) UpdateTriggerIndicator(ch chart.Channel, level float32) {
	if !ch.Valid() {
		return
	}
	y := s.ToScreen(level)
	s.trigger[ch] = &y
}

func (s *FrameSink) HideTriggerIndicator(ch chart.Channel) {
	if !ch.Valid() {
		return
	}
	s.trigger[ch] = nil
}

func (s *FrameSink) UpdateProgress(value float32) {
	s.progress = &value
}

func (s *FrameSink) HideProgress() {
	s.progress = nil
}

// Frame returns a copy of the latest screen of a channel.
func (s *FrameSink) Frame(ch chart.Channel) *Frame {
	if !ch.Valid() {
		return nil
	}
	f := &Frame{
		Channel:   int(ch) + 1,
		Published: s.published[ch],
	}
	if s.points[ch] != nil {
		f.Points = make([]*float32, len(s.points[ch]))
		copy(f.Points, s.points[ch])
	}
	if s.trigger[ch] != nil {
		v := *s.trigger[ch]
		f.TriggerLevel = &v
	}
	if s.progress != nil {
		v := *s.progress
		f.Progress = &v
	}
	return f
}
