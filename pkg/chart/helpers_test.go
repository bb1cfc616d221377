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
	"jinr.ru/greenlab/go-scope/pkg/adc"
)

type recordSink struct {
	published      map[Channel][][]float32
	cleared        []Channel
	indicators     map[Channel]float32
	hidden         map[Channel]bool
	progress       []float32
	progressHidden int
}

func newRecordSink() *recordSink {
	return &recordSink{
		published:  make(map[Channel][][]float32),
		indicators: make(map[Channel]float32),
		hidden:     make(map[Channel]bool),
	}
}

func (s *recordSink) Publish(ch Channel, values []float32) {
	v := make([]float32, len(values))
	copy(v, values)
	s.published[ch] = append(s.published[ch], v)
}

func (s *recordSink) Clear(ch Channel) {
	s.cleared = append(s.cleared, ch)
}

func (s *recordSink) UpdateTriggerIndicator(ch Channel, level float32) {
	s.indicators[ch] = level
	s.hidden[ch] = false
}

func (s *recordSink) HideTriggerIndicator(ch Channel) {
	s.hidden[ch] = true
}

func (s *recordSink) UpdateProgress(value float32) {
	s.progress = append(s.progress, value)
}

func (s *recordSink) HideProgress() {
	s.progressHidden++
}

func (s *recordSink) last(ch Channel) []float32 {
	p := s.published[ch]
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// unitParams sets a 100 us time per value, so feeding a buffer of n samples
// that took 100*n us decimates with a stride of exactly one raw sample.
func unitParams(divisions, valuesPerDivision int) Params {
	return Params{
		Divisions:         divisions,
		ValuesPerDivision: valuesPerDivision,
		MinTimeScale:      1,
		MaxTimeScale:      1e6,
		MinVoltageScale:   1,
		MaxVoltageScale:   10000,
		MaxVoltageOffset:  3300,
		TimeScale:         float32(valuesPerDivision) * 100,
		VoltageScale:      1000,
	}
}

func newTestHandler(divisions, valuesPerDivision int) (*Handler, *recordSink) {
	sink := newRecordSink()
	return NewHandler(unitParams(divisions, valuesPerDivision), adc.DefaultConverter(), sink), sink
}

func feed(h *Handler, ch Channel, buf []uint16) {
	var raw [ChannelCount][]uint16
	raw[ch] = buf
	h.Update(raw, uint32(100*len(buf)))
}

func constant(n int, v uint16) []uint16 {
	buf := make([]uint16, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func ramp(n int, from uint16) []uint16 {
	buf := make([]uint16, n)
	for i := range buf {
		buf[i] = from + uint16(i)
	}
	return buf
}
