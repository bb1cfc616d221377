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

// Package source is a synthetic stand in for the ADC front end. It fills raw
// revolutions with periodic waveforms and ships them as frames over UDP.
package source

import (
	"math"
	"math/rand"

	"jinr.ru/greenlab/go-scope/pkg/adc"
)

type Waveform string

const (
	WaveformSine     Waveform = "sine"
	WaveformSquare   Waveform = "square"
	WaveformTriangle Waveform = "triangle"
	WaveformSawtooth Waveform = "sawtooth"
)

var waveforms = map[string]Waveform{
	"sine":     WaveformSine,
	"square":   WaveformSquare,
	"triangle": WaveformTriangle,
	"sawtooth": WaveformSawtooth,
}

func ParseWaveform(name string) (Waveform, error) {
	w, ok := waveforms[name]
	if !ok {
		return "", ErrUnknownWaveform{Name: name}
	}
	return w, nil
}

// Wave describes the signal on one channel. Voltages are in mV.
type Wave struct {
	Waveform  Waveform
	Frequency float64 // Hz
	Amplitude float64
	Offset    float64
	// Noise is the peak amplitude of uniform noise added to every sample
	Noise float64
}

// At returns the noiseless voltage at time t in seconds.
func (w Wave) At(t float64) float64 {
	phase := w.Frequency * t
	phase -= math.Floor(phase)
	var v float64
	switch w.Waveform {
	case WaveformSquare:
		v = 1
		if phase >= 0.5 {
			v = -1
		}
	case WaveformTriangle:
		v = 1 - 4*math.Abs(phase-0.5)
	case WaveformSawtooth:
		v = 2*phase - 1
	default:
		v = math.Sin(2 * math.Pi * phase)
	}
	return w.Offset + w.Amplitude*v
}

// Generator produces consecutive raw revolutions, one buffer per wave.
type Generator struct {
	conv       adc.Converter
	sampleRate int
	samples    int
	waves      []Wave
	rand       *rand.Rand
	// index of the next sample since the generator was created
	next uint64
}

func NewGenerator(conv adc.Converter, sampleRate, samples int, waves ...Wave) (*Generator, error) {
	if sampleRate <= 0 {
		return nil, ErrGenerator{What: "sample rate must be positive"}
	}
	if samples <= 0 {
		return nil, ErrGenerator{What: "revolution must have at least one sample"}
	}
	if len(waves) == 0 {
		return nil, ErrGenerator{What: "at least one wave is needed"}
	}
	return &Generator{
		conv:       conv,
		sampleRate: sampleRate,
		samples:    samples,
		waves:      waves,
		rand:       rand.New(rand.NewSource(1)),
	}, nil
}

// ElapsedUs is the time one revolution takes at the configured sample rate.
func (g *Generator) ElapsedUs() uint32 {
	return uint32(math.Round(float64(g.samples) * 1e6 / float64(g.sampleRate)))
}

// Next returns the following revolution for every channel.
func (g *Generator) Next() ([][]uint16, uint32) {
	out := make([][]uint16, len(g.waves))
	for ch, w := range g.waves {
		buf := make([]uint16, g.samples)
		for i := range buf {
			t := float64(g.next+uint64(i)) / float64(g.sampleRate)
			v := w.At(t)
			if w.Noise > 0 {
				v += w.Noise * (2*g.rand.Float64() - 1)
			}
			buf[i] = g.conv.VoltageToCode(float32(v))
		}
		out[ch] = buf
	}
	g.next += uint64(g.samples)
	return out, g.ElapsedUs()
}
