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

// Package adc holds the transfer function of the oscilloscope ADC.
package adc

import (
	"math"
)

const (
	DefaultResolution = 14
	DefaultVRef       = 3300.0 // mV
)

// Converter maps raw ADC codes to millivolts and back.
type Converter struct {
	Resolution uint8
	VRef       float32 // mV
}

func NewConverter(resolution uint8, vref float32) Converter {
	if resolution == 0 || resolution > 16 {
		resolution = DefaultResolution
	}
	if vref <= 0 {
		vref = DefaultVRef
	}
	return Converter{Resolution: resolution, VRef: vref}
}

func DefaultConverter() Converter {
	return NewConverter(DefaultResolution, DefaultVRef)
}

// MaxCode is the full scale code, 2^Resolution - 1.
func (c Converter) MaxCode() uint16 {
	return uint16((uint32(1) << c.Resolution) - 1)
}

// Midpoint is the code halfway through the input range.
func (c Converter) Midpoint() uint16 {
	return uint16(uint32(1) << (c.Resolution - 1))
}

func (c Converter) CodeToVoltage(code uint16) float32 {
	return float32(code) * c.VRef / float32(c.MaxCode())
}

// VoltageToCode rounds to the nearest code and clamps to [0, MaxCode].
func (c Converter) VoltageToCode(mv float32) uint16 {
	if math.IsNaN(float64(mv)) || mv <= 0 {
		return 0
	}
	code := math.Round(float64(mv) * float64(c.MaxCode()) / float64(c.VRef))
	if code >= float64(c.MaxCode()) {
		return c.MaxCode()
	}
	return uint16(code)
}
