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

package config

const (
	ConfigDir  = ".go-scope"
	ConfigFile = "config"
	DBFile     = "snapshots.db"

	DefaultLogLevel       = "info"
	DefaultIP             = "127.0.0.1"
	DefaultApiPort        = 8010
	DefaultSourcePort     = 33310
	DefaultRoutinePeriod  = 5 // ms
	DefaultFrameQueueSize = 16

	// The chart grid has 17 vertical lines, i.e. 16 horizontal divisions.
	DefaultDivisions         = 16
	DefaultValuesPerDivision = 50

	DefaultMinTimeScale     = 1000.0   // us
	DefaultMaxTimeScale     = 100000.0 // us
	DefaultMinVoltageScale  = 10.0     // mV
	DefaultMaxVoltageScale  = 10000.0  // mV
	DefaultTimeScale        = 5000.0   // us
	DefaultVoltageScale     = 1000.0   // mV
	DefaultMaxVoltageOffset = 3300.0   // mV

	DefaultADCResolution = 14
	DefaultADCVRef       = 3300.0 // mV

	// 11 horizontal grid lines, 10 vertical divisions
	DefaultPointCount = 850
	DefaultAxisMax    = 500
	DefaultYDivisions = 10

	DefaultSimRawSamples = 1024
	DefaultSimSampleRate = 10240 // Hz
	DefaultSimWaveform   = "sine"
	DefaultSimFrequency  = 50.0   // Hz
	DefaultSimAmplitude  = 1000.0 // mV
	DefaultSimOffset     = 1650.0 // mV
)
