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

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type ServerConfig struct {
	IP             string `yaml:"ip,omitempty"`
	ApiPort        int    `yaml:"apiPort,omitempty"`
	SourcePort     int    `yaml:"sourcePort,omitempty"`
	DBPath         string `yaml:"dbPath,omitempty"`
	RoutinePeriod  int    `yaml:"routinePeriodMs,omitempty"`
	FrameQueueSize int    `yaml:"frameQueueSize,omitempty"`
}

// ChartConfig bounds and defaults of the acquisition core.
// Capacity of a capture window is Divisions * ValuesPerDivision.
type ChartConfig struct {
	Divisions         int     `yaml:"divisions,omitempty"`
	ValuesPerDivision int     `yaml:"valuesPerDivision,omitempty"`
	MinTimeScale      float32 `yaml:"minTimeScale,omitempty"`
	MaxTimeScale      float32 `yaml:"maxTimeScale,omitempty"`
	MinVoltageScale   float32 `yaml:"minVoltageScale,omitempty"`
	MaxVoltageScale   float32 `yaml:"maxVoltageScale,omitempty"`
	MaxVoltageOffset  float32 `yaml:"maxVoltageOffset,omitempty"`
	TimeScale         float32 `yaml:"timeScale,omitempty"`
	VoltageScale      float32 `yaml:"voltageScale,omitempty"`
}

type ADCConfig struct {
	Resolution uint8   `yaml:"resolution,omitempty"`
	VRef       float32 `yaml:"vref,omitempty"`
}

type DisplayConfig struct {
	PointCount int     `yaml:"pointCount,omitempty"`
	AxisMax    float32 `yaml:"axisMax,omitempty"`
	YDivisions int     `yaml:"yDivisions,omitempty"`
}

type SimulatorConfig struct {
	RawSamples int     `yaml:"rawSamples,omitempty"`
	SampleRate int     `yaml:"sampleRate,omitempty"`
	Waveform   string  `yaml:"waveform,omitempty"`
	Frequency  float64 `yaml:"frequency,omitempty"`
	Amplitude  float64 `yaml:"amplitude,omitempty"`
	Offset     float64 `yaml:"offset,omitempty"`
}

type Config struct {
	LogLevel         string `yaml:"logLevel,omitempty"`
	*ServerConfig    `yaml:"server,omitempty"`
	*ChartConfig     `yaml:"chart,omitempty"`
	*ADCConfig       `yaml:"adc,omitempty"`
	*DisplayConfig   `yaml:"display,omitempty"`
	*SimulatorConfig `yaml:"simulator,omitempty"`
	filepath         string
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) ApiAddress() string {
	return fmt.Sprintf("%s:%d", c.IP, c.ApiPort)
}

func (c *Config) SourceAddress() string {
	return fmt.Sprintf("%s:%d", c.IP, c.SourcePort)
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file over the defaults. A missing file is not an error.
func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		ServerConfig: &ServerConfig{
			IP:             DefaultIP,
			ApiPort:        DefaultApiPort,
			SourcePort:     DefaultSourcePort,
			DBPath:         DefaultDBPath(),
			RoutinePeriod:  DefaultRoutinePeriod,
			FrameQueueSize: DefaultFrameQueueSize,
		},
		ChartConfig: &ChartConfig{
			Divisions:         DefaultDivisions,
			ValuesPerDivision: DefaultValuesPerDivision,
			MinTimeScale:      DefaultMinTimeScale,
			MaxTimeScale:      DefaultMaxTimeScale,
			MinVoltageScale:   DefaultMinVoltageScale,
			MaxVoltageScale:   DefaultMaxVoltageScale,
			MaxVoltageOffset:  DefaultMaxVoltageOffset,
			TimeScale:         DefaultTimeScale,
			VoltageScale:      DefaultVoltageScale,
		},
		ADCConfig: &ADCConfig{
			Resolution: DefaultADCResolution,
			VRef:       DefaultADCVRef,
		},
		DisplayConfig: &DisplayConfig{
			PointCount: DefaultPointCount,
			AxisMax:    DefaultAxisMax,
			YDivisions: DefaultYDivisions,
		},
		SimulatorConfig: &SimulatorConfig{
			RawSamples: DefaultSimRawSamples,
			SampleRate: DefaultSimSampleRate,
			Waveform:   DefaultSimWaveform,
			Frequency:  DefaultSimFrequency,
			Amplitude:  DefaultSimAmplitude,
			Offset:     DefaultSimOffset,
		},
		filepath: DefaultConfigPath(),
	}
}
