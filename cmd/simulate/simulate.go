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

package simulate

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-scope/pkg/command"
	"jinr.ru/greenlab/go-scope/pkg/config"
	"jinr.ru/greenlab/go-scope/pkg/source"
)

const (
	IPOptionName         = "ip"
	SourcePortOptionName = "source-port"
	WaveformOptionName   = "waveform"
	FrequencyOptionName  = "frequency"
	AmplitudeOptionName  = "amplitude"
	OffsetOptionName     = "offset"
	NoiseOptionName      = "noise"
	Ch2PrefixOptionName  = "ch2-"
)

type waveFlags struct {
	waveform  string
	frequency float64
	amplitude float64
	offset    float64
	noise     float64
}

func (f *waveFlags) register(cmd *cobra.Command, prefix string, cfg *config.Config) {
	cmd.Flags().StringVar(&f.waveform, prefix+WaveformOptionName, "", "Waveform: sine, square, triangle or sawtooth")
	cmd.Flags().Float64Var(&f.frequency, prefix+FrequencyOptionName, cfg.Frequency, "Frequency, Hz")
	cmd.Flags().Float64Var(&f.amplitude, prefix+AmplitudeOptionName, cfg.Amplitude, "Amplitude, mV")
	cmd.Flags().Float64Var(&f.offset, prefix+OffsetOptionName, cfg.Offset, "DC offset, mV")
	cmd.Flags().Float64Var(&f.noise, prefix+NoiseOptionName, 0, "Peak noise, mV")
}

func (f *waveFlags) wave(defaultWaveform string) (source.Wave, error) {
	name := f.waveform
	if name == "" {
		name = defaultWaveform
	}
	waveform, err := source.ParseWaveform(name)
	if err != nil {
		return source.Wave{}, err
	}
	return source.Wave{
		Waveform:  waveform,
		Frequency: f.frequency,
		Amplitude: f.amplitude,
		Offset:    f.offset,
		Noise:     f.noise,
	}, nil
}

func NewCommand() *cobra.Command {
	var ip string
	var sourcePort int
	var ch1, ch2 waveFlags
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Send synthetic sample frames to the scope server",
		Long:  "Send synthetic sample frames to the scope server. The second channel is generated only if --ch2-waveform is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ip != "" {
				cfg.IP = ip
			}
			if sourcePort != 0 {
				cfg.SourcePort = sourcePort
			}
			wave1, err := ch1.wave(cfg.Waveform)
			if err != nil {
				return err
			}
			waves := []source.Wave{wave1}
			if ch2.waveform != "" {
				wave2, err := ch2.wave(ch2.waveform)
				if err != nil {
					return err
				}
				waves = append(waves, wave2)
			}
			return command.StartSimulator(cfg, waves...)
		},
	}
	cmd.Flags().StringVar(&ip, IPOptionName, "", fmt.Sprintf("Scope server IP. E.g. %s", config.DefaultIP))
	cmd.Flags().IntVar(&sourcePort, SourcePortOptionName, 0, fmt.Sprintf("Scope server UDP port. E.g. %d", config.DefaultSourcePort))
	ch1.register(cmd, "", cfg)
	ch2.register(cmd, Ch2PrefixOptionName, cfg)

	return cmd
}
