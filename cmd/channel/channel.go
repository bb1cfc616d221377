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

package channel

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-scope/pkg/chart"
	"jinr.ru/greenlab/go-scope/pkg/command"
	"jinr.ru/greenlab/go-scope/pkg/config"
	"jinr.ru/greenlab/go-scope/pkg/srv"
	"jinr.ru/greenlab/go-scope/pkg/srv/scope"
)

const (
	ScaleOptionName   = "scale"
	OffsetOptionName  = "offset"
	LevelOptionName   = "level"
	VoltageOptionName = "voltage"
)

func NewCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Inspect and set up a channel",
	}
	cmd.AddCommand(newGetCommand(cfg))
	cmd.AddCommand(newEnableCommand(cfg, "enable", true))
	cmd.AddCommand(newEnableCommand(cfg, "disable", false))
	for _, action := range []string{"run", "pause", "toggle"} {
		cmd.AddCommand(newActionCommand(cfg, action))
	}
	cmd.AddCommand(newScaleCommand(cfg, "voltage", "mV"))
	cmd.AddCommand(newScaleCommand(cfg, "time", "us"))
	cmd.AddCommand(newTriggerCommand(cfg))
	return cmd
}

// ParseChannel accepts 1-based channel numbers
func ParseChannel(arg string) (int, error) {
	ch, err := strconv.Atoi(arg)
	if err != nil || !chart.Channel(ch-1).Valid() {
		return 0, srv.ErrUnknownChannel{Channel: arg}
	}
	return ch, nil
}

func printStatus(cmd *cobra.Command, status *chart.ChannelStatus, err error) error {
	if err != nil {
		return err
	}
	return command.PrintYaml(cmd.OutOrStdout(), status)
}

func newGetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get CHANNEL",
		Short: "Show channel state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := ParseChannel(args[0])
			if err != nil {
				return err
			}
			status, err := command.NewApiClient(cfg).Channel(ch)
			return printStatus(cmd, status, err)
		},
	}
}

func newEnableCommand(cfg *config.Config, use string, enabled bool) *cobra.Command {
	short := "Switch a channel off"
	if enabled {
		short = "Switch a channel on"
	}
	return &cobra.Command{
		Use:   use + " CHANNEL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := ParseChannel(args[0])
			if err != nil {
				return err
			}
			status, err := command.NewApiClient(cfg).Enable(ch, enabled)
			return printStatus(cmd, status, err)
		},
	}
}

func newActionCommand(cfg *config.Config, action string) *cobra.Command {
	short := map[string]string{
		"run":    "Resume acquisition",
		"pause":  "Pause acquisition once the current window is complete",
		"toggle": "Toggle between running and paused",
	}[action]
	return &cobra.Command{
		Use:   action + " CHANNEL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := ParseChannel(args[0])
			if err != nil {
				return err
			}
			status, err := command.NewApiClient(cfg).Action(ch, action)
			return printStatus(cmd, status, err)
		},
	}
}

func newScaleCommand(cfg *config.Config, what, unit string) *cobra.Command {
	var scale, offset float32
	cmd := &cobra.Command{
		Use:   what + " CHANNEL",
		Short: fmt.Sprintf("Set %s scale per division and offset", what),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := ParseChannel(args[0])
			if err != nil {
				return err
			}
			var scaleP, offsetP *float32
			if cmd.Flags().Changed(ScaleOptionName) {
				scaleP = &scale
			}
			if cmd.Flags().Changed(OffsetOptionName) {
				offsetP = &offset
			}
			apiClient := command.NewApiClient(cfg)
			var status *chart.ChannelStatus
			if what == "voltage" {
				status, err = apiClient.Voltage(ch, scaleP, offsetP)
			} else {
				status, err = apiClient.Time(ch, scaleP, offsetP)
			}
			return printStatus(cmd, status, err)
		},
	}
	cmd.Flags().Float32Var(&scale, ScaleOptionName, 0, fmt.Sprintf("Scale per division, %s", unit))
	cmd.Flags().Float32Var(&offset, OffsetOptionName, 0, fmt.Sprintf("Offset, %s", unit))
	return cmd
}

func newTriggerCommand(cfg *config.Config) *cobra.Command {
	var level uint16
	var voltage float32
	cmd := &cobra.Command{
		Use:   "trigger CHANNEL",
		Short: "Set trigger level of a channel",
		Long:  "Set trigger level of a channel either as a raw code (--level) or in mV (--voltage). The trigger must be enabled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := ParseChannel(args[0])
			if err != nil {
				return err
			}
			setup := &scope.TriggerLevelSetup{}
			if cmd.Flags().Changed(LevelOptionName) {
				setup.Level = &level
			}
			if cmd.Flags().Changed(VoltageOptionName) {
				setup.Voltage = &voltage
			}
			if setup.Level == nil && setup.Voltage == nil {
				return fmt.Errorf("one of --%s or --%s is required", LevelOptionName, VoltageOptionName)
			}
			status, err := command.NewApiClient(cfg).TriggerLevel(ch, setup)
			return printStatus(cmd, status, err)
		},
	}
	cmd.Flags().Uint16Var(&level, LevelOptionName, 0, "Trigger level, ADC code")
	cmd.Flags().Float32Var(&voltage, VoltageOptionName, 0, "Trigger level, mV")
	return cmd
}
