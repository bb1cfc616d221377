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

package trigger

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-scope/pkg/command"
	"jinr.ru/greenlab/go-scope/pkg/config"
)

const (
	AscendingOptionName  = "ascending"
	DescendingOptionName = "descending"
)

func NewCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Show or set trigger polarity",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := command.NewApiClient(cfg).Trigger()
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), setup)
		},
	}
	cmd.AddCommand(newSetCommand(cfg))
	return cmd
}

func newSetCommand(cfg *config.Config) *cobra.Command {
	var ascending, descending bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set trigger polarity, no flags disables the trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := command.NewApiClient(cfg).SetTrigger(ascending, descending)
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), setup)
		},
	}
	cmd.Flags().BoolVar(&ascending, AscendingOptionName, false, "Trigger on rising edges")
	cmd.Flags().BoolVar(&descending, DescendingOptionName, false, "Trigger on falling edges")
	return cmd
}
