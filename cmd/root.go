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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-scope/cmd/channel"
	"jinr.ru/greenlab/go-scope/cmd/completion"
	"jinr.ru/greenlab/go-scope/cmd/config"
	"jinr.ru/greenlab/go-scope/cmd/serve"
	"jinr.ru/greenlab/go-scope/cmd/simulate"
	"jinr.ru/greenlab/go-scope/cmd/snapshot"
	"jinr.ru/greenlab/go-scope/cmd/status"
	"jinr.ru/greenlab/go-scope/cmd/trigger"
	pkgconfig "jinr.ru/greenlab/go-scope/pkg/config"
	"jinr.ru/greenlab/go-scope/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel string
	cfg := pkgconfig.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "go-scope",
		Short: "Two channel oscilloscope acquisition server and client",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
		SilenceUsage: true,
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand())
	cmd.AddCommand(serve.NewCommand())
	cmd.AddCommand(simulate.NewCommand())
	cmd.AddCommand(status.NewCommand())
	cmd.AddCommand(channel.NewCommand())
	cmd.AddCommand(trigger.NewCommand())
	cmd.AddCommand(snapshot.NewCommand())
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	return cmd
}
