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

package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-scope/pkg/command"
	"jinr.ru/greenlab/go-scope/pkg/config"
)

const (
	IPOptionName         = "ip"
	ApiPortOptionName    = "api-port"
	SourcePortOptionName = "source-port"
	DBPathOptionName     = "db"
)

func NewCommand() *cobra.Command {
	var ip, dbPath string
	var apiPort, sourcePort int
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start scope server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ip != "" {
				cfg.IP = ip
			}
			if apiPort != 0 {
				cfg.ApiPort = apiPort
			}
			if sourcePort != 0 {
				cfg.SourcePort = sourcePort
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			return command.StartScopeServer(cfg)
		},
	}
	cmd.Flags().StringVar(&ip, IPOptionName, "", fmt.Sprintf("IP to bind. E.g. %s", config.DefaultIP))
	cmd.Flags().IntVar(&apiPort, ApiPortOptionName, 0, fmt.Sprintf("API port. E.g. %d", config.DefaultApiPort))
	cmd.Flags().IntVar(&sourcePort, SourcePortOptionName, 0, fmt.Sprintf("UDP port for sample frames. E.g. %d", config.DefaultSourcePort))
	cmd.Flags().StringVar(&dbPath, DBPathOptionName, "", "Snapshot database path")

	return cmd
}
