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

package snapshot

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-scope/cmd/channel"
	"jinr.ru/greenlab/go-scope/pkg/command"
	"jinr.ru/greenlab/go-scope/pkg/config"
)

const (
	NoteOptionName = "note"
)

func NewCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Store and inspect captured screens",
	}
	cmd.AddCommand(newSaveCommand(cfg))
	cmd.AddCommand(newListCommand(cfg))
	cmd.AddCommand(newGetCommand(cfg))
	cmd.AddCommand(newDeleteCommand(cfg))
	return cmd
}

func parseArgs(args []string) (int, uint64, error) {
	ch, err := channel.ParseChannel(args[0])
	if err != nil {
		return 0, 0, err
	}
	if len(args) < 2 {
		return ch, 0, nil
	}
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("wrong snapshot id: %s", args[1])
	}
	return ch, id, nil
}

func newSaveCommand(cfg *config.Config) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "save CHANNEL",
		Short: "Store the current screen and settings of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, _, err := parseArgs(args)
			if err != nil {
				return err
			}
			snap, err := command.NewApiClient(cfg).SaveSnapshot(ch, note)
			if err != nil {
				return err
			}
			cmd.Printf("Snapshot %d saved\n", snap.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, NoteOptionName, "", "Free text note")
	return cmd
}

func newListCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list CHANNEL",
		Short: "List stored snapshots of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, _, err := parseArgs(args)
			if err != nil {
				return err
			}
			snaps, err := command.NewApiClient(cfg).Snapshots(ch)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tSTATE\tVOLTAGE\tTIME SCALE\tNOTE")
			for _, snap := range snaps {
				fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%g\t%s\n",
					snap.ID, snap.Time.Local().Format(time.RFC3339), snap.Status.State,
					snap.Status.VoltageScale, snap.Status.TimeScale, snap.Note)
			}
			return w.Flush()
		},
	}
}

func newGetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get CHANNEL ID",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, id, err := parseArgs(args)
			if err != nil {
				return err
			}
			snap, err := command.NewApiClient(cfg).Snapshot(ch, id)
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), snap)
		},
	}
}

func newDeleteCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CHANNEL ID",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, id, err := parseArgs(args)
			if err != nil {
				return err
			}
			return command.NewApiClient(cfg).DeleteSnapshot(ch, id)
		},
	}
}
