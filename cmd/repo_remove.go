/*
Copyright © 2022 Per G. da Silva <pegoncal@redhat.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"

	"github.com/perdasilva/stubuniverse/internal/store"
	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/spf13/cobra"
)

// removeRepoCmd represents the remove command
var removeRepoCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Removes repositories by name; repositories that are already gone are skipped",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		state, err := store.OpenSessionStore(cfg.StatePath, &logger)
		if err != nil {
			return err
		}
		defer state.Close()

		manager := universe.NewManager(newRunner(cfg), &logger)
		for _, name := range args {
			if err := manager.Remove(context.Background(), name); err != nil {
				return err
			}
			if err := state.Untrack(name); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	repoCmd.AddCommand(removeRepoCmd)
}
