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

// addRepoCmd represents the add command
var addRepoCmd = &cobra.Command{
	Use:   "add <url>...",
	Short: "Adds stub repositories under generated names, replacing any pointing at the same URLs",
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

		var urls []string
		for _, arg := range args {
			urls = append(urls, universe.ParseURLs(arg)...)
		}

		repos, err := universe.NewManager(newRunner(cfg), &logger).WithTracker(state).AddStubURLs(context.Background(), urls)
		if err != nil {
			return err
		}
		printRepos(repos)
		return nil
	},
}

func init() {
	repoCmd.AddCommand(addRepoCmd)
}
