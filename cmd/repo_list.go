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

	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/spf13/cobra"
)

// listRepoCmd represents the list command
var listRepoCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the package repositories configured on the cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		repositories, err := universe.NewManager(newRunner(cfg), &logger).List(context.Background())
		if err != nil {
			return err
		}

		repos := universe.Repos{}
		for _, repo := range repositories {
			repos[repo.Name] = repo.URI
		}
		printRepos(repos)
		return nil
	},
}

func init() {
	repoCmd.AddCommand(listRepoCmd)
}
