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
	"errors"

	"github.com/perdasilva/stubuniverse/internal/session"
	"github.com/spf13/cobra"
)

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Adds the stub repositories (and the package registry, if enabled) and records them for teardown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, state, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer state.Close()
		defer s.Close()

		ctx := context.Background()
		if err := s.Setup(ctx); err != nil {
			if errors.Is(err, session.ErrSessionActive) {
				return err
			}
			logger.Errorf("setup failed, tearing down: %v", err)
			return errors.Join(err, s.Teardown(ctx))
		}

		repos, err := s.Repos()
		if err != nil {
			return err
		}
		printRepos(repos)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
