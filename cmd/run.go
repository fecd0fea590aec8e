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
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run -- <command> [args...]",
	Short: "Runs a test command inside a session, tearing it down afterwards",
	Args:  cobra.MinimumNArgs(1),
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

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return s.Run(ctx, func(ctx context.Context) error {
			logger.Infof("Running %v", args)
			testCmd := exec.CommandContext(ctx, args[0], args[1:]...)
			testCmd.Stdin = os.Stdin
			testCmd.Stdout = os.Stdout
			testCmd.Stderr = os.Stderr
			err := testCmd.Run()

			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &exitCodeError{code: exitErr.ExitCode()}
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
