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
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/perdasilva/stubuniverse/internal/config"
	"github.com/perdasilva/stubuniverse/internal/registry"
	"github.com/perdasilva/stubuniverse/internal/session"
	"github.com/perdasilva/stubuniverse/internal/store"
	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/spf13/viper"
)

type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

func newRunner(cfg config.Config) clusterctl.Runner {
	return clusterctl.NewExecRunner(cfg.CLIBinary, &logger)
}

// openSession wires a session from configuration. The caller closes both return values.
func openSession(cfg config.Config) (*session.Session, *store.SessionStore, error) {
	state, err := store.OpenSessionStore(cfg.StatePath, &logger)
	if err != nil {
		return nil, nil, err
	}
	s, err := session.New(cfg, newRunner(cfg), registry.NewHTTPClient(registry.DefaultHTTPConfig()), state, &logger)
	if err != nil {
		_ = state.Close()
		return nil, nil, err
	}
	return s, state, nil
}

func printRepos(repos universe.Repos) {
	if len(repos) == 0 {
		fmt.Println("No repositories found...")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"REPOSITORY", "SOURCE"})
	for _, name := range repos.Names() {
		t.AppendRow(table.Row{name, repos[name]})
	}
	t.Render()
}
