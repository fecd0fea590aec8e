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
	"fmt"

	"github.com/perdasilva/stubuniverse/internal/registry"
	"github.com/spf13/cobra"
)

// versionCheckCmd represents the check command
var versionCheckCmd = &cobra.Command{
	Use:   "check-registry-support",
	Short: "Checks that the cluster is recent enough for the package registry stub",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.PackageRegistryStubURL == "" {
			return fmt.Errorf("PACKAGE_REGISTRY_STUB_URL is not set")
		}

		runner := newRunner(cfg)
		client := registry.NewHTTPClient(registry.DefaultHTTPConfig())
		version := registry.NewVersionSource(runner, client)
		if err := registry.CheckStub(context.Background(), client, version, cfg.PackageRegistryStubURL); err != nil {
			return err
		}

		clusterVersion, err := version.ClusterVersion(context.Background())
		if err != nil {
			return err
		}
		logger.Infof("DC/OS %s supports the package registry", clusterVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCheckCmd)
}
