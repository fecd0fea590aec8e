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
	"os"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/perdasilva/stubuniverse/internal/registry"
	"github.com/spf13/cobra"
)

// buildBundleCmd represents the bundle build command
var buildBundleCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds registry bundle files from the packages in STUB_UNIVERSE_URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		outputDir, err := cmd.Flags().GetString("output-dir")
		if err != nil {
			return err
		}
		if outputDir == "" {
			outputDir = cfg.FilesPath
		}
		if outputDir == "" {
			return fmt.Errorf("no output directory, set --output-dir or DCOS_FILES_PATH")
		}
		add, err := cmd.Flags().GetBool("add")
		if err != nil {
			return err
		}

		workDir, err := os.MkdirTemp(cfg.WorkDir, "bundles-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(workDir)

		runner := newRunner(cfg)
		client := registry.NewHTTPClient(registry.DefaultHTTPConfig())
		builder := registry.NewBundleBuilder(runner, client, registry.NewVersionSource(runner, client), workDir, &logger)

		ctx := context.Background()
		bundles, err := builder.BuildFromStubs(ctx, cfg.StubUniverseURLs, outputDir)
		if err != nil {
			return err
		}

		l := list.NewWriter()
		l.SetStyle(list.StyleConnectedRounded)
		l.AppendItem("Bundles")
		l.Indent()
		for _, bundle := range bundles {
			l.AppendItem(bundle)
		}
		l.UnIndent()
		fmt.Println(l.Render())

		if add {
			return builder.AddToRegistry(ctx, bundles)
		}
		return nil
	},
}

// bundleCmd groups the bundle commands
var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Builds and uploads package registry bundles",
}

func init() {
	buildBundleCmd.Flags().String("output-dir", "", "directory for the bundle files (defaults to DCOS_FILES_PATH)")
	buildBundleCmd.Flags().Bool("add", false, "add the built bundles to the package registry")
	bundleCmd.AddCommand(buildBundleCmd)
	rootCmd.AddCommand(bundleCmd)
}
