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
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/perdasilva/stubuniverse/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sirupsen/logrus"
)

var logger logrus.Logger

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stubuniverse",
	Short: "Provisions stub package repositories and the package registry around integration test runs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return err
		}

		trace, err := cmd.Flags().GetBool("trace")
		if err != nil {
			return err
		}

		if trace {
			logger.SetLevel(logrus.TraceLevel)
		} else if debug {
			logger.SetLevel(logrus.DebugLevel)
		}

		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// setup logger and log format
	logger = logrus.Logger{
		Out:   os.Stderr,
		Level: logrus.InfoLevel,
		Hooks: make(logrus.LevelHooks),
		Formatter: &logrus.TextFormatter{
			ForceColors:     true,
			DisableColors:   false,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
	}
	err := rootCmd.Execute()
	if err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) && exitErr.code > 0 {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "set debug output level")
	rootCmd.PersistentFlags().BoolP("trace", "t", false, "set trace output level")
	rootCmd.PersistentFlags().String("cli", "", "cluster CLI binary (env CLUSTER_CLI)")
	rootCmd.PersistentFlags().String("state", "", "session state file (env STATE_PATH)")
	cobra.CheckErr(viper.BindPFlag(config.CLIBinaryKey, rootCmd.PersistentFlags().Lookup("cli")))
	cobra.CheckErr(viper.BindPFlag(config.StatePathKey, rootCmd.PersistentFlags().Lookup("state")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Find home directory.
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	// Search config in home/.stubuniverse/config (without extension)
	configPath := path.Join(home, ".stubuniverse")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(configPath, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	viper.AddConfigPath(configPath)
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	config.SetDefaults(viper.GetViper(), configPath)

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
