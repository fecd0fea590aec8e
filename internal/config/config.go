// Package config maps environment variables, flags and the optional config file onto session settings.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/perdasilva/stubuniverse/internal/poll"
	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/spf13/viper"
)

const (
	StubUniverseURLKey        = "STUB_UNIVERSE_URL"
	FilesPathKey              = "DCOS_FILES_PATH"
	PackageRegistryEnabledKey = "PACKAGE_REGISTRY_ENABLED"
	PackageRegistryStubURLKey = "PACKAGE_REGISTRY_STUB_URL"
	CLIBinaryKey              = "CLUSTER_CLI"
	StatePathKey              = "STATE_PATH"
	WorkDirKey                = "WORK_DIR"
	PollDelayKey              = "POLL_DELAY"
	PollTimeoutKey            = "POLL_TIMEOUT"
	ConfigPathKey             = "configPath"

	stateFileName = "session.db"
)

type Config struct {
	StubUniverseURLs       []string
	FilesPath              string
	PackageRegistryEnabled bool
	PackageRegistryStubURL string
	CLIBinary              string
	StatePath              string
	WorkDir                string
	PollDelay              time.Duration
	PollTimeout            time.Duration
}

// SetDefaults registers defaults and environment bindings on v
func SetDefaults(v *viper.Viper, configPath string) {
	v.SetDefault(ConfigPathKey, configPath)
	v.SetDefault(CLIBinaryKey, "dcos")
	v.SetDefault(StatePathKey, filepath.Join(configPath, stateFileName))
	v.SetDefault(PackageRegistryEnabledKey, "false")
	v.SetDefault(PollDelayKey, poll.DefaultDelay)
	v.SetDefault(PollTimeoutKey, poll.DefaultTimeout)

	for _, key := range []string{
		StubUniverseURLKey, FilesPathKey, PackageRegistryEnabledKey, PackageRegistryStubURLKey,
		CLIBinaryKey, StatePathKey, WorkDirKey, PollDelayKey, PollTimeoutKey,
	} {
		_ = v.BindEnv(key)
	}
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		StubUniverseURLs:       universe.ParseURLs(v.GetString(StubUniverseURLKey)),
		FilesPath:              v.GetString(FilesPathKey),
		PackageRegistryEnabled: v.GetString(PackageRegistryEnabledKey) == "true",
		PackageRegistryStubURL: v.GetString(PackageRegistryStubURLKey),
		CLIBinary:              v.GetString(CLIBinaryKey),
		StatePath:              v.GetString(StatePathKey),
		WorkDir:                v.GetString(WorkDirKey),
		PollDelay:              v.GetDuration(PollDelayKey),
		PollTimeout:            v.GetDuration(PollTimeoutKey),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.PackageRegistryEnabled && c.PackageRegistryStubURL == "" {
		return fmt.Errorf("%s must be set when %s is true", PackageRegistryStubURLKey, PackageRegistryEnabledKey)
	}
	if c.StatePath == "" {
		return fmt.Errorf("%s must be set", StatePathKey)
	}
	if c.PollDelay <= 0 || c.PollTimeout <= 0 {
		return fmt.Errorf("%s and %s must be positive", PollDelayKey, PollTimeoutKey)
	}
	return nil
}

func (c Config) PollOptions() []poll.Option {
	return []poll.Option{poll.WithDelay(c.PollDelay), poll.WithTimeout(c.PollTimeout)}
}
