// Package session sets up the package repositories, and optionally the package
// registry, that a test session needs and guarantees they are removed afterwards.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/perdasilva/stubuniverse/internal/config"
	"github.com/perdasilva/stubuniverse/internal/registry"
	"github.com/perdasilva/stubuniverse/internal/security"
	"github.com/perdasilva/stubuniverse/internal/store"
	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/sirupsen/logrus"
)

const (
	serviceUIDPrefix = "pkg-reg-uid"
	registryResource = "dcos:adminrouter:ops:ca:rw"
	registryAction   = "full"
)

var ErrSessionActive = errors.New("a session is already active, run teardown first")

type Session struct {
	cfg    config.Config
	runner clusterctl.Runner
	state  *store.SessionStore
	logger *logrus.Logger
	client *http.Client

	workDir     string
	ownsWorkDir bool

	repos     *universe.Manager
	accounts  *security.Accounts
	installer *registry.Installer
	bundles   *registry.BundleBuilder
	version   *registry.VersionSource
}

func New(cfg config.Config, runner clusterctl.Runner, client *http.Client, state *store.SessionStore, logger *logrus.Logger) (*Session, error) {
	if logger == nil {
		panic("no logger specified")
	}

	workDir, ownsWorkDir := cfg.WorkDir, false
	if workDir == "" {
		var err error
		if workDir, err = os.MkdirTemp("", "stubuniverse-"); err != nil {
			return nil, err
		}
		ownsWorkDir = true
	}

	version := registry.NewVersionSource(runner, client)
	return &Session{
		cfg:         cfg,
		runner:      runner,
		state:       state,
		logger:      logger,
		client:      client,
		workDir:     workDir,
		ownsWorkDir: ownsWorkDir,
		repos:       universe.NewManager(runner, logger).WithTracker(state),
		accounts:    security.NewAccounts(runner, workDir, logger),
		installer:   registry.NewInstaller(runner, workDir, logger, cfg.PollOptions()...).WithTracker(state),
		bundles:     registry.NewBundleBuilder(runner, client, version, workDir, logger),
		version:     version,
	}, nil
}

// Setup adds the configured repositories, or installs and fills the package
// registry when it is enabled. Everything it creates is recorded before it is
// created so Teardown can clean up after a partial setup.
func (s *Session) Setup(ctx context.Context) error {
	record, err := s.state.Session()
	if err != nil {
		return err
	}
	if record != nil {
		return ErrSessionActive
	}

	record = &store.SessionRecord{
		RegistryEnabled: s.cfg.PackageRegistryEnabled,
		StartedAt:       time.Now().UTC(),
	}
	if err := s.state.SaveSession(*record); err != nil {
		return err
	}

	if !s.cfg.PackageRegistryEnabled {
		_, err := s.repos.AddStubURLs(ctx, s.cfg.StubUniverseURLs)
		return err
	}
	return s.setupRegistry(ctx, record)
}

func (s *Session) setupRegistry(ctx context.Context, record *store.SessionRecord) error {
	// TODO: install from the bootstrap registry once clusters ship one, instead of the stub
	if err := registry.CheckStub(ctx, s.client, s.version, s.cfg.PackageRegistryStubURL); err != nil {
		return err
	}
	repos, err := s.repos.AddStubURLs(ctx, []string{s.cfg.PackageRegistryStubURL})
	if err != nil {
		return err
	}

	record.ServiceAccountUID = universe.RandomName(serviceUIDPrefix)
	record.SecretPath = universe.RandomName(record.ServiceAccountUID)
	if err := s.state.SaveSession(*record); err != nil {
		return err
	}
	if err := s.accounts.Create(ctx, record.ServiceAccountUID, record.SecretPath); err != nil {
		return err
	}
	if err := s.accounts.Grant(ctx, record.ServiceAccountUID, registryResource, registryAction); err != nil {
		return err
	}

	record.RegistryInstalled = true
	if err := s.state.SaveSession(*record); err != nil {
		return err
	}
	registryRepos, err := s.installer.Install(ctx, record.SecretPath)
	if err != nil {
		return err
	}
	repos = repos.Merge(registryRepos)
	s.logger.Infof("Registry repos: %v", repos.Names())

	filesPath := s.filesPath()
	s.logger.Infof("Using %s to build bundle files (if not exists) from %v", filesPath, s.cfg.StubUniverseURLs)
	bundles, err := s.bundles.BuildFromStubs(ctx, s.cfg.StubUniverseURLs, filesPath)
	if err != nil {
		return err
	}
	s.logger.Infof("Bundled files: %v", bundles)
	return s.bundles.AddToRegistry(ctx, bundles)
}

func (s *Session) filesPath() string {
	if s.cfg.FilesPath != "" {
		if info, err := os.Stat(s.cfg.FilesPath); err == nil && info.IsDir() {
			return s.cfg.FilesPath
		}
	}
	return s.workDir
}

// Teardown removes everything recorded by Setup. It keeps going past failures
// and only forgets the session once every step succeeded.
func (s *Session) Teardown(ctx context.Context) error {
	record, err := s.state.Session()
	if err != nil {
		return err
	}
	repos, err := s.state.Repositories()
	if err != nil {
		return err
	}

	var errs []error
	if err := s.repos.RemoveAll(ctx, repos); err != nil {
		errs = append(errs, err)
	}

	if record != nil && record.RegistryEnabled {
		if record.RegistryInstalled {
			if err := s.installer.Uninstall(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		// deleting the secret is enough, the grant goes with the account
		if record.ServiceAccountUID != "" {
			if err := s.accounts.Delete(ctx, record.ServiceAccountUID, record.SecretPath); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return s.state.Clear()
}

// Run sets the session up, hands control to fn and always tears down
// afterwards, even when setup failed part way. A session started elsewhere
// is left alone.
func (s *Session) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if setupErr := s.Setup(ctx); setupErr != nil {
		err = fmt.Errorf("setup: %w", setupErr)
		if errors.Is(setupErr, ErrSessionActive) {
			return err
		}
		if teardownErr := s.Teardown(context.WithoutCancel(ctx)); teardownErr != nil {
			err = errors.Join(err, fmt.Errorf("teardown: %w", teardownErr))
		}
		return err
	}

	defer func() {
		if teardownErr := s.Teardown(context.WithoutCancel(ctx)); teardownErr != nil {
			err = errors.Join(err, fmt.Errorf("teardown: %w", teardownErr))
		}
	}()
	s.logger.Info("Set up universe session successfully")
	return fn(ctx)
}

// Repos returns the repositories the session currently tracks
func (s *Session) Repos() (universe.Repos, error) {
	return s.state.Repositories()
}

// Close releases the scratch directory if the session created it
func (s *Session) Close() error {
	if s.ownsWorkDir {
		return os.RemoveAll(s.workDir)
	}
	return nil
}
