// Package security manages the service account the package registry runs as.
package security

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/sirupsen/logrus"
)

const notFoundMsg = "does not exist"

type Accounts struct {
	runner  clusterctl.Runner
	logger  *logrus.Logger
	workDir string
}

func NewAccounts(runner clusterctl.Runner, workDir string, logger *logrus.Logger) *Accounts {
	if logger == nil {
		panic("no logger specified")
	}
	return &Accounts{
		runner:  runner,
		logger:  logger,
		workDir: workDir,
	}
}

// Create generates a keypair, registers the service account and stores its
// private key in the secret store at secretPath.
func (a *Accounts) Create(ctx context.Context, uid string, secretPath string) error {
	a.logger.Infof("Creating service account %s", uid)

	keyDir, err := os.MkdirTemp(a.workDir, uid+"-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(keyDir)

	privateKey := filepath.Join(keyDir, "private-key.pem")
	publicKey := filepath.Join(keyDir, "public-key.pem")

	commands := [][]string{
		{"security", "org", "service-accounts", "keypair", privateKey, publicKey},
		{"security", "org", "service-accounts", "create", "-p", publicKey, "-d", "account for " + uid, uid},
		{"security", "secrets", "create-sa-secret", "--strict", privateKey, uid, secretPath},
	}
	for _, args := range commands {
		if _, err := clusterctl.MustSucceed(ctx, a.runner, args...); err != nil {
			return fmt.Errorf("error creating service account %s: %w", uid, err)
		}
	}
	return nil
}

func (a *Accounts) Grant(ctx context.Context, uid string, resource string, action string) error {
	a.logger.Infof("Granting %s %s on %s", uid, action, resource)
	_, err := clusterctl.MustSucceed(ctx, a.runner, "security", "org", "users", "grant", uid, resource, action)
	return err
}

// Delete removes the secret and the service account. Either being already gone is fine.
func (a *Accounts) Delete(ctx context.Context, uid string, secretPath string) error {
	a.logger.Infof("Deleting service account %s", uid)
	commands := [][]string{
		{"security", "secrets", "delete", secretPath},
		{"security", "org", "service-accounts", "delete", uid},
	}
	for _, args := range commands {
		result, err := a.runner.Run(ctx, args...)
		if err != nil {
			return err
		}
		if result.Succeeded() || strings.Contains(result.Stderr, notFoundMsg) {
			continue
		}
		return &clusterctl.CommandError{Args: args, Result: result}
	}
	return nil
}
