// Package store persists what a session set up so it can be torn down later,
// possibly by another process.
package store

import (
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/sirupsen/logrus"
)

const (
	repositoriesBucket = "repositories"
	sessionBucket      = "session"
	currentSessionKey  = "current"
	openTimeout        = 5 * time.Second
)

type TrackedRepository struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (t TrackedRepository) EntryID() string {
	return t.Name
}

// SessionRecord describes the resources a session created besides repositories
type SessionRecord struct {
	RegistryEnabled   bool      `json:"registryEnabled"`
	RegistryInstalled bool      `json:"registryInstalled,omitempty"`
	ServiceAccountUID string    `json:"serviceAccountUid,omitempty"`
	SecretPath        string    `json:"secretPath,omitempty"`
	StartedAt         time.Time `json:"startedAt"`
}

func (s SessionRecord) EntryID() string {
	return currentSessionKey
}

var _ universe.Tracker = &SessionStore{}

type SessionStore struct {
	database     *bolt.DB
	repositories *BoltDBTable[TrackedRepository]
	sessions     *BoltDBTable[SessionRecord]
	logger       *logrus.Logger
}

func OpenSessionStore(path string, logger *logrus.Logger) (*SessionStore, error) {
	if logger == nil {
		panic("no logger specified")
	}

	database, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("error opening session state %s: %w", path, err)
	}

	repositories, err := NewBoltDBTable[TrackedRepository](database, repositoriesBucket)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	sessions, err := NewBoltDBTable[SessionRecord](database, sessionBucket)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	for _, create := range []func() error{repositories.Create, sessions.Create} {
		if err := create(); err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	return &SessionStore{
		database:     database,
		repositories: repositories,
		sessions:     sessions,
		logger:       logger,
	}, nil
}

func (s *SessionStore) Track(name string, url string) error {
	s.logger.Debugf("tracking repo %s (%s)", name, url)
	return s.repositories.Insert(&TrackedRepository{Name: name, URL: url})
}

func (s *SessionStore) Untrack(name string) error {
	return s.repositories.DeleteEntryWithKey(name)
}

func (s *SessionStore) Repositories() (universe.Repos, error) {
	entries, err := s.repositories.List()
	if err != nil {
		return nil, err
	}
	repos := universe.Repos{}
	for _, entry := range entries {
		repos[entry.Name] = entry.URL
	}
	return repos, nil
}

func (s *SessionStore) SaveSession(record SessionRecord) error {
	return s.sessions.Insert(&record)
}

// Session returns the recorded session, or nil when none was started
func (s *SessionStore) Session() (*SessionRecord, error) {
	return s.sessions.Get(currentSessionKey)
}

// Clear forgets everything recorded about the session
func (s *SessionStore) Clear() error {
	if err := s.repositories.Truncate(); err != nil {
		return err
	}
	return s.sessions.Truncate()
}

func (s *SessionStore) Close() error {
	return s.database.Close()
}
