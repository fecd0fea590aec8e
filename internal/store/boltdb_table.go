package store

import (
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
)

type IdentifiableEntry interface {
	EntryID() string
}

type IterationFunction[E IdentifiableEntry] func(*E) error

type BoltDBTable[E IdentifiableEntry] struct {
	tableName []byte
	database  *bolt.DB
}

func NewBoltDBTable[E IdentifiableEntry](database *bolt.DB, tableName string) (*BoltDBTable[E], error) {
	if database == nil {
		return nil, fmt.Errorf("database parameter is nil")
	}

	if tableName == "" {
		return nil, fmt.Errorf("tableName parameter is empty")
	}

	return &BoltDBTable[E]{
		tableName: []byte(tableName),
		database:  database,
	}, nil
}

// Create creates the backing bucket if it is not there yet
func (b *BoltDBTable[E]) Create() error {
	return b.database.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(b.tableName)
		return err
	})
}

func (b *BoltDBTable[E]) Get(key string) (*E, error) {
	var entry *E
	err := b.database.View(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx)
		if err != nil {
			return err
		}
		valueBytes := bucket.Get([]byte(key))
		if valueBytes == nil {
			return nil
		}
		entry, err = b.decode(valueBytes)
		return err
	})
	return entry, err
}

func (b *BoltDBTable[E]) Has(key string) (bool, error) {
	entry, err := b.Get(key)
	return entry != nil, err
}

func (b *BoltDBTable[E]) List() ([]E, error) {
	var entries []E
	err := b.Iterate(func(entry *E) error {
		entries = append(entries, *entry)
		return nil
	})
	return entries, err
}

func (b *BoltDBTable[E]) Insert(entry *E) error {
	return b.database.Update(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx)
		if err != nil {
			return err
		}
		valueBytes, err := b.encode(entry)
		if err != nil {
			return err
		}
		return bucket.Put([]byte((*entry).EntryID()), valueBytes)
	})
}

func (b *BoltDBTable[E]) DeleteEntryWithKey(key string) error {
	return b.database.Update(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx)
		if err != nil {
			return err
		}
		return bucket.Delete([]byte(key))
	})
}

// Truncate removes every entry, leaving the table in place
func (b *BoltDBTable[E]) Truncate() error {
	return b.database.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(b.tableName) != nil {
			if err := tx.DeleteBucket(b.tableName); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(b.tableName)
		return err
	})
}

func (b *BoltDBTable[E]) Iterate(fn IterationFunction[E]) error {
	return b.database.View(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(_, value []byte) error {
			entry, err := b.decode(value)
			if err != nil {
				return err
			}
			return fn(entry)
		})
	})
}

func (b *BoltDBTable[E]) bucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket(b.tableName)
	if bucket == nil {
		return nil, fmt.Errorf("table %s does not exist", b.tableName)
	}
	return bucket, nil
}

func (b *BoltDBTable[E]) encode(entry *E) ([]byte, error) {
	return json.Marshal(entry)
}

func (b *BoltDBTable[E]) decode(data []byte) (*E, error) {
	entry := new(E)
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
