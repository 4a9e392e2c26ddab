package settingsstore

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var settingsBucket = []byte("settings")

// BboltStore persists settings documents in a local bbolt file, useful
// for a single-process CLI run that doesn't need a network-attached
// store.
type BboltStore struct {
	db *bolt.DB
}

// NewBboltStore opens path (creating it if needed) and ensures the
// settings bucket exists.
func NewBboltStore(path string) (*BboltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("settingsstore: open bbolt %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("settingsstore: create bucket: %w", err)
	}
	return &BboltStore{db: db}, nil
}

func (s *BboltStore) Save(_ context.Context, key string, data []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("settingsstore: bbolt save %q: %w", key, err)
	}
	return nil
}

func (s *BboltStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(settingsBucket).Get([]byte(key))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("settingsstore: bbolt load %q: %w", key, err)
	}
	return data, data != nil, nil
}

// Close releases the underlying bbolt file handle.
func (s *BboltStore) Close() error { return s.db.Close() }
