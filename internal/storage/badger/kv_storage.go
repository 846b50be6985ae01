package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// flag is the stored record. Key is the badgerhold key so lookups never scan.
type flag struct {
	Key   string `badgerhold:"key"`
	Value string
}

// KVStorage implements interfaces.KeyValueStorage on badgerhold.
type KVStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewKVStorage creates a key-value store on db.
func NewKVStorage(db *BadgerDB, logger *common.Logger) *KVStorage {
	return &KVStorage{db: db, logger: logger}
}

// Get returns the value for key, or interfaces.ErrKeyNotFound.
func (s *KVStorage) Get(_ context.Context, key string) (string, error) {
	var f flag
	if err := s.db.Store().Get(key, &f); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", interfaces.ErrKeyNotFound, key)
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return f.Value, nil
}

// Set stores value under key, replacing any previous value.
func (s *KVStorage) Set(_ context.Context, key, value string) error {
	if err := s.db.Store().Upsert(key, &flag{Key: key, Value: value}); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStorage) Delete(_ context.Context, key string) error {
	if err := s.db.Store().Delete(key, flag{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// List returns the pairs whose key starts with prefix.
func (s *KVStorage) List(_ context.Context, prefix string) (map[string]string, error) {
	var flags []flag
	if err := s.db.Store().Find(&flags, nil); err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %q: %w", prefix, err)
	}

	out := make(map[string]string)
	for _, f := range flags {
		if strings.HasPrefix(f.Key, prefix) {
			out[f.Key] = f.Value
		}
	}
	return out, nil
}
