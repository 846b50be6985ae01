package badger

import (
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
)

// Manager implements interfaces.StorageManager for Badger.
type Manager struct {
	db     *BadgerDB
	kv     *KVStorage
	logger *common.Logger
}

// NewManager opens the database and its key-value store.
func NewManager(logger *common.Logger, cfg *config.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, cfg)
	if err != nil {
		return nil, err
	}
	return &Manager{db: db, kv: NewKVStorage(db, logger), logger: logger}, nil
}

// KeyValueStorage returns the key-value store.
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
