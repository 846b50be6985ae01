package storage

import (
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
	"github.com/bobmcallan/brief-portal/internal/storage/badger"
)

// NewStorageManager opens the storage backend named by cfg.
func NewStorageManager(logger *common.Logger, cfg *config.Config) (interfaces.StorageManager, error) {
	return badger.NewManager(logger, &cfg.Storage.Badger)
}
