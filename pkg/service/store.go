package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkletree-go/pkg/config"
	"github.com/Layr-Labs/merkletree-go/pkg/persistence"
	persistenceBadger "github.com/Layr-Labs/merkletree-go/pkg/persistence/badger"
	persistenceLevelDB "github.com/Layr-Labs/merkletree-go/pkg/persistence/leveldb"
	persistenceMemory "github.com/Layr-Labs/merkletree-go/pkg/persistence/memory"
	persistenceRedis "github.com/Layr-Labs/merkletree-go/pkg/persistence/redis"
	persistenceSQLite "github.com/Layr-Labs/merkletree-go/pkg/persistence/sqlite"
)

// NewStore opens the tree store backend selected by cfg.
func NewStore(cfg *config.PersistenceConfig, logger *zap.Logger) (persistence.ITreeStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("persistence config cannot be nil")
	}

	switch cfg.Type {
	case config.PersistenceTypeMemory, "":
		return persistenceMemory.NewMemoryPersistence(), nil
	case config.PersistenceTypeBadger:
		return persistenceBadger.NewBadgerPersistence(cfg.DataPath, logger)
	case config.PersistenceTypeLevelDB:
		return persistenceLevelDB.NewLevelDBPersistence(cfg.DataPath, logger)
	case config.PersistenceTypeSQLite:
		return persistenceSQLite.NewSQLitePersistence(cfg.DataPath, logger)
	case config.PersistenceTypeRedis:
		return persistenceRedis.NewRedisPersistence(&persistenceRedis.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported persistence type %q, supported: %s",
			cfg.Type, config.GetSupportedPersistenceTypesString())
	}
}
