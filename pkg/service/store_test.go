package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Layr-Labs/merkletree-go/pkg/config"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(t *testing.T) *config.PersistenceConfig
	}{
		{
			name: "memory",
			cfg:  func(t *testing.T) *config.PersistenceConfig { return &config.PersistenceConfig{Type: config.PersistenceTypeMemory} },
		},
		{
			name: "badger",
			cfg: func(t *testing.T) *config.PersistenceConfig {
				return &config.PersistenceConfig{Type: config.PersistenceTypeBadger, DataPath: t.TempDir()}
			},
		},
		{
			name: "leveldb",
			cfg: func(t *testing.T) *config.PersistenceConfig {
				return &config.PersistenceConfig{Type: config.PersistenceTypeLevelDB, DataPath: t.TempDir()}
			},
		},
		{
			name: "sqlite",
			cfg: func(t *testing.T) *config.PersistenceConfig {
				return &config.PersistenceConfig{Type: config.PersistenceTypeSQLite, DataPath: filepath.Join(t.TempDir(), "trees.sqlite")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.cfg(t), zaptest.NewLogger(t))
			require.NoError(t, err)
			defer func() { _ = store.Close() }()

			assert.NoError(t, store.HealthCheck())
		})
	}
}

func TestNewStore_Invalid(t *testing.T) {
	_, err := NewStore(nil, zaptest.NewLogger(t))
	require.Error(t, err)

	_, err = NewStore(&config.PersistenceConfig{Type: "etcd"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported persistence type")
}
