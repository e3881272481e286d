package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkletree-go/pkg/merkle"
)

func TestNewDefaultTreeServiceConfig(t *testing.T) {
	cfg := NewDefaultTreeServiceConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PersistenceTypeMemory, cfg.Persistence.Type)
	assert.Equal(t, "sha3-256", cfg.Hash)
}

func TestTreeServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *TreeServiceConfig)
		errContains string
	}{
		{
			name:        "missing tree name",
			mutate:      func(c *TreeServiceConfig) { c.TreeName = "" },
			errContains: "treeName",
		},
		{
			name:        "depth too large",
			mutate:      func(c *TreeServiceConfig) { c.Depth = merkle.MaxDepth + 1 },
			errContains: fmt.Sprintf("depth must be at most %d", merkle.MaxDepth),
		},
		{
			name:        "initial leaf not hex",
			mutate:      func(c *TreeServiceConfig) { c.InitialLeaf = "Unexpected" },
			errContains: "initialLeaf",
		},
		{
			name:        "unknown hash",
			mutate:      func(c *TreeServiceConfig) { c.Hash = "md5" },
			errContains: "hash",
		},
		{
			name:        "unknown persistence type",
			mutate:      func(c *TreeServiceConfig) { c.Persistence.Type = "etcd" },
			errContains: "persistence.type",
		},
		{
			name:        "badger without data path",
			mutate:      func(c *TreeServiceConfig) { c.Persistence.Type = PersistenceTypeBadger },
			errContains: "dataPath is required for badger persistence",
		},
		{
			name:        "sqlite without data path",
			mutate:      func(c *TreeServiceConfig) { c.Persistence.Type = PersistenceTypeSQLite },
			errContains: "persistence.dataPath",
		},
		{
			name:        "redis without address",
			mutate:      func(c *TreeServiceConfig) { c.Persistence.Type = PersistenceTypeRedis },
			errContains: "redisAddress is required",
		},
		{
			name: "redis db out of range",
			mutate: func(c *TreeServiceConfig) {
				c.Persistence.Type = PersistenceTypeRedis
				c.Persistence.RedisAddress = "localhost:6379"
				c.Persistence.RedisDB = 16
			},
			errContains: "redisDB must be between 0-15",
		},
		{
			name:        "port out of range",
			mutate:      func(c *TreeServiceConfig) { c.Port = 70000 },
			errContains: "port must be between 1-65535",
		},
		{
			name:        "negative rate limit",
			mutate:      func(c *TreeServiceConfig) { c.RateLimit = -1 },
			errContains: "rateLimit cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultTreeServiceConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestTreeServiceConfigValidate_AggregatesErrors(t *testing.T) {
	cfg := NewDefaultTreeServiceConfig()
	cfg.TreeName = ""
	cfg.Port = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "treeName")
	assert.Contains(t, err.Error(), "port")
}

func TestTreeServiceConfigValidate_DiskBackends(t *testing.T) {
	for _, p := range []PersistenceType{PersistenceTypeBadger, PersistenceTypeLevelDB, PersistenceTypeSQLite} {
		t.Run(p.String(), func(t *testing.T) {
			cfg := NewDefaultTreeServiceConfig()
			cfg.Persistence.Type = p
			cfg.Persistence.DataPath = t.TempDir()
			assert.NoError(t, cfg.Validate())
			assert.True(t, p.RequiresDataPath())
		})
	}
	assert.False(t, PersistenceTypeRedis.RequiresDataPath())
	assert.False(t, PersistenceTypeMemory.RequiresDataPath())
}

func TestGetSupportedPersistenceTypesString(t *testing.T) {
	assert.Equal(t, "memory, badger, redis, leveldb, sqlite", GetSupportedPersistenceTypesString())
}

// TestTreeServiceConfigValidate_DepthBound tests that every depth Validate accepts can be constructed
func TestTreeServiceConfigValidate_DepthBound(t *testing.T) {
	cfg := NewDefaultTreeServiceConfig()
	cfg.Depth = merkle.MaxDepth
	require.NoError(t, cfg.Validate())

	cfg.Depth = merkle.MaxDepth + 1
	require.Error(t, cfg.Validate())

	_, err := merkle.NewMerkleTree(cfg.Depth, cfg.InitialLeaf)
	require.ErrorIs(t, err, merkle.ErrDepthTooLarge)
}
