package config

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/Layr-Labs/merkletree-go/pkg/hashing"
	"github.com/Layr-Labs/merkletree-go/pkg/hexcodec"
	"github.com/Layr-Labs/merkletree-go/pkg/merkle"
)

// Environment variable names for tree service configuration
const (
	EnvMerkleDepth           = "MERKLE_DEPTH"
	EnvMerkleInitialLeaf     = "MERKLE_INITIAL_LEAF"
	EnvMerkleHash            = "MERKLE_HASH"
	EnvMerklePersistenceType = "MERKLE_PERSISTENCE_TYPE"
	EnvMerkleDataPath        = "MERKLE_DATA_PATH"
	EnvMerkleRedisAddress    = "MERKLE_REDIS_ADDRESS"
	EnvMerkleRedisPassword   = "MERKLE_REDIS_PASSWORD"
	EnvMerkleRedisDB         = "MERKLE_REDIS_DB"
	EnvMerkleTreeName        = "MERKLE_TREE_NAME"
	EnvMerklePort            = "MERKLE_PORT"
	EnvMerkleRateLimit       = "MERKLE_RATE_LIMIT"
	EnvMerkleDebug           = "MERKLE_DEBUG"
)

type PersistenceType string

func (p PersistenceType) String() string {
	return string(p)
}

const (
	PersistenceTypeMemory  PersistenceType = "memory"
	PersistenceTypeBadger  PersistenceType = "badger"
	PersistenceTypeRedis   PersistenceType = "redis"
	PersistenceTypeLevelDB PersistenceType = "leveldb"
	PersistenceTypeSQLite  PersistenceType = "sqlite"
)

// GetSupportedPersistenceTypes returns every backend the service can open
func GetSupportedPersistenceTypes() []PersistenceType {
	return []PersistenceType{
		PersistenceTypeMemory,
		PersistenceTypeBadger,
		PersistenceTypeRedis,
		PersistenceTypeLevelDB,
		PersistenceTypeSQLite,
	}
}

// GetSupportedPersistenceTypesString returns supported backends for CLI help
func GetSupportedPersistenceTypesString() string {
	names := make([]string, 0, 5)
	for _, p := range GetSupportedPersistenceTypes() {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}

// RequiresDataPath reports whether the backend stores data on local disk
func (p PersistenceType) RequiresDataPath() bool {
	switch p {
	case PersistenceTypeBadger, PersistenceTypeLevelDB, PersistenceTypeSQLite:
		return true
	default:
		return false
	}
}

// Defaults applied by NewDefaultTreeServiceConfig and the CLI flags
const (
	DefaultTreeName    = "default"
	DefaultDepth       = 16
	DefaultInitialLeaf = "0x0000000000000000000000000000000000000000000000000000000000000000"
	DefaultPort        = 8080
	DefaultRateLimit   = 50
)

// PersistenceConfig selects and configures the tree store backend
type PersistenceConfig struct {
	Type PersistenceType `json:"type"`

	// DataPath is the directory (badger, leveldb) or file (sqlite) holding the store
	DataPath string `json:"data_path"`

	RedisAddress  string `json:"redis_address"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`
}

// TreeServiceConfig represents the complete configuration for a tree service
type TreeServiceConfig struct {
	// Tree identity and shape
	TreeName    string `json:"tree_name"`
	Depth       uint32 `json:"depth"`
	InitialLeaf string `json:"initial_leaf"` // leaf digest used when no stored tree exists
	Hash        string `json:"hash"`

	Persistence PersistenceConfig `json:"persistence"`

	// HTTP settings
	Port      int     `json:"port"`
	RateLimit float64 `json:"rate_limit"` // mutation requests per second, 0 disables limiting

	Debug bool `json:"debug"`
}

// NewDefaultTreeServiceConfig returns a config for an in-memory SHA3-256 tree
func NewDefaultTreeServiceConfig() *TreeServiceConfig {
	return &TreeServiceConfig{
		TreeName:    DefaultTreeName,
		Depth:       DefaultDepth,
		InitialLeaf: DefaultInitialLeaf,
		Hash:        hashing.NameSHA3256,
		Persistence: PersistenceConfig{
			Type: PersistenceTypeMemory,
		},
		Port:      DefaultPort,
		RateLimit: DefaultRateLimit,
	}
}

// Validate validates the tree service configuration
func (c *TreeServiceConfig) Validate() error {
	var allErrors field.ErrorList

	if c.TreeName == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("treeName"), "treeName is required"))
	}

	if c.Depth > merkle.MaxDepth {
		allErrors = append(allErrors, field.Invalid(field.NewPath("depth"), c.Depth,
			fmt.Sprintf("depth must be at most %d", merkle.MaxDepth)))
	}

	if _, err := hexcodec.Decode(c.InitialLeaf); err != nil {
		allErrors = append(allErrors, field.Invalid(field.NewPath("initialLeaf"), c.InitialLeaf, err.Error()))
	}

	if _, err := hashing.ByName(c.Hash); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hash"), c.Hash, hashing.Names()))
	}

	allErrors = append(allErrors, c.Persistence.validate(field.NewPath("persistence"))...)

	if c.Port < 1 || c.Port > 65535 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("port"), c.Port, "port must be between 1-65535"))
	}

	if c.RateLimit < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateLimit"), c.RateLimit, "rateLimit cannot be negative"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (pc *PersistenceConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList

	supported := false
	for _, p := range GetSupportedPersistenceTypes() {
		if pc.Type == p {
			supported = true
			break
		}
	}
	if !supported {
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), pc.Type, GetSupportedPersistenceTypes()))
		return allErrors
	}

	if pc.Type.RequiresDataPath() && pc.DataPath == "" {
		allErrors = append(allErrors, field.Required(path.Child("dataPath"),
			fmt.Sprintf("dataPath is required for %s persistence", pc.Type)))
	}

	if pc.Type == PersistenceTypeRedis {
		if pc.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(path.Child("redisAddress"), "redisAddress is required for redis persistence"))
		}
		if pc.RedisDB < 0 || pc.RedisDB > 15 {
			allErrors = append(allErrors, field.Invalid(path.Child("redisDB"), pc.RedisDB, "redisDB must be between 0-15"))
		}
	}

	return allErrors
}
