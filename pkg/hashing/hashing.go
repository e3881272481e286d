package hashing

import (
	"crypto/sha256"
	"hash"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Names of the supported hash functions
const (
	NameSHA3256   = "sha3-256"
	NameKeccak256 = "keccak256"
	NameSHA256    = "sha256"
)

// ErrUnknownHash is returned when a hash function name is not registered
var ErrUnknownHash = errors.New("unknown hash function")

// Hasher is the one-way compression function H used to aggregate tree nodes.
// Hash(a, b) must equal Hash(a ++ b).
type Hasher interface {
	Hash(data ...[]byte) []byte
	Size() int
	Name() string
}

type hasher struct {
	name    string
	newHash func() hash.Hash
	size    int
}

func (h *hasher) Hash(data ...[]byte) []byte {
	s := h.newHash()
	for _, d := range data {
		s.Write(d)
	}
	return s.Sum(nil)
}

func (h *hasher) Size() int {
	return h.size
}

func (h *hasher) Name() string {
	return h.name
}

var registry = map[string]Hasher{
	NameSHA3256:   &hasher{name: NameSHA3256, newHash: sha3.New256, size: 32},
	NameKeccak256: &hasher{name: NameKeccak256, newHash: func() hash.Hash { return crypto.NewKeccakState() }, size: 32},
	NameSHA256:    &hasher{name: NameSHA256, newHash: sha256.New, size: sha256.Size},
}

// SHA3256 returns the default hasher
func SHA3256() Hasher { return registry[NameSHA3256] }

// Keccak256 returns the legacy keccak hasher used by Solidity
func Keccak256() Hasher { return registry[NameKeccak256] }

// SHA256 returns a SHA-256 hasher
func SHA256() Hasher { return registry[NameSHA256] }

// Default is the hasher used when none is configured.
func Default() Hasher {
	return SHA3256()
}

// ByName looks up a registered hasher.
func ByName(name string) (Hasher, error) {
	h, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHash, "%q, supported: %v", name, Names())
	}
	return h, nil
}

// Names returns the registered hash function names, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
