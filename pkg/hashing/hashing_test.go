package hashing

import (
	"crypto/sha256"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestHashEqualsHashOfConcatenation(t *testing.T) {
	left := []byte{0xab, 0xab, 0xab}
	right := []byte{0x01, 0x02}
	concat := append(append([]byte{}, left...), right...)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			h, err := ByName(name)
			require.NoError(t, err)
			require.Equal(t, h.Hash(concat), h.Hash(left, right))
			require.Len(t, h.Hash(concat), h.Size())
			require.Equal(t, name, h.Name())
		})
	}
}

func TestKnownImplementations(t *testing.T) {
	data := []byte("merkle")

	sha3Sum := sha3.Sum256(data)
	assert.Equal(t, sha3Sum[:], SHA3256().Hash(data))

	assert.Equal(t, crypto.Keccak256(data), Keccak256().Hash(data))

	shaSum := sha256.Sum256(data)
	assert.Equal(t, shaSum[:], SHA256().Hash(data))

	assert.Equal(t, NameSHA3256, Default().Name())
}

func TestByNameUnknown(t *testing.T) {
	h, err := ByName("md5")
	require.Error(t, err)
	assert.Nil(t, h)
	assert.True(t, errors.Is(err, ErrUnknownHash))
	assert.Contains(t, err.Error(), "sha3-256")
}

func TestNamesSorted(t *testing.T) {
	assert.Equal(t, []string{NameKeccak256, NameSHA256, NameSHA3256}, Names())
}
