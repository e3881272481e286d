package merkle

import (
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProofJSON tests that a proof path survives a JSON round trip with named sides
func TestProofJSON(t *testing.T) {
	mt := createMutatedTree(t)
	path, err := mt.Proof(3)
	require.NoError(t, err)

	data, err := MarshalProofJSON(path)
	require.NoError(t, err)

	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 4)
	assert.Equal(t, "right", raw[0]["side"])
	assert.Equal(t, "0x2222222222222222222222222222222222222222222222222222222222222222", raw[0]["sibling"])
	assert.Equal(t, "left", raw[3]["side"])

	decoded, err := UnmarshalProofJSON(data)
	require.NoError(t, err)
	assert.Equal(t, path, decoded)

	_, err = UnmarshalProofJSON([]byte(`[{"side":"up","sibling":"0x00"}]`))
	require.Error(t, err)
}

// TestProofJSONEmpty tests that an empty proof encodes as an empty array
func TestProofJSONEmpty(t *testing.T) {
	data, err := MarshalProofJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

// TestProofCBOR tests the compact CBOR proof encoding
func TestProofCBOR(t *testing.T) {
	mt := createMutatedTree(t)
	path, err := mt.Proof(9)
	require.NoError(t, err)

	data, err := MarshalProofCBOR(path)
	require.NoError(t, err)

	jsonData, err := MarshalProofJSON(path)
	require.NoError(t, err)
	assert.Less(t, len(data), len(jsonData), "binary siblings should be more compact than hex")

	decoded, err := UnmarshalProofCBOR(data)
	require.NoError(t, err)
	assert.Equal(t, path, decoded)

	computed, err := mt.Verify(decoded, "0x9999999999999999999999999999999999999999999999999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, mt.Root(), computed)
}

// TestProofCBORInvalid tests that malformed CBOR proofs are rejected
func TestProofCBORInvalid(t *testing.T) {
	_, err := MarshalProofCBOR(ProofPath{{Side: Left, Sibling: "xyz"}})
	require.Error(t, err)

	_, err = UnmarshalProofCBOR([]byte{0xff, 0x00})
	require.Error(t, err)

	data, err := cbor.Marshal([]cborStep{{Side: 9, Sibling: []byte{1}}})
	require.NoError(t, err)
	_, err = UnmarshalProofCBOR(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid handedness")
}
