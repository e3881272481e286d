package merkle

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/Layr-Labs/merkletree-go/pkg/hexcodec"
)

// cborStep is the compact wire form of a ProofStep: sibling digests travel as raw bytes.
type cborStep struct {
	Side    uint8  `cbor:"1,keyasint"`
	Sibling []byte `cbor:"2,keyasint"`
}

// MarshalProofJSON encodes a proof as a JSON array of {"side","sibling"} objects.
func MarshalProofJSON(path ProofPath) ([]byte, error) {
	if path == nil {
		path = ProofPath{}
	}
	data, err := json.Marshal(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal proof to JSON")
	}
	return data, nil
}

// UnmarshalProofJSON decodes a proof produced by MarshalProofJSON.
func UnmarshalProofJSON(data []byte) (ProofPath, error) {
	var path ProofPath
	if err := json.Unmarshal(data, &path); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal proof from JSON")
	}
	return path, nil
}

// MarshalProofCBOR encodes a proof in CBOR with binary sibling digests.
func MarshalProofCBOR(path ProofPath) ([]byte, error) {
	steps := make([]cborStep, len(path))
	for i, step := range path {
		sibling, err := hexcodec.Decode(step.Sibling)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid sibling digest at level %d", i)
		}
		steps[i] = cborStep{Side: uint8(step.Side), Sibling: sibling}
	}
	data, err := cbor.Marshal(steps)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal proof to CBOR")
	}
	return data, nil
}

// UnmarshalProofCBOR decodes a proof produced by MarshalProofCBOR.
func UnmarshalProofCBOR(data []byte) (ProofPath, error) {
	var steps []cborStep
	if err := cbor.Unmarshal(data, &steps); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal proof from CBOR")
	}
	path := make(ProofPath, len(steps))
	for i, step := range steps {
		side := Handedness(step.Side)
		if side != Left && side != Right {
			return nil, errors.Errorf("invalid handedness %d at level %d", step.Side, i)
		}
		path[i] = ProofStep{Side: side, Sibling: hexcodec.Encode(step.Sibling)}
	}
	return path, nil
}
