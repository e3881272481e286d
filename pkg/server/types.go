package server

import "github.com/Layr-Labs/merkletree-go/pkg/merkle"

// RootResponse describes the tree after a read or a mutation
type RootResponse struct {
	Tree     string `json:"tree"`
	Root     string `json:"root"`
	Depth    uint32 `json:"depth"`
	Hash     string `json:"hash"`
	LeafLow  uint64 `json:"leafLow"`
	LeafHigh uint64 `json:"leafHigh"`
}

// Leaf is one slot of the node array
type Leaf struct {
	Index uint64 `json:"index"`
	Value string `json:"value"`
}

// LeavesResponse is a page of leaves
type LeavesResponse struct {
	Offset uint64 `json:"offset"`
	Total  uint64 `json:"total"`
	Leaves []Leaf `json:"leaves"`
}

// SetLeafRequest writes value to the leaf at array index Index
type SetLeafRequest struct {
	Index uint64 `json:"index"`
	Value string `json:"value"`
}

// SetBatchRequest writes every update in one mutation
type SetBatchRequest struct {
	Updates []SetLeafRequest `json:"updates"`
}

// ProofResponse is the inclusion path for one leaf
type ProofResponse struct {
	Leaf  uint64           `json:"leaf"`
	Index uint64           `json:"index"`
	Root  string           `json:"root"`
	Proof merkle.ProofPath `json:"proof"`
}

// VerifyRequest asks whether Proof takes Leaf to Root. An empty Root means the current root.
type VerifyRequest struct {
	Proof merkle.ProofPath `json:"proof"`
	Leaf  string           `json:"leaf"`
	Root  string           `json:"root,omitempty"`
}

// VerifyResponse reports the folded root and whether it matched
type VerifyResponse struct {
	ComputedRoot string `json:"computedRoot"`
	Root         string `json:"root"`
	Valid        bool   `json:"valid"`
}

// HealthResponse reports store health
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
