package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Layr-Labs/merkletree-go/pkg/hexcodec"
	"github.com/Layr-Labs/merkletree-go/pkg/merkle"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"

	defaultLeafPage = 256
	maxLeafPage     = 4096
)

// statusForError maps caller mistakes to 400 and everything else to 500
func statusForError(err error) int {
	switch {
	case errors.Is(err, hexcodec.ErrFormat),
		errors.Is(err, merkle.ErrNotLeaf),
		errors.Is(err, merkle.ErrIndexOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Sugar().Errorw("Request failed", "path", r.URL.Path, "request_id", requestID(r.Context()), "error", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) rootResponse() RootResponse {
	low, high := s.service.LeafRange()
	return RootResponse{
		Tree:     s.service.Name(),
		Root:     s.service.Root(),
		Depth:    s.service.Depth(),
		Hash:     s.service.HashName(),
		LeafLow:  uint64(low),
		LeafHigh: uint64(high),
	}
}

// parseUintParam reads a non-negative integer query parameter, returning def when absent
func parseUintParam(r *http.Request, name string, def uint64) (uint64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, false, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, true, nil
}

// handleRoot handles GET /root
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, s.rootResponse())
}

// handleLeaves handles GET /leaves for a single slot or a page of leaves
func (s *Server) handleLeaves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	index, hasIndex, err := parseUintParam(r, "index", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if hasIndex {
		value, err := s.service.Node(merkle.ArrayIndex(index))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, Leaf{Index: index, Value: value})
		return
	}

	offset, _, err := parseUintParam(r, "offset", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, _, err := parseUintParam(r, "limit", defaultLeafPage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if limit > maxLeafPage {
		limit = maxLeafPage
	}

	values, total, err := s.service.Leaves(offset, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	low, _ := s.service.LeafRange()
	resp := LeavesResponse{
		Offset: offset,
		Total:  total,
		Leaves: make([]Leaf, 0, len(values)),
	}
	for i, value := range values {
		resp.Leaves = append(resp.Leaves, Leaf{Index: uint64(low) + offset + uint64(i), Value: value})
	}

	writeJSON(w, resp)
}

// handleSetLeaf handles POST /leaves/set
func (s *Server) handleSetLeaf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SetLeafRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Value == "" {
		http.Error(w, "value is required", http.StatusBadRequest)
		return
	}

	if err := s.service.Set(merkle.ArrayIndex(req.Index), req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, s.rootResponse())
}

// handleSetBatch handles POST /leaves/batch
func (s *Server) handleSetBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SetBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Updates) == 0 {
		http.Error(w, "updates are required", http.StatusBadRequest)
		return
	}

	updates := make(map[merkle.ArrayIndex]string, len(req.Updates))
	for _, u := range req.Updates {
		index := merkle.ArrayIndex(u.Index)
		if _, dup := updates[index]; dup {
			http.Error(w, fmt.Sprintf("duplicate update for index %d", u.Index), http.StatusBadRequest)
			return
		}
		updates[index] = u.Value
	}

	if err := s.service.SetBatch(updates); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, s.rootResponse())
}

// handleProof handles GET /proof?leaf=N
func (s *Server) handleProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	leaf, ok, err := parseUintParam(r, "leaf", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "leaf is required", http.StatusBadRequest)
		return
	}

	path, root, err := s.service.ProofWithRoot(merkle.LeafOffset(leaf))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), contentTypeCBOR) {
		data, err := merkle.MarshalProofCBOR(path)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypeCBOR)
		w.Header().Set("X-Merkle-Root", root)
		_, _ = w.Write(data)
		return
	}

	if path == nil {
		path = merkle.ProofPath{}
	}
	low, _ := s.service.LeafRange()
	writeJSON(w, ProofResponse{
		Leaf:  leaf,
		Index: uint64(low) + leaf,
		Root:  root,
		Proof: path,
	})
}

// handleVerify handles POST /verify
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Leaf == "" {
		http.Error(w, "leaf is required", http.StatusBadRequest)
		return
	}

	root := req.Root
	if root == "" {
		root = s.service.Root()
	}
	expected, err := hexcodec.Normalize(root)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid root: %v", err), http.StatusBadRequest)
		return
	}

	// Every failure here comes from the submitted proof
	computed, err := s.service.Verify(req.Proof, req.Leaf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, VerifyResponse{
		ComputedRoot: computed,
		Root:         expected,
		Valid:        computed == expected,
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.service.HealthCheck(); err != nil {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "unhealthy", Error: err.Error()})
		return
	}

	writeJSON(w, HealthResponse{Status: "ok"})
}
