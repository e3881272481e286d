package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/Layr-Labs/merkletree-go/internal/testutil"
	"github.com/Layr-Labs/merkletree-go/pkg/config"
	"github.com/Layr-Labs/merkletree-go/pkg/merkle"
	persistenceMemory "github.com/Layr-Labs/merkletree-go/pkg/persistence/memory"
	"github.com/Layr-Labs/merkletree-go/pkg/persistence/mocks"
	"github.com/Layr-Labs/merkletree-go/pkg/service"
)

const mutatedRoot = "0x57054e43fa56333fd51343b09460d48b9204999c376624f52480c5593b91eff4"

func newTestConfig() *config.TreeServiceConfig {
	cfg := config.NewDefaultTreeServiceConfig()
	cfg.TreeName = "accounts"
	cfg.Depth = 5
	cfg.InitialLeaf = testutil.ZeroLeaf
	return cfg
}

func newTestServer(t *testing.T, rateLimit float64) *httptest.Server {
	t.Helper()

	store := persistenceMemory.NewMemoryPersistence()
	svc, err := service.NewTreeService(newTestConfig(), store, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	s := NewServer(svc, 0, rateLimit, zaptest.NewLogger(t))
	ts := httptest.NewServer(s.GetHandler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// mutateAll writes digit i to leaf i, which yields mutatedRoot
func mutateAll(t *testing.T, url string) RootResponse {
	t.Helper()
	req := SetBatchRequest{}
	for i := 0; i < 16; i++ {
		req.Updates = append(req.Updates, SetLeafRequest{Index: uint64(16 + i), Value: testutil.RepeatedDigest(i)})
	}
	resp := postJSON(t, url+"/leaves/batch", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[RootResponse](t, resp)
}

func TestServer_Root(t *testing.T) {
	ts := newTestServer(t, 0)

	resp, err := http.Get(ts.URL + "/root")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(headerRequestID))

	root := decode[RootResponse](t, resp)
	assert.Equal(t, "accounts", root.Tree)
	assert.Equal(t, uint32(5), root.Depth)
	assert.Equal(t, "sha3-256", root.Hash)
	assert.Equal(t, uint64(16), root.LeafLow)
	assert.Equal(t, uint64(32), root.LeafHigh)

	resp, err = http.Post(ts.URL+"/root", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_RequestIDEchoed(t *testing.T) {
	ts := newTestServer(t, 0)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/root", nil)
	require.NoError(t, err)
	req.Header.Set(headerRequestID, "caller-supplied")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "caller-supplied", resp.Header.Get(headerRequestID))
}

func TestServer_SetLeaf(t *testing.T) {
	ts := newTestServer(t, 0)

	resp := postJSON(t, ts.URL+"/leaves/set", SetLeafRequest{Index: 19, Value: testutil.AbLeaf})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	root := decode[RootResponse](t, resp)

	resp, err := http.Get(ts.URL + "/leaves?index=19")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	leaf := decode[Leaf](t, resp)
	assert.Equal(t, testutil.AbLeaf, leaf.Value)

	resp, err = http.Get(ts.URL + "/leaves?index=1")
	require.NoError(t, err)
	assert.Equal(t, root.Root, decode[Leaf](t, resp).Value)
}

func TestServer_SetLeafErrors(t *testing.T) {
	ts := newTestServer(t, 0)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"non-leaf index", SetLeafRequest{Index: 3, Value: testutil.AbLeaf}, http.StatusBadRequest},
		{"index past the leaves", SetLeafRequest{Index: 32, Value: testutil.AbLeaf}, http.StatusBadRequest},
		{"invalid hex", SetLeafRequest{Index: 16, Value: "Unexpected"}, http.StatusBadRequest},
		{"missing value", SetLeafRequest{Index: 16}, http.StatusBadRequest},
		{"empty digest", SetLeafRequest{Index: 16, Value: "0x"}, http.StatusBadRequest},
		{"malformed body", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/leaves/set", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	resp, err := http.Get(ts.URL + "/leaves/set")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_Batch(t *testing.T) {
	ts := newTestServer(t, 0)

	root := mutateAll(t, ts.URL)
	assert.Equal(t, mutatedRoot, root.Root)

	t.Run("Duplicate index", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/leaves/batch", SetBatchRequest{Updates: []SetLeafRequest{
			{Index: 16, Value: testutil.AbLeaf},
			{Index: 16, Value: testutil.ZeroLeaf},
		}})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Empty batch", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/leaves/batch", SetBatchRequest{})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Invalid entry leaves tree untouched", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/leaves/batch", SetBatchRequest{Updates: []SetLeafRequest{
			{Index: 16, Value: testutil.AbLeaf},
			{Index: 2, Value: testutil.AbLeaf},
		}})
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, err := http.Get(ts.URL + "/root")
		require.NoError(t, err)
		assert.Equal(t, mutatedRoot, decode[RootResponse](t, resp).Root)
	})
}

func TestServer_LeavesPage(t *testing.T) {
	ts := newTestServer(t, 0)
	mutateAll(t, ts.URL)

	resp, err := http.Get(ts.URL + "/leaves?offset=14&limit=5")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decode[LeavesResponse](t, resp)
	assert.Equal(t, uint64(16), page.Total)
	require.Len(t, page.Leaves, 2)
	assert.Equal(t, Leaf{Index: 30, Value: "0x" + string(bytes.Repeat([]byte("e"), 64))}, page.Leaves[0])

	resp, err = http.Get(ts.URL + "/leaves?offset=-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/leaves?index=64")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ProofAndVerify(t *testing.T) {
	ts := newTestServer(t, 0)
	mutateAll(t, ts.URL)

	resp, err := http.Get(ts.URL + "/proof?leaf=3")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	proof := decode[ProofResponse](t, resp)
	assert.Equal(t, uint64(3), proof.Leaf)
	assert.Equal(t, uint64(19), proof.Index)
	assert.Equal(t, mutatedRoot, proof.Root)
	require.Len(t, proof.Proof, 4)
	assert.Equal(t, merkle.Right, proof.Proof[0].Side)
	assert.Equal(t, testutil.RepeatedDigest(2), proof.Proof[0].Sibling)

	t.Run("Against current root", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/verify", VerifyRequest{Proof: proof.Proof, Leaf: testutil.RepeatedDigest(3)})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := decode[VerifyResponse](t, resp)
		assert.True(t, result.Valid)
		assert.Equal(t, mutatedRoot, result.ComputedRoot)
	})

	t.Run("Wrong leaf", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/verify", VerifyRequest{Proof: proof.Proof, Leaf: testutil.RepeatedDigest(4)})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decode[VerifyResponse](t, resp).Valid)
	})

	t.Run("Explicit stale root", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/verify", VerifyRequest{Proof: proof.Proof, Leaf: testutil.RepeatedDigest(3), Root: testutil.AbLeaf})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decode[VerifyResponse](t, resp).Valid)
	})

	t.Run("Invalid inputs", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/verify", VerifyRequest{Proof: proof.Proof, Leaf: "nope"})
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = postJSON(t, ts.URL+"/verify", VerifyRequest{Proof: proof.Proof})
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, err := http.Post(ts.URL+"/verify", "application/json",
			bytes.NewBufferString(`{"proof":[{"side":"up","sibling":"0x00"}],"leaf":"0x00"}`))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_ProofErrors(t *testing.T) {
	ts := newTestServer(t, 0)

	for _, query := range []string{"", "?leaf=16", "?leaf=abc"} {
		t.Run(fmt.Sprintf("query %q", query), func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/proof" + query)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServer_ProofCBOR(t *testing.T) {
	ts := newTestServer(t, 0)
	mutateAll(t, ts.URL)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/proof?leaf=9", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", contentTypeCBOR)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, contentTypeCBOR, resp.Header.Get("Content-Type"))
	assert.Equal(t, mutatedRoot, resp.Header.Get("X-Merkle-Root"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	path, err := merkle.UnmarshalProofCBOR(data)
	require.NoError(t, err)
	assert.Equal(t, merkle.LeafOffset(9), path.Offset())
}

func TestServer_RateLimit(t *testing.T) {
	ts := newTestServer(t, 1)

	resp := postJSON(t, ts.URL+"/leaves/set", SetLeafRequest{Index: 16, Value: testutil.AbLeaf})
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/leaves/set", SetLeafRequest{Index: 17, Value: testutil.AbLeaf})
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Reads are never limited
	resp, err := http.Get(ts.URL + "/root")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockITreeStore(ctrl)
	store.EXPECT().LoadTree("accounts").Return(nil, nil)
	store.EXPECT().SaveTree(gomock.Any()).Return(nil)

	svc, err := service.NewTreeService(newTestConfig(), store, zaptest.NewLogger(t))
	require.NoError(t, err)
	ts := httptest.NewServer(NewServer(svc, 0, 0, zaptest.NewLogger(t)).GetHandler())
	defer ts.Close()

	storeErr := errors.New("disk full")
	store.EXPECT().SaveTree(gomock.Any()).Return(storeErr)
	store.EXPECT().HealthCheck().Return(storeErr)

	resp := postJSON(t, ts.URL+"/leaves/set", SetLeafRequest{Index: 16, Value: testutil.AbLeaf})
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	health := decode[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Contains(t, health.Error, "disk full")
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, 0)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[HealthResponse](t, resp).Status)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForError(errors.Wrap(merkle.ErrNotLeaf, "x")))
	assert.Equal(t, http.StatusBadRequest, statusForError(errors.Wrap(merkle.ErrIndexOutOfRange, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusForError(errors.New("x")))
}
