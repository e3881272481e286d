package server

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Layr-Labs/merkletree-go/pkg/service"
)

/*
Server exposes one TreeService over HTTP with JSON bodies.

Read endpoints:
  GET /root               root digest, depth, hash name and leaf range
  GET /leaves?index=N     digest stored at array slot N
  GET /leaves?offset&limit  a page of leaves, offsets relative to the leaf range
  GET /proof?leaf=N       inclusion path for leaf offset N; CBOR when Accept is application/cbor
  GET /health             store health

Mutation endpoints (rate limited when a limit is configured):
  POST /leaves/set        { index, value }
  POST /leaves/batch      { updates: [{ index, value }] }

Verification:
  POST /verify            { proof, leaf, root? } folds the proof and compares with root,
                          or with the current root when none is given

Every response carries an X-Request-ID header, reusing the caller's when present.
*/
type Server struct {
	service    *service.TreeService
	logger     *zap.Logger
	limiter    *rate.Limiter
	httpServer *http.Server
}

// NewServer creates a new server instance. rateLimit is in mutation requests per
// second; zero disables limiting.
func NewServer(svc *service.TreeService, port int, rateLimit float64, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		service: svc,
		logger:  logger,
	}
	if rateLimit > 0 {
		burst := int(rateLimit)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/root", s.handleRoot)
	mux.HandleFunc("/leaves", s.handleLeaves)
	mux.HandleFunc("/proof", s.handleProof)
	mux.HandleFunc("/verify", s.handleVerify)
	mux.HandleFunc("/health", s.handleHealth)

	mux.HandleFunc("/leaves/set", s.rateLimited(s.handleSetLeaf))
	mux.HandleFunc("/leaves/batch", s.rateLimited(s.handleSetBatch))

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.withRequestID(mux),
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go func() {
		s.logger.Sugar().Infow("Starting HTTP server", "tree", s.service.Name(), "port", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("HTTP server error", "tree", s.service.Name(), "error", err)
		}
	}()
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	return s.httpServer.Close()
}

// GetHandler returns the HTTP handler (for testing)
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}
