package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check, info and metrics.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Capsules collection.
	mux.HandleFunc("POST /v1/capsules", s.handleCreateCapsule)
	mux.HandleFunc("GET /v1/capsules", s.handleListCapsules)

	// Single capsule.
	mux.HandleFunc("GET /v1/capsules/{id}", s.handleGetCapsule)
	mux.HandleFunc("POST /v1/capsules/{id}/view", s.handleViewCapsule)
	mux.HandleFunc("GET /v1/capsules/{id}/unlockable", s.handleUnlockable)

	// Capsule token.
	mux.HandleFunc("POST /v1/capsules/{id}/mint", s.handleMintCapsule)
	mux.HandleFunc("GET /v1/capsules/{id}/mint", s.handleMintState)

	return mux
}
