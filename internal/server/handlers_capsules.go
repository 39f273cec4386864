package server

import (
	"net/http"
	"strings"

	"memoreal/internal/api"
	"memoreal/internal/store"
)

func (s *Server) handleCreateCapsule(w http.ResponseWriter, r *http.Request) {
	var req api.CapsuleCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListCapsules(w http.ResponseWriter, r *http.Request) {
	limit, err := queryIntDefault(r, "limit", defaultListLimit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if limit == 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	offset, err := queryIntDefault(r, "offset", 0)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	query := r.URL.Query()
	resp, err := s.service.List(r.Context(), store.CapsuleFilter{
		Author: strings.TrimSpace(query.Get("author")),
		Type:   strings.TrimSpace(query.Get("type")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCapsule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleViewCapsule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	var req api.CapsuleViewRequest
	if !s.decodeOptionalJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.View(r.Context(), id, req.Location)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnlockable(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.service.IsUnlockable(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMintCapsule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	var req api.MintRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.Mint(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMintState(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.service.MintState(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
