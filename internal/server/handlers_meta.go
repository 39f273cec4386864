package server

import (
	"net/http"

	"memoreal/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.StoreInfo(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	resp := api.InfoResponse{
		SchemaVersion:  info.SchemaVersion,
		CapsuleCounts:  info.CapsuleCounts,
		TotalCapsules:  info.TotalCapsules,
		TotalMints:     info.TotalMints,
		LocationPolicy: string(s.policy),
		LedgerMode:     s.ledgerMode,
	}

	s.writeJSON(w, http.StatusOK, resp)
}
