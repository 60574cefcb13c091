package api

import (
	"net/http"
	"strconv"
)

const (
	defaultRevisionLimit = 20
	maxRevisionLimit     = 500
)

// handleGetState returns a snapshot of the whole graph in the same format
// the studio saves.
func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.studio.Export())
}

// handleListRevisions lists saved snapshots, newest first.
//
// Query parameters:
//   - limit: maximum number of revisions (default 20, max 500)
func (s *Server) handleListRevisions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRevisionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRevisionLimit {
			writeBadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	revs, err := s.studio.Revisions(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"revisions":           revs,
		"count":               len(revs),
		"last_saved_revision": s.studio.LastSavedRevision(),
		"unsaved_changes":     s.studio.Dirty(),
	})
}
