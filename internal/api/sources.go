package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-studio/internal/scene"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// SourceResponse is a source with the nodes that reference it.
type SourceResponse struct {
	source.Source
	ReferencedBy []string `json:"referenced_by"`
}

func toSourceResponse(store *scene.Store, src source.Source) SourceResponse {
	refs := store.ReferencingNodes(src.ID)
	ids := make([]string, 0, len(refs))
	for _, item := range refs {
		ids = append(ids, item.ID)
	}
	return SourceResponse{Source: src, ReferencedBy: ids}
}

// handleListSources returns every registered source, including scene
// sources.
//
// Query parameters:
//   - type: only sources of this type (e.g. "image_source", "scene")
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	typ := source.Type(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("unknown source type %q", typ))
		return
	}

	var out []SourceResponse
	err := s.studio.View(func(store *scene.Store) error {
		var list []source.Source
		if typ == "" {
			list = store.Sources().List()
		} else {
			list = store.Sources().ListByType(typ)
		}
		out = make([]SourceResponse, 0, len(list))
		for _, src := range list {
			out = append(out, toSourceResponse(store, src))
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": out,
		"count":   len(out),
	})
}

// handleGetSource returns one source by id.
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var resp SourceResponse
	err := s.studio.View(func(store *scene.Store) error {
		src, err := store.Sources().Get(id)
		if err != nil {
			return err
		}
		resp = toSourceResponse(store, *src)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
