package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-studio/internal/scene"
	"github.com/nerrad567/gray-logic-studio/internal/selection"
)

// SceneResponse is a scene as listed by the API.
type SceneResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Active    bool     `json:"active"`
	ChildIDs  []string `json:"child_ids"`
	NodeCount int      `json:"node_count"`
}

// NodeResponse flattens the two node variants into one JSON shape.
type NodeResponse struct {
	ID       string         `json:"id"`
	Kind     scene.NodeKind `json:"kind"`
	SceneID  string         `json:"scene_id"`
	ParentID string         `json:"parent_id,omitempty"`

	// Folder fields.
	Name     string   `json:"name,omitempty"`
	ChildIDs []string `json:"child_ids,omitempty"`

	// Item fields.
	SourceID  string           `json:"source_id,omitempty"`
	Transform *scene.Transform `json:"transform,omitempty"`
	Visible   *bool            `json:"visible,omitempty"`
	Locked    *bool            `json:"locked,omitempty"`
}

func toNodeResponse(n scene.Node) NodeResponse {
	info := n.Info()
	resp := NodeResponse{
		ID:       info.ID,
		Kind:     n.Kind(),
		SceneID:  info.SceneID,
		ParentID: info.ParentID,
	}
	switch v := n.(type) {
	case *scene.Item:
		transform := v.Transform
		visible, locked := v.Visible, v.Locked
		resp.SourceID = v.SourceID
		resp.Transform = &transform
		resp.Visible = &visible
		resp.Locked = &locked
	case *scene.Folder:
		resp.Name = v.Name
		resp.ChildIDs = v.ChildIDs
	}
	return resp
}

func toSceneResponse(store *scene.Store, sc *scene.Scene) SceneResponse {
	ids, _ := store.NodeIDs(sc.ID) //nolint:errcheck // scene came from the store
	childIDs := sc.ChildIDs
	if childIDs == nil {
		childIDs = []string{}
	}
	return SceneResponse{
		ID:        sc.ID,
		Name:      sc.Name,
		Active:    sc.ID == store.ActiveSceneID(),
		ChildIDs:  childIDs,
		NodeCount: len(ids),
	}
}

// handleListScenes returns every scene in display order.
func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	var out []SceneResponse
	err := s.studio.View(func(store *scene.Store) error {
		scenes := store.GetScenes()
		out = make([]SceneResponse, 0, len(scenes))
		for i := range scenes {
			out = append(out, toSceneResponse(store, &scenes[i]))
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scenes": out,
		"count":  len(out),
	})
}

// handleGetActiveScene returns the scene currently on program.
func (s *Server) handleGetActiveScene(w http.ResponseWriter, _ *http.Request) {
	var resp SceneResponse
	err := s.studio.View(func(store *scene.Store) error {
		sc, err := store.ActiveScene()
		if err != nil {
			return err
		}
		resp = toSceneResponse(store, sc)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetScene returns one scene by id.
func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var resp SceneResponse
	err := s.studio.View(func(store *scene.Store) error {
		sc, err := store.GetScene(id)
		if err != nil {
			return err
		}
		resp = toSceneResponse(store, sc)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListNodes returns the nodes of a scene in flat read order.
//
// Query parameters:
//   - query: a selection expression; only matching nodes are returned
//   - kind: "item" or "folder"
func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	kind := scene.NodeKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		writeBadRequest(w, "kind must be item or folder")
		return
	}

	var out []NodeResponse
	err := s.studio.View(func(store *scene.Store) error {
		var nodes []scene.Node
		if query == "" {
			all, err := store.GetNodes(id)
			if err != nil {
				return err
			}
			nodes = all
		} else {
			if !store.HasScene(id) {
				return scene.ErrSceneNotFound
			}
			sel := selection.New(store, id)
			if _, err := sel.SelectMatching(query); err != nil {
				return err
			}
			nodes = sel.GetNodes()
		}

		out = make([]NodeResponse, 0, len(nodes))
		for _, n := range nodes {
			if kind != "" && n.Kind() != kind {
				continue
			}
			out = append(out, toNodeResponse(n))
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": out,
		"count": len(out),
	})
}

// handleGetNode returns a single node with its ancestor chain.
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var (
		resp      NodeResponse
		ancestors []string
	)
	err := s.studio.View(func(store *scene.Store) error {
		n, err := store.GetNode(id)
		if err != nil {
			return err
		}
		resp = toNodeResponse(n)
		ancestors, err = store.Ancestors(id)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if ancestors == nil {
		ancestors = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node":      resp,
		"ancestors": ancestors,
	})
}

// handleGetNodeBounds returns the canvas bounding box of an item, or of
// every item inside a folder. bounds is null for an empty folder.
func (s *Server) handleGetNodeBounds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var (
		rect scene.Rect
		ok   bool
	)
	err := s.studio.View(func(store *scene.Store) error {
		sceneID, found := store.NodeSceneID(id)
		if !found {
			return scene.ErrNodeNotFound
		}
		sel := selection.New(store, sceneID)
		if err := sel.Select(id); err != nil {
			return err
		}
		rect, ok = sel.GetBoundingRect()
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "bounds": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "bounds": rect})
}
