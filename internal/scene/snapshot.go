package scene

import (
	"fmt"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// SnapshotVersion is the layout version written by ExportState.
const SnapshotVersion = 1

// Snapshot is a complete, serialisable copy of the scene graph and the
// sources it uses.
type Snapshot struct {
	Version       int           `json:"version"`
	ActiveSceneID string        `json:"active_scene_id"`
	Sources       []SourceState `json:"sources"`
	Scenes        []SceneState  `json:"scenes"`
}

// SourceState is a non-scene source in a snapshot.
type SourceState struct {
	ID          string            `json:"id"`
	Type        source.Type       `json:"type"`
	Name        string            `json:"name"`
	Settings    map[string]any    `json:"settings,omitempty"`
	AudioMixers source.MixerTrack `json:"audio_mixers"`
	Muted       bool              `json:"muted"`
	Width       float64           `json:"width"`
	Height      float64           `json:"height"`
}

// SceneState is a scene and its nodes in a snapshot.
type SceneState struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Nodes in flat read order. A folder always precedes its children, and
	// siblings appear in read order.
	Nodes []NodeState `json:"nodes"`
}

// NodeState is one node in a snapshot.
type NodeState struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	ParentID string   `json:"parent_id,omitempty"`

	// Folder fields.
	Name string `json:"name,omitempty"`

	// Item fields.
	SourceID  string     `json:"source_id,omitempty"`
	Transform *Transform `json:"transform,omitempty"`
	Visible   bool       `json:"visible"`
	Locked    bool       `json:"locked,omitempty"`
}

// ExportState returns a snapshot of the whole graph.
func (s *Store) ExportState() *Snapshot {
	snap := &Snapshot{
		Version:       SnapshotVersion,
		ActiveSceneID: s.activeID,
		Sources:       []SourceState{},
		Scenes:        make([]SceneState, 0, len(s.sceneOrder)),
	}
	for _, src := range s.sources.List() {
		if src.Type.IsScene() {
			continue
		}
		snap.Sources = append(snap.Sources, SourceState{
			ID:          src.ID,
			Type:        src.Type,
			Name:        src.Name,
			Settings:    src.Settings,
			AudioMixers: src.AudioMixers,
			Muted:       src.Muted,
			Width:       src.Width,
			Height:      src.Height,
		})
	}
	for _, id := range s.sceneOrder {
		sc := s.scenes[id]
		state := SceneState{ID: sc.ID, Name: sc.Name, Nodes: []NodeState{}}
		for _, nodeID := range s.flatten(sc.ChildIDs, nil) {
			state.Nodes = append(state.Nodes, nodeState(s.nodes[nodeID]))
		}
		snap.Scenes = append(snap.Scenes, state)
	}
	return snap
}

func nodeState(n Node) NodeState {
	info := n.Info()
	ns := NodeState{ID: info.ID, Kind: n.Kind(), ParentID: info.ParentID}
	switch v := n.(type) {
	case *Item:
		tr := v.Transform
		ns.SourceID = v.SourceID
		ns.Transform = &tr
		ns.Visible = v.Visible
		ns.Locked = v.Locked
	case *Folder:
		ns.Name = v.Name
	}
	return ns
}

// ImportState replaces the whole graph with a snapshot.
//
// The snapshot is validated completely first; on any error the current graph
// is left untouched. On success one state.imported event is published.
func (s *Store) ImportState(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	scenes, order, nodes, err := buildGraph(snap)
	if err != nil {
		return err
	}

	specs := make([]source.Spec, 0, len(snap.Scenes)+len(snap.Sources))
	for _, sc := range snap.Scenes {
		specs = append(specs, source.Spec{ID: sc.ID, Type: source.TypeScene, Name: sc.Name})
	}
	for _, src := range snap.Sources {
		mixers := src.AudioMixers
		specs = append(specs, source.Spec{
			ID:          src.ID,
			Type:        src.Type,
			Name:        src.Name,
			Settings:    src.Settings,
			AudioMixers: &mixers,
			Muted:       src.Muted,
			Width:       src.Width,
			Height:      src.Height,
		})
	}

	outgoing := s.sources.Handle(s.activeID)
	s.compositor.SetActiveComposeRoot(outgoing, nil)
	if err := s.sources.Load(specs); err != nil {
		s.compositor.SetActiveComposeRoot(nil, outgoing)
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	s.scenes = scenes
	s.sceneOrder = order
	s.nodes = nodes
	s.previousID = ""
	s.activeID = snap.ActiveSceneID
	if s.activeID == "" && len(order) > 0 {
		s.activeID = order[0]
	}
	s.compositor.SetActiveComposeRoot(nil, s.sources.Handle(s.activeID))

	s.publish([]events.Event{{Type: events.StateImported, SceneID: s.activeID}})
	s.logger.Info("scene graph imported", "scenes", len(order), "nodes", len(nodes), "sources", len(snap.Sources))
	return nil
}

// buildGraph validates a snapshot and builds the store maps from it.
func buildGraph(snap *Snapshot) (map[string]*Scene, []string, map[string]Node, error) {
	if snap.Version != SnapshotVersion {
		return nil, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}

	sourceIDs := make(map[string]bool, len(snap.Sources)+len(snap.Scenes))
	for i, src := range snap.Sources {
		if src.ID == "" || sourceIDs[src.ID] {
			return nil, nil, nil, fmt.Errorf("%w: source[%d] has empty or duplicate id %q", ErrInvalidSnapshot, i, src.ID)
		}
		if src.Type.IsScene() || !src.Type.Valid() {
			return nil, nil, nil, fmt.Errorf("%w: source %s has type %q", ErrInvalidSnapshot, src.ID, src.Type)
		}
		sourceIDs[src.ID] = true
	}

	scenes := make(map[string]*Scene, len(snap.Scenes))
	order := make([]string, 0, len(snap.Scenes))
	for i, sc := range snap.Scenes {
		if sc.ID == "" || sourceIDs[sc.ID] {
			return nil, nil, nil, fmt.Errorf("%w: scene[%d] has empty or duplicate id %q", ErrInvalidSnapshot, i, sc.ID)
		}
		if err := ValidateName(sc.Name); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: scene %s: %w", ErrInvalidSnapshot, sc.ID, err)
		}
		sourceIDs[sc.ID] = true
		scenes[sc.ID] = &Scene{ID: sc.ID, Name: sc.Name, ChildIDs: []string{}}
		order = append(order, sc.ID)
	}
	if snap.ActiveSceneID != "" && scenes[snap.ActiveSceneID] == nil {
		return nil, nil, nil, fmt.Errorf("%w: active scene %s does not exist", ErrInvalidSnapshot, snap.ActiveSceneID)
	}

	nodes := make(map[string]Node)
	nested := make(map[string][]string)
	for _, sc := range snap.Scenes {
		for _, ns := range sc.Nodes {
			n, err := buildNode(sc.ID, ns, nodes, sourceIDs)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%w: scene %s: %w", ErrInvalidSnapshot, sc.ID, err)
			}
			nodes[ns.ID] = n
			if ns.ParentID == "" {
				scenes[sc.ID].ChildIDs = append(scenes[sc.ID].ChildIDs, ns.ID)
			} else {
				parent := nodes[ns.ParentID].(*Folder)
				parent.ChildIDs = append(parent.ChildIDs, ns.ID)
			}
			if item, ok := n.(*Item); ok && scenes[item.SourceID] != nil {
				nested[sc.ID] = append(nested[sc.ID], item.SourceID)
			}
		}
	}

	if id, cyclic := findCycle(order, nested); cyclic {
		return nil, nil, nil, fmt.Errorf("%w: scene %s contains itself", ErrInvalidSnapshot, id)
	}
	return scenes, order, nodes, nil
}

func buildNode(sceneID string, ns NodeState, nodes map[string]Node, sourceIDs map[string]bool) (Node, error) {
	if ns.ID == "" {
		return nil, fmt.Errorf("node with empty id")
	}
	if _, dup := nodes[ns.ID]; dup {
		return nil, fmt.Errorf("duplicate node id %s", ns.ID)
	}
	if ns.ParentID != "" {
		parent, ok := nodes[ns.ParentID]
		if !ok || parent.Info().SceneID != sceneID {
			return nil, fmt.Errorf("node %s: parent %s must precede it in the same scene", ns.ID, ns.ParentID)
		}
		if _, isFolder := parent.(*Folder); !isFolder {
			return nil, fmt.Errorf("node %s: parent %s is not a folder", ns.ID, ns.ParentID)
		}
	}
	info := NodeInfo{ID: ns.ID, SceneID: sceneID, ParentID: ns.ParentID}

	switch ns.Kind {
	case KindItem:
		if !sourceIDs[ns.SourceID] {
			return nil, fmt.Errorf("item %s: unknown source %q", ns.ID, ns.SourceID)
		}
		tr := DefaultTransform()
		if ns.Transform != nil {
			if err := ns.Transform.validate(); err != nil {
				return nil, fmt.Errorf("item %s: %w", ns.ID, err)
			}
			tr = ns.Transform.Normalize()
		}
		return &Item{NodeInfo: info, SourceID: ns.SourceID, Transform: tr, Visible: ns.Visible, Locked: ns.Locked}, nil
	case KindFolder:
		if err := ValidateName(ns.Name); err != nil {
			return nil, fmt.Errorf("folder %s: %w", ns.ID, err)
		}
		return &Folder{NodeInfo: info, Name: ns.Name, ChildIDs: []string{}}, nil
	default:
		return nil, fmt.Errorf("node %s: unknown kind %q", ns.ID, ns.Kind)
	}
}

// findCycle runs a depth-first search over scene nesting and returns a scene
// that can reach itself.
func findCycle(order []string, nested map[string][]string) (string, bool) {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(order))
	var visit func(id string) (string, bool)
	visit = func(id string) (string, bool) {
		state[id] = inProgress
		for _, next := range nested[id] {
			switch state[next] {
			case inProgress:
				return next, true
			case unvisited:
				if found, ok := visit(next); ok {
					return found, true
				}
			}
		}
		state[id] = done
		return "", false
	}
	for _, id := range order {
		if state[id] == unvisited {
			if found, ok := visit(id); ok {
				return found, true
			}
		}
	}
	return "", false
}
