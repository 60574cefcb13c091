package scene

import (
	"fmt"

	"github.com/nerrad567/gray-logic-studio/internal/events"
)

// SetParent moves a node into a folder of the same scene, or to the scene
// root when folderID is empty. The node lands at the top of its new
// container.
func (s *Store) SetParent(nodeID, folderID string) error {
	return s.SetNodesParent([]string{nodeID}, folderID)
}

// SetNodesParent moves several nodes of one scene into a folder, keeping
// their relative order, at the top of the folder.
func (s *Store) SetNodesParent(ids []string, folderID string) error {
	if len(ids) == 0 {
		return nil
	}
	sceneID, ok := s.NodeSceneID(ids[0])
	if !ok {
		return ErrNodeNotFound
	}
	evts, err := s.relocateTx(ids, sceneID, folderID, "", false)
	if err != nil {
		return err
	}
	s.publish(evts)
	return nil
}

// PlaceBefore moves a node next to targetID, directly above it in read
// order. The node joins the target's container.
func (s *Store) PlaceBefore(nodeID, targetID string) error {
	return s.PlaceNodesBefore([]string{nodeID}, targetID)
}

// PlaceAfter moves a node next to targetID, directly below it in read order.
func (s *Store) PlaceAfter(nodeID, targetID string) error {
	return s.PlaceNodesAfter([]string{nodeID}, targetID)
}

// PlaceNodesBefore moves several nodes, in the given order, directly above
// targetID.
func (s *Store) PlaceNodesBefore(ids []string, targetID string) error {
	return s.placeRelative(ids, targetID, false)
}

// PlaceNodesAfter moves several nodes, in the given order, directly below
// targetID.
func (s *Store) PlaceNodesAfter(ids []string, targetID string) error {
	return s.placeRelative(ids, targetID, true)
}

func (s *Store) placeRelative(ids []string, targetID string, after bool) error {
	target, ok := s.nodes[targetID]
	if !ok {
		return fmt.Errorf("target %s: %w", targetID, ErrNodeNotFound)
	}
	info := target.Info()
	evts, err := s.relocateTx(ids, info.SceneID, info.ParentID, targetID, after)
	if err != nil {
		return err
	}
	s.publish(evts)
	return nil
}

type position struct {
	parentID string
	index    int
}

// relocateTx moves ids, in order, into the container parentID of sceneID.
// They are inserted at the top, or next to anchorID when it is set.
func (s *Store) relocateTx(ids []string, sceneID, parentID, anchorID string, after bool) ([]events.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := validateIDSet(ids); err != nil {
		return nil, err
	}
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		if n.Info().SceneID != sceneID {
			return nil, fmt.Errorf("%w: %s", ErrForeignScene, id)
		}
	}
	if err := s.folderIn(sceneID, parentID); err != nil {
		return nil, fmt.Errorf("folder %s: %w", parentID, err)
	}
	if anchorID != "" && indexOf(ids, anchorID) >= 0 {
		return nil, fmt.Errorf("%w: %s placed relative to itself", ErrInvalidParent, anchorID)
	}
	for _, id := range ids {
		if parentID != "" && s.isWithin(parentID, id) {
			return nil, fmt.Errorf("%w: %s inside its own subtree", ErrInvalidParent, id)
		}
		if anchorID != "" && s.isWithin(anchorID, id) {
			return nil, fmt.Errorf("%w: %s next to its own descendant", ErrInvalidParent, id)
		}
	}

	old := make(map[string]position, len(ids))
	for _, id := range ids {
		n := s.nodes[id]
		old[id] = position{parentID: n.Info().ParentID, index: indexOf(*s.containerOf(n), id)}
	}
	for _, id := range ids {
		removeID(s.containerOf(s.nodes[id]), id)
	}

	list := s.childList(sceneID, parentID)
	at := 0
	if anchorID != "" {
		at = indexOf(*list, anchorID)
		if after {
			at++
		}
	}
	for i, id := range ids {
		insertAt(list, at+i, id)
		infoOf(s.nodes[id]).ParentID = parentID
	}

	var evts []events.Event
	for _, id := range ids {
		n := s.nodes[id]
		switch prev := old[id]; {
		case prev.parentID != parentID:
			evts = append(evts, updatedEvent(n, events.ChangeParent))
		case prev.index != indexOf(*list, id):
			evts = append(evts, updatedEvent(n, events.ChangeOrder))
		}
	}
	return evts, nil
}

// rootsOf drops every id whose ancestor is also listed, keeping order.
func (s *Store) rootsOf(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	var out []string
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok {
			out = append(out, id)
			continue
		}
		covered := false
		for p := n.Info().ParentID; p != ""; p = s.nodes[p].Info().ParentID {
			if _, ok := set[p]; ok {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, id)
		}
	}
	return out
}
