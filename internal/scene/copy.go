package scene

import (
	"fmt"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// CopyNodes clones nodes, with their subtrees, to the top of a scene or
// folder and returns the ids of the new top-level copies in the same
// relative order.
//
// With duplicateSources set, each copied item gets a fresh copy of its
// source (scene sources are referenced again). The nesting check applies to
// every copied item before anything is created; either everything is copied
// or nothing is.
func (s *Store) CopyNodes(ids []string, sceneID, folderID string, duplicateSources bool) ([]string, error) {
	newIDs, evts, err := s.copyTx(ids, sceneID, folderID, duplicateSources)
	if err != nil {
		return nil, err
	}
	s.publish(evts)
	s.logger.Debug("nodes copied", "count", len(newIDs), "scene_id", sceneID, "folder_id", folderID)
	return newIDs, nil
}

// MoveNodes moves nodes to a scene or folder and returns their ids after
// the move.
//
// Within one scene the nodes are re-parented and keep their ids. Across
// scenes they are copied, sharing their sources, and the originals are
// removed.
func (s *Store) MoveNodes(ids []string, sceneID, folderID string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	fromScene, ok := s.NodeSceneID(ids[0])
	if !ok {
		return nil, ErrNodeNotFound
	}
	if fromScene == sceneID {
		roots := s.rootsOf(ids)
		evts, err := s.relocateTx(roots, sceneID, folderID, "", false)
		if err != nil {
			return nil, err
		}
		s.publish(evts)
		return roots, nil
	}

	newIDs, evts, err := s.copyTx(ids, sceneID, folderID, false)
	if err != nil {
		return nil, err
	}
	for _, id := range s.rootsOf(ids) {
		evts = append(evts, s.removeNodeTx(id)...)
	}
	s.publish(evts)
	s.logger.Debug("nodes moved", "count", len(newIDs), "from", fromScene, "to", sceneID)
	return newIDs, nil
}

func (s *Store) copyTx(ids []string, sceneID, folderID string, duplicateSources bool) ([]string, []events.Event, error) {
	if _, ok := s.scenes[sceneID]; !ok {
		return nil, nil, ErrSceneNotFound
	}
	if err := s.folderIn(sceneID, folderID); err != nil {
		return nil, nil, fmt.Errorf("folder %s: %w", folderID, err)
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}
	if err := validateIDSet(ids); err != nil {
		return nil, nil, err
	}
	fromScene := ""
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		if fromScene == "" {
			fromScene = n.Info().SceneID
		} else if n.Info().SceneID != fromScene {
			return nil, nil, fmt.Errorf("%w: %s", ErrForeignScene, id)
		}
	}

	roots := s.rootsOf(ids)
	items := s.itemsUnder(roots)
	for _, item := range items {
		if duplicateSources && !s.isSceneSource(item.SourceID) {
			continue
		}
		if s.wouldCycle(sceneID, item.SourceID) {
			return nil, nil, fmt.Errorf("%w: copying %s into %s", ErrCycle, item.ID, sceneID)
		}
	}

	sourceFor := make(map[string]string)
	var evts []events.Event
	if duplicateSources {
		var err error
		if sourceFor, evts, err = s.duplicateSourcesTx(items); err != nil {
			return nil, nil, err
		}
	}

	list := s.childList(sceneID, folderID)
	newIDs := make([]string, 0, len(roots))
	for i, id := range roots {
		newID, cloneEvts := s.cloneTx(id, sceneID, folderID, sourceFor)
		insertAt(list, i, newID)
		newIDs = append(newIDs, newID)
		evts = append(evts, cloneEvts...)
	}
	return newIDs, evts, nil
}

// itemsUnder returns the items of the given subtrees in flat read order.
func (s *Store) itemsUnder(roots []string) []*Item {
	var out []*Item
	for _, id := range s.flatten(roots, nil) {
		if item, ok := s.nodes[id].(*Item); ok {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store) isSceneSource(id string) bool {
	typ, ok := s.sources.TypeOf(id)
	return ok && typ.IsScene()
}

// duplicateSourcesTx creates one copy of every non-scene source used by
// items. Items that shared a source share its copy. On failure every copy
// created so far is destroyed.
func (s *Store) duplicateSourcesTx(items []*Item) (map[string]string, []events.Event, error) {
	mapping := make(map[string]string)
	var evts []events.Event
	for _, item := range items {
		if _, done := mapping[item.SourceID]; done || s.isSceneSource(item.SourceID) {
			continue
		}
		orig, err := s.sources.Get(item.SourceID)
		if err != nil {
			s.rollbackSources(mapping)
			return nil, nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		mixers := orig.AudioMixers
		cpy, err := s.sources.Create(source.Spec{
			Type:        orig.Type,
			Name:        orig.Name,
			Settings:    orig.Settings,
			AudioMixers: &mixers,
			Muted:       orig.Muted,
			Width:       orig.Width,
			Height:      orig.Height,
		})
		if err != nil {
			s.rollbackSources(mapping)
			return nil, nil, fmt.Errorf("duplicating source %s: %w", orig.ID, err)
		}
		mapping[orig.ID] = cpy.ID
		evts = append(evts, events.Event{Type: events.SourceAdded, SourceID: cpy.ID, Name: cpy.Name})
	}
	return mapping, evts, nil
}

func (s *Store) rollbackSources(mapping map[string]string) {
	for _, id := range mapping {
		if err := s.sources.Remove(id); err != nil {
			s.logger.Warn("rollback of duplicated source failed", "id", id, "error", err)
		}
	}
}

// cloneTx copies one node and its subtree into (sceneID, parentID) and
// returns the new id. The caller inserts the new root into its container;
// descendants are appended to their cloned folders in order.
func (s *Store) cloneTx(id, sceneID, parentID string, sourceFor map[string]string) (string, []events.Event) {
	info := NodeInfo{ID: s.newID(), SceneID: sceneID, ParentID: parentID}
	switch n := s.nodes[id].(type) {
	case *Item:
		sourceID := n.SourceID
		if mapped, ok := sourceFor[sourceID]; ok {
			sourceID = mapped
		}
		cpy := &Item{
			NodeInfo:  info,
			SourceID:  sourceID,
			Transform: n.Transform,
			Visible:   n.Visible,
			Locked:    n.Locked,
		}
		s.nodes[cpy.ID] = cpy
		return cpy.ID, []events.Event{addedEvent(cpy, s.sourceName(sourceID))}

	case *Folder:
		cpy := &Folder{NodeInfo: info, Name: n.Name, ChildIDs: make([]string, 0, len(n.ChildIDs))}
		s.nodes[cpy.ID] = cpy
		evts := []events.Event{addedEvent(cpy, "")}
		for _, childID := range cloneIDs(n.ChildIDs) {
			childCopy, childEvts := s.cloneTx(childID, sceneID, cpy.ID, sourceFor)
			cpy.ChildIDs = append(cpy.ChildIDs, childCopy)
			evts = append(evts, childEvts...)
		}
		return cpy.ID, evts
	}
	return "", nil
}
