package scene

import (
	"fmt"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// AddOptions controls where and how a new node is added.
type AddOptions struct {
	// FolderID nests the node inside a folder of the same scene.
	FolderID string

	// Transform seeds an item; DefaultTransform is used when nil.
	Transform *Transform

	Hidden bool
	Locked bool
}

// AddSource places an existing source at the top of a scene or folder.
//
// A scene-type source is refused with ErrCycle when the target scene is that
// scene or is reachable from it through nested-scene items.
func (s *Store) AddSource(sceneID, sourceID string, opts AddOptions) (*Item, error) {
	if err := s.validateAdd(sceneID, opts); err != nil {
		return nil, err
	}
	if !s.sources.Exists(sourceID) {
		return nil, fmt.Errorf("%w: %s", source.ErrSourceNotFound, sourceID)
	}
	if s.wouldCycle(sceneID, sourceID) {
		return nil, fmt.Errorf("%w: %s inside %s", ErrCycle, sourceID, sceneID)
	}

	item, evt := s.addItemTx(sceneID, sourceID, opts)
	s.publish([]events.Event{evt})
	s.logger.Debug("item added", "id", item.ID, "scene_id", sceneID, "source_id", sourceID)
	return item.DeepCopy(), nil
}

// CreateAndAddSource registers a new source and places it in a scene.
// Scene-type sources are created with CreateScene instead.
func (s *Store) CreateAndAddSource(sceneID, name string, typ source.Type, settings map[string]any) (*Item, error) {
	if _, ok := s.scenes[sceneID]; !ok {
		return nil, ErrSceneNotFound
	}
	if typ.IsScene() {
		return nil, fmt.Errorf("%w: use CreateScene for %q", source.ErrInvalidType, typ)
	}

	src, err := s.sources.Create(source.Spec{Type: typ, Name: name, Settings: settings})
	if err != nil {
		return nil, fmt.Errorf("creating source: %w", err)
	}
	item, evt := s.addItemTx(sceneID, src.ID, AddOptions{})

	s.publish([]events.Event{
		{Type: events.SourceAdded, SourceID: src.ID, Name: src.Name},
		evt,
	})
	s.logger.Debug("source created and added", "item_id", item.ID, "source_id", src.ID, "type", string(typ))
	return item.DeepCopy(), nil
}

// AddFolder creates an empty folder at the top of a scene or folder.
func (s *Store) AddFolder(sceneID, name string, opts AddOptions) (*Folder, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.validateAdd(sceneID, opts); err != nil {
		return nil, err
	}

	f := &Folder{
		NodeInfo: NodeInfo{ID: s.newID(), SceneID: sceneID, ParentID: opts.FolderID},
		Name:     name,
		ChildIDs: []string{},
	}
	s.nodes[f.ID] = f
	insertAt(s.childList(sceneID, opts.FolderID), 0, f.ID)

	s.publish([]events.Event{addedEvent(f, "")})
	return f.DeepCopy(), nil
}

func (s *Store) validateAdd(sceneID string, opts AddOptions) error {
	if _, ok := s.scenes[sceneID]; !ok {
		return ErrSceneNotFound
	}
	if err := s.folderIn(sceneID, opts.FolderID); err != nil {
		return fmt.Errorf("folder %s: %w", opts.FolderID, err)
	}
	if opts.Transform != nil {
		if err := opts.Transform.validate(); err != nil {
			return err
		}
	}
	return nil
}

// addItemTx creates an item at the top of its container. Inputs must already
// be validated.
func (s *Store) addItemTx(sceneID, sourceID string, opts AddOptions) (*Item, events.Event) {
	tr := DefaultTransform()
	if opts.Transform != nil {
		tr = opts.Transform.Normalize()
	}
	item := &Item{
		NodeInfo:  NodeInfo{ID: s.newID(), SceneID: sceneID, ParentID: opts.FolderID},
		SourceID:  sourceID,
		Transform: tr,
		Visible:   !opts.Hidden,
		Locked:    opts.Locked,
	}
	s.nodes[item.ID] = item
	insertAt(s.childList(sceneID, opts.FolderID), 0, item.ID)
	return item, addedEvent(item, s.sourceName(sourceID))
}

func (s *Store) sourceName(id string) string {
	if src, err := s.sources.Get(id); err == nil {
		return src.Name
	}
	return ""
}

func addedEvent(n Node, sourceName string) events.Event {
	info := n.Info()
	evt := events.Event{
		Type:     events.ItemAdded,
		SceneID:  info.SceneID,
		NodeID:   info.ID,
		NodeKind: string(n.Kind()),
	}
	switch v := n.(type) {
	case *Item:
		evt.SourceID = v.SourceID
		evt.Name = sourceName
	case *Folder:
		evt.Name = v.Name
	}
	return evt
}

// RemoveItem removes an item, or a folder together with everything inside
// it. Sources are not deleted.
func (s *Store) RemoveItem(nodeID string) error {
	if _, ok := s.nodes[nodeID]; !ok {
		return ErrNodeNotFound
	}
	s.publish(s.removeNodeTx(nodeID))
	return nil
}

// removeNodeTx detaches and forgets a node. Folder children go first, so
// events come out in post-order.
func (s *Store) removeNodeTx(id string) []events.Event {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	var evts []events.Event
	evt := events.Event{
		Type:     events.ItemRemoved,
		SceneID:  n.Info().SceneID,
		NodeID:   id,
		NodeKind: string(n.Kind()),
	}
	switch v := n.(type) {
	case *Folder:
		for _, childID := range cloneIDs(v.ChildIDs) {
			evts = append(evts, s.removeNodeTx(childID)...)
		}
		evt.Name = v.Name
	case *Item:
		evt.SourceID = v.SourceID
	}
	removeID(s.containerOf(n), id)
	delete(s.nodes, id)
	return append(evts, evt)
}

// RemoveSource destroys a non-scene source. While nodes still reference it
// the call fails with ErrSourceInUse, unless force is set, in which case the
// referencing nodes are removed first.
func (s *Store) RemoveSource(sourceID string, force bool) error {
	src, err := s.sources.Get(sourceID)
	if err != nil {
		return err
	}
	if src.Type.IsScene() {
		return fmt.Errorf("%w: use RemoveScene", ErrSceneSource)
	}
	refs := s.referencingIDs(sourceID)
	if len(refs) > 0 && !force {
		return fmt.Errorf("%w: %d nodes", ErrSourceInUse, len(refs))
	}

	var evts []events.Event
	for _, id := range refs {
		evts = append(evts, s.removeNodeTx(id)...)
	}
	if err := s.sources.Remove(sourceID); err != nil {
		return err
	}
	evts = append(evts, events.Event{Type: events.SourceRemoved, SourceID: sourceID, Name: src.Name})
	s.publish(evts)
	s.logger.Debug("source removed", "id", sourceID, "nodes_removed", len(refs))
	return nil
}

// SetNodesOrder replaces a scene's top-level order. ids are in read order
// and must be a permutation of the current top-level ids.
func (s *Store) SetNodesOrder(sceneID string, ids []string) error {
	sc, ok := s.scenes[sceneID]
	if !ok {
		return ErrSceneNotFound
	}
	if len(ids) != len(sc.ChildIDs) {
		return fmt.Errorf("%w: got %d ids, scene has %d", ErrInvalidOrder, len(ids), len(sc.ChildIDs))
	}
	if err := validateIDSet(ids); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	for _, id := range ids {
		if indexOf(sc.ChildIDs, id) < 0 {
			return fmt.Errorf("%w: %s is not a top-level node of %s", ErrInvalidOrder, id, sceneID)
		}
	}

	sc.ChildIDs = cloneIDs(ids)
	s.publish([]events.Event{{Type: events.SceneNodesReordered, SceneID: sceneID, Name: sc.Name}})
	return nil
}

// SetTransform merges a partial transform into an item.
func (s *Store) SetTransform(nodeID string, patch TransformPatch) error {
	item, err := s.item(nodeID)
	if err != nil {
		return err
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	next := item.Transform.Apply(patch)
	if next == item.Transform {
		return nil
	}
	item.Transform = next
	s.publish([]events.Event{updatedEvent(item, events.ChangeTransform)})
	return nil
}

// SetVisibility shows or hides an item.
func (s *Store) SetVisibility(nodeID string, visible bool) error {
	item, err := s.item(nodeID)
	if err != nil {
		return err
	}
	if item.Visible == visible {
		return nil
	}
	item.Visible = visible
	s.publish([]events.Event{updatedEvent(item, events.ChangeVisibility)})
	return nil
}

// SetLocked locks or unlocks an item.
func (s *Store) SetLocked(nodeID string, locked bool) error {
	item, err := s.item(nodeID)
	if err != nil {
		return err
	}
	if item.Locked == locked {
		return nil
	}
	item.Locked = locked
	s.publish([]events.Event{updatedEvent(item, events.ChangeLock)})
	return nil
}

// RenameFolder changes a folder's name.
func (s *Store) RenameFolder(folderID, name string) error {
	n, ok := s.nodes[folderID]
	if !ok {
		return ErrNodeNotFound
	}
	f, ok := n.(*Folder)
	if !ok {
		return ErrNotAFolder
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if f.Name == name {
		return nil
	}
	f.Name = name
	evt := updatedEvent(f, events.ChangeName)
	evt.Name = name
	s.publish([]events.Event{evt})
	return nil
}

func (s *Store) item(id string) (*Item, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	item, ok := n.(*Item)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAnItem, id)
	}
	return item, nil
}

func updatedEvent(n Node, changes ...string) events.Event {
	info := n.Info()
	evt := events.Event{
		Type:     events.ItemUpdated,
		SceneID:  info.SceneID,
		NodeID:   info.ID,
		NodeKind: string(n.Kind()),
		Changes:  changes,
	}
	if item, ok := n.(*Item); ok {
		evt.SourceID = item.SourceID
	}
	return evt
}
