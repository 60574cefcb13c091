package scene

import "fmt"

// GetScene returns a copy of the scene with the given id.
func (s *Store) GetScene(id string) (*Scene, error) {
	sc, ok := s.scenes[id]
	if !ok {
		return nil, ErrSceneNotFound
	}
	return sc.DeepCopy(), nil
}

// GetSceneByName returns the first scene, in creation order, with the given
// name.
func (s *Store) GetSceneByName(name string) (*Scene, error) {
	for _, id := range s.sceneOrder {
		if sc := s.scenes[id]; sc.Name == name {
			return sc.DeepCopy(), nil
		}
	}
	return nil, ErrSceneNotFound
}

// GetScenes returns copies of all scenes in creation order.
func (s *Store) GetScenes() []Scene {
	out := make([]Scene, 0, len(s.sceneOrder))
	for _, id := range s.sceneOrder {
		out = append(out, *s.scenes[id].DeepCopy())
	}
	return out
}

// SceneCount returns the number of scenes.
func (s *Store) SceneCount() int {
	return len(s.scenes)
}

// HasScene reports whether a scene id exists.
func (s *Store) HasScene(id string) bool {
	_, ok := s.scenes[id]
	return ok
}

// ActiveSceneID returns the id of the active scene, or "" when there are no
// scenes.
func (s *Store) ActiveSceneID() string {
	return s.activeID
}

// ActiveScene returns a copy of the active scene.
func (s *Store) ActiveScene() (*Scene, error) {
	return s.GetScene(s.activeID)
}

// GetNode returns a copy of any node.
func (s *Store) GetNode(id string) (Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return copyNode(n), nil
}

// HasNode reports whether a node id exists.
func (s *Store) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// NodeSceneID returns the scene a node belongs to.
func (s *Store) NodeSceneID(id string) (string, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return "", false
	}
	return n.Info().SceneID, true
}

// GetItem returns a copy of an item.
func (s *Store) GetItem(id string) (*Item, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	item, ok := n.(*Item)
	if !ok {
		return nil, ErrNotAnItem
	}
	return item.DeepCopy(), nil
}

// GetFolder returns a copy of a folder.
func (s *Store) GetFolder(id string) (*Folder, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	folder, ok := n.(*Folder)
	if !ok {
		return nil, ErrNotAFolder
	}
	return folder.DeepCopy(), nil
}

// NodeIDs returns every node id of a scene in flat read order.
func (s *Store) NodeIDs(sceneID string) ([]string, error) {
	sc, ok := s.scenes[sceneID]
	if !ok {
		return nil, ErrSceneNotFound
	}
	return s.flatten(sc.ChildIDs, nil), nil
}

// GetNodes returns copies of every node of a scene in flat read order.
func (s *Store) GetNodes(sceneID string) ([]Node, error) {
	ids, err := s.NodeIDs(sceneID)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyNode(s.nodes[id]))
	}
	return out, nil
}

// GetItems returns copies of the items of a scene in flat read order.
func (s *Store) GetItems(sceneID string) ([]*Item, error) {
	ids, err := s.NodeIDs(sceneID)
	if err != nil {
		return nil, err
	}
	var out []*Item
	for _, id := range ids {
		if item, ok := s.nodes[id].(*Item); ok {
			out = append(out, item.DeepCopy())
		}
	}
	return out, nil
}

// GetFolders returns copies of the folders of a scene in flat read order.
func (s *Store) GetFolders(sceneID string) ([]*Folder, error) {
	ids, err := s.NodeIDs(sceneID)
	if err != nil {
		return nil, err
	}
	var out []*Folder
	for _, id := range ids {
		if f, ok := s.nodes[id].(*Folder); ok {
			out = append(out, f.DeepCopy())
		}
	}
	return out, nil
}

// GetNestedNodes returns copies of every descendant of a folder in flat read
// order. The folder itself is not included.
func (s *Store) GetNestedNodes(folderID string) ([]Node, error) {
	n, ok := s.nodes[folderID]
	if !ok {
		return nil, ErrNodeNotFound
	}
	f, ok := n.(*Folder)
	if !ok {
		return nil, ErrNotAFolder
	}
	ids := s.flatten(f.ChildIDs, nil)
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyNode(s.nodes[id]))
	}
	return out, nil
}

// Ancestors returns the folder ids above a node, nearest first.
func (s *Store) Ancestors(nodeID string) ([]string, error) {
	n, ok := s.nodes[nodeID]
	if !ok {
		return nil, ErrNodeNotFound
	}
	var out []string
	for id := n.Info().ParentID; id != ""; id = s.nodes[id].Info().ParentID {
		out = append(out, id)
	}
	return out, nil
}

// ReferencingNodes returns copies of every item, in any scene, that places
// the given source. Scenes are visited in creation order.
func (s *Store) ReferencingNodes(sourceID string) []*Item {
	var out []*Item
	for _, id := range s.referencingIDs(sourceID) {
		out = append(out, s.nodes[id].(*Item).DeepCopy())
	}
	return out
}

// IsSourceReferenced reports whether any item places the given source.
func (s *Store) IsSourceReferenced(sourceID string) bool {
	for _, n := range s.nodes {
		if item, ok := n.(*Item); ok && item.SourceID == sourceID {
			return true
		}
	}
	return false
}

func (s *Store) referencingIDs(sourceID string) []string {
	var out []string
	for _, sceneID := range s.sceneOrder {
		for _, id := range s.flatten(s.scenes[sceneID].ChildIDs, nil) {
			if item, ok := s.nodes[id].(*Item); ok && item.SourceID == sourceID {
				out = append(out, id)
			}
		}
	}
	return out
}

// ItemNativeSize returns the size of an item's source before its transform.
func (s *Store) ItemNativeSize(id string) (width, height float64, err error) {
	item, err := s.item(id)
	if err != nil {
		return 0, 0, err
	}
	width, height = s.sourceSize(item.SourceID)
	return width, height, nil
}

// ItemBoundingRect returns the canvas-space bounding box of an item, based on
// the native size of its source. Nested scenes are canvas sized.
func (s *Store) ItemBoundingRect(id string) (Rect, error) {
	n, ok := s.nodes[id]
	if !ok {
		return Rect{}, ErrNodeNotFound
	}
	item, ok := n.(*Item)
	if !ok {
		return Rect{}, fmt.Errorf("%w: %s", ErrNotAnItem, id)
	}
	w, h := s.sourceSize(item.SourceID)
	return item.Transform.BoundingRect(w, h), nil
}
