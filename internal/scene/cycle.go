package scene

// CanAddSource reports whether placing sourceID in sceneID would keep the
// scene graph acyclic. Non-scene sources are always allowed.
func (s *Store) CanAddSource(sceneID, sourceID string) bool {
	return !s.wouldCycle(sceneID, sourceID)
}

// NestedScenes returns every scene reachable from sceneID through
// nested-scene items, in discovery order. The scene itself is not included.
func (s *Store) NestedScenes(sceneID string) []string {
	visited := map[string]bool{sceneID: true}
	var out []string
	var walk func(id string)
	walk = func(id string) {
		for _, nested := range s.directlyNested(id) {
			if visited[nested] {
				continue
			}
			visited[nested] = true
			out = append(out, nested)
			walk(nested)
		}
	}
	walk(sceneID)
	return out
}

// wouldCycle reports whether sceneID would become reachable from itself if an
// item placing sourceID were added to it.
func (s *Store) wouldCycle(sceneID, sourceID string) bool {
	typ, ok := s.sources.TypeOf(sourceID)
	if !ok || !typ.IsScene() {
		return false
	}
	if sourceID == sceneID {
		return true
	}
	return s.reaches(sourceID, sceneID, make(map[string]bool))
}

// reaches reports whether target is reachable from sceneID.
func (s *Store) reaches(sceneID, target string, visited map[string]bool) bool {
	if visited[sceneID] {
		return false
	}
	visited[sceneID] = true
	for _, nested := range s.directlyNested(sceneID) {
		if nested == target || s.reaches(nested, target, visited) {
			return true
		}
	}
	return false
}

// directlyNested returns the scene sources placed by items of sceneID.
func (s *Store) directlyNested(sceneID string) []string {
	sc, ok := s.scenes[sceneID]
	if !ok {
		return nil
	}
	var out []string
	for _, id := range s.flatten(sc.ChildIDs, nil) {
		item, ok := s.nodes[id].(*Item)
		if !ok {
			continue
		}
		if typ, ok := s.sources.TypeOf(item.SourceID); ok && typ.IsScene() {
			out = append(out, item.SourceID)
		}
	}
	return out
}
