package selection

import (
	"fmt"

	"github.com/nerrad567/gray-logic-studio/internal/scene"
)

// Selection is an ordered set of node ids within one scene.
//
// Ids whose nodes have since been removed from the store are dropped the
// next time the selection is read or changed.
type Selection struct {
	store   *scene.Store
	sceneID string

	ids            []string // selection order
	set            map[string]struct{}
	lastSelectedID string
}

// New creates an empty selection bound to sceneID.
func New(store *scene.Store, sceneID string) *Selection {
	return &Selection{
		store:   store,
		sceneID: sceneID,
		set:     make(map[string]struct{}),
	}
}

// SceneID returns the scene the selection is bound to.
func (s *Selection) SceneID() string {
	return s.sceneID
}

// Select replaces the selection with ids. When the ids belong to a different
// scene than the current one, the selection is re-bound to that scene.
func (s *Selection) Select(ids ...string) error {
	if len(ids) == 0 {
		s.Reset()
		return nil
	}
	sceneID, err := s.sceneOf(ids)
	if err != nil {
		return err
	}
	s.sceneID = sceneID
	s.clear()
	s.add(ids)
	return nil
}

// Add extends the selection. All ids must belong to the bound scene.
func (s *Selection) Add(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.checkBound(ids); err != nil {
		return err
	}
	s.add(ids)
	return nil
}

// Deselect removes ids from the selection. All ids must belong to the bound
// scene; ids that are not selected are ignored.
func (s *Selection) Deselect(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.checkBound(ids); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := s.set[id]; !ok {
			continue
		}
		delete(s.set, id)
		for i, sel := range s.ids {
			if sel == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
	}
	s.fixLast()
	return nil
}

// Invert selects every node of the scene that is not selected and
// deselects the rest.
func (s *Selection) Invert() error {
	all, err := s.store.NodeIDs(s.sceneID)
	if err != nil {
		return err
	}
	s.prune()
	var inverted []string
	for _, id := range all {
		if _, ok := s.set[id]; !ok {
			inverted = append(inverted, id)
		}
	}
	s.clear()
	s.add(inverted)
	return nil
}

// SelectAll selects every node of the bound scene.
func (s *Selection) SelectAll() error {
	all, err := s.store.NodeIDs(s.sceneID)
	if err != nil {
		return err
	}
	s.clear()
	s.add(all)
	return nil
}

// Reset empties the selection. The scene binding is kept.
func (s *Selection) Reset() {
	s.clear()
}

// GetIDs returns the selected ids in selection order.
func (s *Selection) GetIDs() []string {
	s.prune()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// GetSize returns the number of selected nodes.
func (s *Selection) GetSize() int {
	s.prune()
	return len(s.ids)
}

// IsSelected reports whether a node is selected.
func (s *Selection) IsSelected(id string) bool {
	s.prune()
	_, ok := s.set[id]
	return ok
}

// LastSelectedID returns the most recently selected id that is still
// selected, or "".
func (s *Selection) LastSelectedID() string {
	s.prune()
	return s.lastSelectedID
}

// GetNodes returns copies of the selected nodes in the scene's read order.
func (s *Selection) GetNodes() []scene.Node {
	var out []scene.Node
	for _, id := range s.orderedIDs() {
		if n, err := s.store.GetNode(id); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// GetItems returns copies of the selected items in read order.
func (s *Selection) GetItems() []*scene.Item {
	var out []*scene.Item
	for _, n := range s.GetNodes() {
		if item, ok := n.(*scene.Item); ok {
			out = append(out, item)
		}
	}
	return out
}

// GetFolders returns copies of the selected folders in read order.
func (s *Selection) GetFolders() []*scene.Folder {
	var out []*scene.Folder
	for _, n := range s.GetNodes() {
		if f, ok := n.(*scene.Folder); ok {
			out = append(out, f)
		}
	}
	return out
}

// GetRootNodes returns the minimal covering set: selected nodes none of
// whose ancestors is selected, in read order.
func (s *Selection) GetRootNodes() []scene.Node {
	var out []scene.Node
	for _, id := range s.rootIDs() {
		if n, err := s.store.GetNode(id); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// GetBoundingRect returns the box covering every selected item and every
// item inside a selected folder. ok is false when there is no such item.
func (s *Selection) GetBoundingRect() (rect scene.Rect, ok bool) {
	for _, id := range s.coveredItemIDs() {
		r, err := s.store.ItemBoundingRect(id)
		if err != nil {
			continue
		}
		if !ok {
			rect, ok = r, true
			continue
		}
		rect = rect.Union(r)
	}
	return rect, ok
}

// orderedIDs returns the selected ids in the scene's flat read order.
func (s *Selection) orderedIDs() []string {
	s.prune()
	if len(s.ids) == 0 {
		return nil
	}
	all, err := s.store.NodeIDs(s.sceneID)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for _, id := range all {
		if _, ok := s.set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// rootIDs returns the minimal covering set in read order.
func (s *Selection) rootIDs() []string {
	var out []string
	for _, id := range s.orderedIDs() {
		ancestors, err := s.store.Ancestors(id)
		if err != nil {
			continue
		}
		covered := false
		for _, a := range ancestors {
			if _, ok := s.set[a]; ok {
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

// coveredItemIDs returns selected items and items nested in selected
// folders, each once, in read order.
func (s *Selection) coveredItemIDs() []string {
	seen := make(map[string]struct{})
	var out []string
	addItem := func(n scene.Node) {
		if item, ok := n.(*scene.Item); ok {
			if _, dup := seen[item.ID]; !dup {
				seen[item.ID] = struct{}{}
				out = append(out, item.ID)
			}
		}
	}
	for _, n := range s.GetRootNodes() {
		switch v := n.(type) {
		case *scene.Item:
			addItem(v)
		case *scene.Folder:
			nested, err := s.store.GetNestedNodes(v.ID)
			if err != nil {
				continue
			}
			for _, child := range nested {
				addItem(child)
			}
		}
	}
	return out
}

func (s *Selection) add(ids []string) {
	for _, id := range ids {
		if _, ok := s.set[id]; !ok {
			s.set[id] = struct{}{}
			s.ids = append(s.ids, id)
		}
		s.lastSelectedID = id
	}
}

func (s *Selection) clear() {
	s.ids = nil
	s.set = make(map[string]struct{})
	s.lastSelectedID = ""
}

// prune drops ids whose nodes were removed or moved to another scene.
func (s *Selection) prune() {
	kept := s.ids[:0]
	for _, id := range s.ids {
		if sceneID, ok := s.store.NodeSceneID(id); ok && sceneID == s.sceneID {
			kept = append(kept, id)
			continue
		}
		delete(s.set, id)
	}
	s.ids = kept
	s.fixLast()
}

func (s *Selection) fixLast() {
	if _, ok := s.set[s.lastSelectedID]; ok {
		return
	}
	s.lastSelectedID = ""
	if len(s.ids) > 0 {
		s.lastSelectedID = s.ids[len(s.ids)-1]
	}
}

// sceneOf checks that ids exist and share one scene, and returns it.
func (s *Selection) sceneOf(ids []string) (string, error) {
	sceneID := ""
	for _, id := range ids {
		sc, ok := s.store.NodeSceneID(id)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		if sceneID == "" {
			sceneID = sc
		} else if sc != sceneID {
			return "", fmt.Errorf("%w: %s", ErrForeignScene, id)
		}
	}
	return sceneID, nil
}

func (s *Selection) checkBound(ids []string) error {
	sceneID, err := s.sceneOf(ids)
	if err != nil {
		return err
	}
	if sceneID != s.sceneID {
		return fmt.Errorf("%w: selection is bound to %s", ErrForeignScene, s.sceneID)
	}
	return nil
}
