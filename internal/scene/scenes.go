package scene

import (
	"fmt"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// CreateSceneOptions controls CreateScene.
type CreateSceneOptions struct {
	// DuplicateSourcesFromScene copies every node of the named scene into
	// the new one. Items get fresh copies of their sources; nested scenes
	// are referenced again.
	DuplicateSourcesFromScene string

	// MakeActive switches to the new scene once it is created. The first
	// scene always becomes active.
	MakeActive bool
}

// CreateScene registers a new scene and its scene-type source.
func (s *Store) CreateScene(name string, opts CreateSceneOptions) (*Scene, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var template *Scene
	if opts.DuplicateSourcesFromScene != "" {
		var ok bool
		if template, ok = s.scenes[opts.DuplicateSourcesFromScene]; !ok {
			return nil, fmt.Errorf("%w: duplicate from %s", ErrSceneNotFound, opts.DuplicateSourcesFromScene)
		}
	}

	src, err := s.sources.Create(source.Spec{Type: source.TypeScene, Name: name})
	if err != nil {
		return nil, fmt.Errorf("creating scene source: %w", err)
	}

	sc := &Scene{ID: src.ID, Name: name, ChildIDs: []string{}}
	s.scenes[sc.ID] = sc
	s.sceneOrder = append(s.sceneOrder, sc.ID)
	evts := []events.Event{{Type: events.SceneAdded, SceneID: sc.ID, Name: name}}

	if template != nil {
		_, copyEvts, err := s.copyTx(template.ChildIDs, sc.ID, "", true)
		if err != nil {
			delete(s.scenes, sc.ID)
			s.sceneOrder = s.sceneOrder[:len(s.sceneOrder)-1]
			_ = s.sources.Remove(sc.ID)
			return nil, fmt.Errorf("duplicating scene %s: %w", template.ID, err)
		}
		evts = append(evts, copyEvts...)
	}

	if s.activeID == "" || opts.MakeActive {
		evts = append(evts, s.switchTx(sc.ID)...)
	}

	s.publish(evts)
	s.logger.Info("scene created", "id", sc.ID, "name", name, "nodes", len(s.flatten(sc.ChildIDs, nil)))
	return sc.DeepCopy(), nil
}

// RenameScene changes a scene's name and the name of its scene source.
func (s *Store) RenameScene(id, name string) error {
	sc, ok := s.scenes[id]
	if !ok {
		return ErrSceneNotFound
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if sc.Name == name {
		return nil
	}
	if err := s.sources.Rename(id, name); err != nil {
		return fmt.Errorf("renaming scene source: %w", err)
	}
	sc.Name = name
	s.publish([]events.Event{{Type: events.SceneRenamed, SceneID: id, Name: name}})
	return nil
}

// RemoveScene deletes a scene, its nodes, every item in other scenes that
// embeds it, and its scene source.
//
// Removing the last scene is refused unless force is set. When the active
// scene is removed, the previously active scene takes over if it still
// exists, otherwise the oldest remaining scene.
func (s *Store) RemoveScene(id string, force bool) (*Scene, error) {
	sc, ok := s.scenes[id]
	if !ok {
		return nil, ErrSceneNotFound
	}
	if len(s.scenes) == 1 && !force {
		return nil, ErrLastScene
	}
	removed := sc.DeepCopy()

	var evts []events.Event
	for _, childID := range cloneIDs(sc.ChildIDs) {
		evts = append(evts, s.removeNodeTx(childID)...)
	}
	for _, refID := range s.referencingIDs(id) {
		evts = append(evts, s.removeNodeTx(refID)...)
	}

	delete(s.scenes, id)
	removeID(&s.sceneOrder, id)
	if s.previousID == id {
		s.previousID = ""
	}

	if s.activeID == id {
		next := s.previousID
		if next == "" && len(s.sceneOrder) > 0 {
			next = s.sceneOrder[0]
		}
		if next != "" {
			evts = append(evts, s.switchTx(next)...)
		} else {
			s.compositor.SetActiveComposeRoot(s.sources.Handle(id), nil)
			s.activeID = ""
		}
	}

	if err := s.sources.Remove(id); err != nil {
		s.logger.Warn("scene source already gone", "id", id, "error", err)
	}
	evts = append(evts, events.Event{Type: events.SceneRemoved, SceneID: id, Name: sc.Name})

	s.publish(evts)
	s.logger.Info("scene removed", "id", id, "name", sc.Name, "active", s.activeID)
	return removed, nil
}

// MakeSceneActive switches the program output to a scene. It returns false
// for an unknown id; activating the active scene is a no-op.
func (s *Store) MakeSceneActive(id string) bool {
	if _, ok := s.scenes[id]; !ok {
		return false
	}
	s.publish(s.switchTx(id))
	return true
}

func (s *Store) switchTx(id string) []events.Event {
	prev := s.activeID
	if prev == id {
		return nil
	}
	s.compositor.SetActiveComposeRoot(s.sources.Handle(prev), s.sources.Handle(id))
	if _, stillThere := s.scenes[prev]; stillThere {
		s.previousID = prev
	} else {
		s.previousID = ""
	}
	s.activeID = id
	s.logger.Debug("active scene switched", "from", prev, "to", id)
	return []events.Event{{
		Type:            events.SceneSwitched,
		SceneID:         id,
		PreviousSceneID: prev,
		Name:            s.scenes[id].Name,
	}}
}
