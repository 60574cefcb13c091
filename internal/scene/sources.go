package scene

import (
	"fmt"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// SourceView is the read side of the source registry.
type SourceView interface {
	Get(id string) (*source.Source, error)
	Exists(id string) bool
	List() []source.Source
	ListByType(t source.Type) []source.Source
	Count() int
}

// Sources returns a read-only view of the registry the store resolves
// source ids against. Changes go through the Store so they are published.
func (s *Store) Sources() SourceView {
	return s.sources
}

// SetCanvasSize sets the output size a scene has when it is placed as a
// source in another scene.
func (s *Store) SetCanvasSize(width, height float64) {
	s.canvasW = max(width, 0)
	s.canvasH = max(height, 0)
}

// CanvasSize returns the size set by SetCanvasSize.
func (s *Store) CanvasSize() (width, height float64) {
	return s.canvasW, s.canvasH
}

// sourceSize returns the native size of a source. Scene sources have the
// canvas size.
func (s *Store) sourceSize(sourceID string) (width, height float64) {
	if typ, ok := s.sources.TypeOf(sourceID); ok && typ.IsScene() {
		return s.canvasW, s.canvasH
	}
	return s.sources.Size(sourceID)
}

// RenameSource changes a source's display name. Renaming a scene source
// renames the scene.
func (s *Store) RenameSource(sourceID, name string) error {
	if _, ok := s.scenes[sourceID]; ok {
		return s.RenameScene(sourceID, name)
	}
	src, err := s.sources.Get(sourceID)
	if err != nil {
		return err
	}
	if src.Name == name {
		return nil
	}
	if err := s.sources.Rename(sourceID, name); err != nil {
		return err
	}
	s.publishSourceUpdated(sourceID, name, events.ChangeName)
	return nil
}

// UpdateSourceSettings merges patch into a source's settings. A nil value
// deletes the key.
func (s *Store) UpdateSourceSettings(sourceID string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	if err := s.sources.UpdateSettings(sourceID, patch); err != nil {
		return err
	}
	s.publishSourceUpdated(sourceID, "", events.ChangeSettings)
	return nil
}

// SetSourceAudioMixers replaces the audio mixer membership of a source.
func (s *Store) SetSourceAudioMixers(sourceID string, mixers source.MixerTrack) error {
	src, err := s.sources.Get(sourceID)
	if err != nil {
		return err
	}
	if src.AudioMixers == mixers {
		return nil
	}
	if err := s.sources.SetAudioMixers(sourceID, mixers); err != nil {
		return err
	}
	s.publishSourceUpdated(sourceID, "", events.ChangeAudio)
	return nil
}

// SetSourceMuted mutes or unmutes a source.
func (s *Store) SetSourceMuted(sourceID string, muted bool) error {
	src, err := s.sources.Get(sourceID)
	if err != nil {
		return err
	}
	if src.Muted == muted {
		return nil
	}
	if err := s.sources.SetMuted(sourceID, muted); err != nil {
		return err
	}
	s.publishSourceUpdated(sourceID, "", events.ChangeMuted)
	return nil
}

// SetSourceNativeSize records the size the engine reports for a source.
// Scene sources take the canvas size and are refused.
func (s *Store) SetSourceNativeSize(sourceID string, width, height float64) error {
	if _, ok := s.scenes[sourceID]; ok {
		return fmt.Errorf("%w: scene %s is sized by the canvas", source.ErrInvalidType, sourceID)
	}
	if !s.sources.Exists(sourceID) {
		return source.ErrSourceNotFound
	}
	if w, h := s.sources.Size(sourceID); w == width && h == height {
		return nil
	}
	if err := s.sources.SetNativeSize(sourceID, width, height); err != nil {
		return err
	}
	s.publishSourceUpdated(sourceID, "", events.ChangeSize)
	return nil
}

func (s *Store) publishSourceUpdated(sourceID, name, change string) {
	s.publish([]events.Event{{
		Type:     events.SourceUpdated,
		SourceID: sourceID,
		Name:     name,
		Changes:  []string{change},
	}})
}
