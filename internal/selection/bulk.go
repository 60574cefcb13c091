package selection

import (
	"fmt"

	"github.com/nerrad567/gray-logic-studio/internal/scene"
)

// Bulk transform, visibility and lock changes apply to every selected item
// and every item inside a selected folder.

// SetTransform merges a partial transform into every covered item.
func (s *Selection) SetTransform(patch scene.TransformPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	for _, id := range s.coveredItemIDs() {
		if err := s.store.SetTransform(id, patch); err != nil {
			return fmt.Errorf("item %s: %w", id, err)
		}
	}
	return nil
}

// SetVisibility shows or hides every covered item.
func (s *Selection) SetVisibility(visible bool) error {
	for _, id := range s.coveredItemIDs() {
		if err := s.store.SetVisibility(id, visible); err != nil {
			return fmt.Errorf("item %s: %w", id, err)
		}
	}
	return nil
}

// SetLocked locks or unlocks every covered item.
func (s *Selection) SetLocked(locked bool) error {
	for _, id := range s.coveredItemIDs() {
		if err := s.store.SetLocked(id, locked); err != nil {
			return fmt.Errorf("item %s: %w", id, err)
		}
	}
	return nil
}

// Rotate adds deg degrees to the rotation of every covered item.
func (s *Selection) Rotate(deg float64) error {
	return s.eachItem(func(item *scene.Item) scene.TransformPatch {
		return scene.TransformPatch{Rotation: scene.Float64(item.Transform.Rotation + deg)}
	})
}

// FlipX mirrors every covered item horizontally in place.
func (s *Selection) FlipX() error {
	return s.flip(-1, 1)
}

// FlipY mirrors every covered item vertically in place.
func (s *Selection) FlipY() error {
	return s.flip(1, -1)
}

func (s *Selection) flip(fx, fy float64) error {
	for _, id := range s.coveredItemIDs() {
		item, err := s.store.GetItem(id)
		if err != nil {
			return err
		}
		w, h, err := s.store.ItemNativeSize(id)
		if err != nil {
			return err
		}
		flipped := item.Transform
		flipped.Scale = scene.Vec2{X: item.Transform.Scale.X * fx, Y: item.Transform.Scale.Y * fy}
		before := item.Transform.BoundingRect(w, h)
		after := flipped.BoundingRect(w, h)
		flipped.Position = scene.Vec2{
			X: item.Transform.Position.X + before.X - after.X,
			Y: item.Transform.Position.Y + before.Y - after.Y,
		}
		patch := scene.TransformPatch{Scale: &flipped.Scale, Position: &flipped.Position}
		if err := s.store.SetTransform(id, patch); err != nil {
			return err
		}
	}
	return nil
}

// ResetTransform restores the default transform of every covered item.
func (s *Selection) ResetTransform() error {
	def := scene.DefaultTransform()
	zero := 0.0
	return s.SetTransform(scene.TransformPatch{
		Position: &def.Position,
		Scale:    &def.Scale,
		Rotation: &def.Rotation,
		Crop:     &scene.CropPatch{Top: &zero, Bottom: &zero, Left: &zero, Right: &zero},
	})
}

// CenterOnCanvas moves the covered items together so that their bounding
// box is centred on a canvas of the given size.
func (s *Selection) CenterOnCanvas(width, height float64) error {
	rect, ok := s.GetBoundingRect()
	if !ok {
		return ErrEmpty
	}
	dx := (width-rect.Width)/2 - rect.X
	dy := (height-rect.Height)/2 - rect.Y
	return s.eachItem(func(item *scene.Item) scene.TransformPatch {
		return scene.TransformPatch{Position: &scene.Vec2{
			X: item.Transform.Position.X + dx,
			Y: item.Transform.Position.Y + dy,
		}}
	})
}

func (s *Selection) eachItem(patchFor func(*scene.Item) scene.TransformPatch) error {
	for _, id := range s.coveredItemIDs() {
		item, err := s.store.GetItem(id)
		if err != nil {
			return err
		}
		if err := s.store.SetTransform(id, patchFor(item)); err != nil {
			return fmt.Errorf("item %s: %w", id, err)
		}
	}
	return nil
}

// Remove deletes the root nodes of the selection, with their subtrees, and
// empties the selection.
func (s *Selection) Remove() error {
	for _, id := range s.rootIDs() {
		if err := s.store.RemoveItem(id); err != nil {
			return fmt.Errorf("node %s: %w", id, err)
		}
	}
	s.clear()
	return nil
}

// CopyTo clones the root nodes, in read order, to the top of a scene or
// folder and returns the new root ids. The selection is unchanged.
func (s *Selection) CopyTo(sceneID, folderID string, duplicateSources bool) ([]string, error) {
	roots := s.rootIDs()
	if len(roots) == 0 {
		return nil, ErrEmpty
	}
	return s.store.CopyNodes(roots, sceneID, folderID, duplicateSources)
}

// MoveTo moves the root nodes to a scene or folder and re-binds the
// selection to them.
func (s *Selection) MoveTo(sceneID, folderID string) error {
	roots := s.rootIDs()
	if len(roots) == 0 {
		return ErrEmpty
	}
	moved, err := s.store.MoveNodes(roots, sceneID, folderID)
	if err != nil {
		return err
	}
	s.sceneID = sceneID
	s.clear()
	s.add(moved)
	return nil
}

// PlaceBefore moves the root nodes, in read order, directly above targetID.
func (s *Selection) PlaceBefore(targetID string) error {
	return s.store.PlaceNodesBefore(s.rootIDs(), targetID)
}

// PlaceAfter moves the root nodes, in read order, directly below targetID.
func (s *Selection) PlaceAfter(targetID string) error {
	return s.store.PlaceNodesAfter(s.rootIDs(), targetID)
}

// SetParent moves the root nodes into a folder, or to the scene root when
// folderID is empty.
func (s *Selection) SetParent(folderID string) error {
	return s.store.SetNodesParent(s.rootIDs(), folderID)
}
