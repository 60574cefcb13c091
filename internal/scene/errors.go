package scene

import "errors"

// Domain errors for the scene package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, scene.ErrCycle) {
//	    // refuse the drop in the UI
//	}
var (
	// ErrSceneNotFound is returned when a scene ID does not exist.
	ErrSceneNotFound = errors.New("scene: not found")

	// ErrNodeNotFound is returned when a node ID does not exist.
	ErrNodeNotFound = errors.New("scene: node not found")

	// ErrInvalidName is returned when a scene or folder name is empty or too long.
	ErrInvalidName = errors.New("scene: invalid name")

	// ErrLastScene is returned when removing the only scene without force.
	ErrLastScene = errors.New("scene: cannot remove the last scene")

	// ErrCycle is returned when adding a nested scene would make a scene
	// contain itself.
	ErrCycle = errors.New("scene: nesting would create a cycle")

	// ErrInvalidOrder is returned when a new order is not a permutation of
	// the current children.
	ErrInvalidOrder = errors.New("scene: invalid node order")

	// ErrForeignScene is returned when nodes of different scenes are mixed
	// in one operation.
	ErrForeignScene = errors.New("scene: node belongs to another scene")

	// ErrInvalidParent is returned when a node would be placed inside its
	// own subtree or relative to itself.
	ErrInvalidParent = errors.New("scene: invalid parent")

	// ErrNotAFolder is returned when a folder ID refers to an item.
	ErrNotAFolder = errors.New("scene: node is not a folder")

	// ErrNotAnItem is returned when an item-only operation targets a folder.
	ErrNotAnItem = errors.New("scene: node is not an item")

	// ErrSourceInUse is returned when removing a source that nodes still
	// reference, without force.
	ErrSourceInUse = errors.New("scene: source is referenced by nodes")

	// ErrSceneSource is returned when a scene-type source is removed or
	// duplicated as if it were a regular source.
	ErrSceneSource = errors.New("scene: operation not allowed on a scene source")

	// ErrInvalidTransform is returned for non-finite transform values.
	ErrInvalidTransform = errors.New("scene: invalid transform")

	// ErrInvalidSnapshot is returned when an imported snapshot fails validation.
	ErrInvalidSnapshot = errors.New("scene: invalid snapshot")

	// ErrNoSnapshot is returned when the repository holds no saved snapshot.
	ErrNoSnapshot = errors.New("scene: no saved snapshot")
)
