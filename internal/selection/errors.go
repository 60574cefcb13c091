package selection

import "errors"

// Domain errors for the selection package.
var (
	// ErrForeignScene is returned when ids from another scene are added to or
	// removed from a selection, or one call mixes scenes.
	ErrForeignScene = errors.New("selection: node belongs to another scene")

	// ErrNodeNotFound is returned when a selected id does not exist.
	ErrNodeNotFound = errors.New("selection: node not found")

	// ErrInvalidQuery is returned when a SelectMatching expression does not
	// compile or does not yield a boolean.
	ErrInvalidQuery = errors.New("selection: invalid query")

	// ErrEmpty is returned by operations that need at least one selected node.
	ErrEmpty = errors.New("selection: empty")
)
