package scene

import (
	"fmt"
	"strings"
)

// Validation constants.
const (
	maxNameLength = 100
)

// ValidateName checks if a scene or folder name is valid.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// validateIDSet checks that ids are non-empty and distinct.
func validateIDSet(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty node id", ErrNodeNotFound)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidOrder, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
