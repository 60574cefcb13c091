package studio

import "errors"

var (
	// ErrNoRepository is returned by Save and Load when the studio was
	// created without a repository.
	ErrNoRepository = errors.New("studio: no repository configured")
)
