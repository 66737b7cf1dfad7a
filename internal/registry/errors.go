package registry

import "errors"

// Domain errors for the registry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, registry.ErrNotFound) {
//	    // handle missing device
//	}
var (
	// ErrNotFound is returned when no record matches the host and port.
	ErrNotFound = errors.New("registry: device not found")

	// ErrInvalidRecord is returned when a record fails validation.
	ErrInvalidRecord = errors.New("registry: invalid device record")

	// ErrFavoritesFull is returned when adding to a full favourites list.
	ErrFavoritesFull = errors.New("registry: favourites list is full")

	// ErrDuplicateFavorite is returned when the app is already a favourite.
	ErrDuplicateFavorite = errors.New("registry: app already in favourites")

	// ErrEmptyFavorite is returned when the favourite name is blank.
	ErrEmptyFavorite = errors.New("registry: favourite name is empty")

	// ErrFavoriteNotFound is returned when removing an app that is not a
	// favourite.
	ErrFavoriteNotFound = errors.New("registry: app not in favourites")
)
