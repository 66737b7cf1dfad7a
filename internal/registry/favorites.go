package registry

import (
	"fmt"
	"strings"
)

// Favorites returns the favourites list for the device at host and port.
func (r *Registry) Favorites(host string, port int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec := r.findLocked(host, port)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, deviceKey(host, port))
	}
	out := make([]string, len(rec.Favorites))
	copy(out, rec.Favorites)
	return out, nil
}

// AddFavorite appends an app to the device's favourites list. Blank names,
// duplicates and additions beyond MaxFavorites are rejected; comparison is
// case-insensitive so "netflix" and "Netflix" count as the same app.
func (r *Registry) AddFavorite(host string, port int, app string) error {
	app = strings.TrimSpace(app)
	if app == "" {
		return ErrEmptyFavorite
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.findLocked(host, port)
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, deviceKey(host, port))
	}
	for _, existing := range rec.Favorites {
		if strings.EqualFold(existing, app) {
			return fmt.Errorf("%w: %q", ErrDuplicateFavorite, app)
		}
	}
	if len(rec.Favorites) >= MaxFavorites {
		return fmt.Errorf("%w: limit is %d", ErrFavoritesFull, MaxFavorites)
	}

	rec.Favorites = append(rec.Favorites, app)
	if err := r.persistLocked(); err != nil {
		return err
	}

	r.logger.Info("favourite added", "address", deviceKey(host, port), "app", app)
	return nil
}

// RemoveFavorite deletes an app from the device's favourites list,
// preserving the order of the remaining entries.
func (r *Registry) RemoveFavorite(host string, port int, app string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.findLocked(host, port)
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, deviceKey(host, port))
	}
	for i, existing := range rec.Favorites {
		if strings.EqualFold(existing, app) {
			rec.Favorites = append(rec.Favorites[:i], rec.Favorites[i+1:]...)
			if err := r.persistLocked(); err != nil {
				return err
			}
			r.logger.Info("favourite removed", "address", deviceKey(host, port), "app", app)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrFavoriteNotFound, app)
}
