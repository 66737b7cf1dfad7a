package registry

import (
	"errors"
	"fmt"
	"testing"
)

func setupDeviceWithFavorites(t *testing.T, favs ...string) *Registry {
	t.Helper()
	reg, _ := newTestRegistry(t)
	rec := testRecord("TV", "192.168.1.80", 7345)
	rec.Favorites = favs
	if _, err := reg.Upsert(rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return reg
}

func TestAddFavorite_PreservesOrder(t *testing.T) {
	reg := setupDeviceWithFavorites(t)

	for _, app := range []string{"Netflix", "YouTube", "Plex"} {
		if err := reg.AddFavorite("192.168.1.80", 7345, app); err != nil {
			t.Fatalf("AddFavorite(%q) error = %v", app, err)
		}
	}

	favs, err := reg.Favorites("192.168.1.80", 7345)
	if err != nil {
		t.Fatalf("Favorites() error = %v", err)
	}
	want := []string{"Netflix", "YouTube", "Plex"}
	if len(favs) != len(want) {
		t.Fatalf("Favorites() = %v, want %v", favs, want)
	}
	for i := range want {
		if favs[i] != want[i] {
			t.Errorf("favs[%d] = %q, want %q", i, favs[i], want[i])
		}
	}
}

func TestAddFavorite_RejectsDuplicate(t *testing.T) {
	reg := setupDeviceWithFavorites(t, "Netflix")

	err := reg.AddFavorite("192.168.1.80", 7345, "netflix")
	if !errors.Is(err, ErrDuplicateFavorite) {
		t.Errorf("AddFavorite() error = %v, want ErrDuplicateFavorite", err)
	}
}

func TestAddFavorite_RejectsBlank(t *testing.T) {
	reg := setupDeviceWithFavorites(t)

	err := reg.AddFavorite("192.168.1.80", 7345, "   ")
	if !errors.Is(err, ErrEmptyFavorite) {
		t.Errorf("AddFavorite() error = %v, want ErrEmptyFavorite", err)
	}
}

func TestAddFavorite_RejectsWhenFull(t *testing.T) {
	reg := setupDeviceWithFavorites(t)

	for i := 0; i < MaxFavorites; i++ {
		app := fmt.Sprintf("App %d", i)
		if err := reg.AddFavorite("192.168.1.80", 7345, app); err != nil {
			t.Fatalf("AddFavorite(%q) error = %v", app, err)
		}
	}

	err := reg.AddFavorite("192.168.1.80", 7345, "One Too Many")
	if !errors.Is(err, ErrFavoritesFull) {
		t.Errorf("AddFavorite() error = %v, want ErrFavoritesFull", err)
	}

	favs, _ := reg.Favorites("192.168.1.80", 7345)
	if len(favs) != MaxFavorites {
		t.Errorf("favourites length = %d after rejected add, want %d", len(favs), MaxFavorites)
	}
}

func TestRemoveFavorite(t *testing.T) {
	reg := setupDeviceWithFavorites(t, "Netflix", "YouTube", "Plex")

	if err := reg.RemoveFavorite("192.168.1.80", 7345, "YouTube"); err != nil {
		t.Fatalf("RemoveFavorite() error = %v", err)
	}

	favs, _ := reg.Favorites("192.168.1.80", 7345)
	if len(favs) != 2 || favs[0] != "Netflix" || favs[1] != "Plex" {
		t.Errorf("Favorites() = %v, want [Netflix Plex]", favs)
	}

	err := reg.RemoveFavorite("192.168.1.80", 7345, "YouTube")
	if !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("RemoveFavorite() missing app error = %v, want ErrFavoriteNotFound", err)
	}
}

func TestFavorites_UnknownDevice(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if _, err := reg.Favorites("10.0.0.1", 7345); !errors.Is(err, ErrNotFound) {
		t.Errorf("Favorites() error = %v, want ErrNotFound", err)
	}
	if err := reg.AddFavorite("10.0.0.1", 7345, "Netflix"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddFavorite() error = %v, want ErrNotFound", err)
	}
}
