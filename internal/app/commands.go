package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/nwrenn/castdeck/internal/command"
	"github.com/nwrenn/castdeck/internal/history"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

// Command dispatches one device command over the active connection.
func (c *Controller) Command(ctx context.Context, cmd command.Command) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}

	target := conn.Target()
	detail := string(cmd.Name)
	if cmd.Arg != "" {
		detail = fmt.Sprintf("%s %s", cmd.Name, cmd.Arg)
	}

	err = command.Dispatch(ctx, conn, cmd)
	c.record(ctx, history.KindCommand, address(target.Host, target.Port), detail, err)
	return err
}

// ActivateFavorite launches the app at the given position in a saved
// device's favourites list. The launch goes over the active connection when
// it is for that device, otherwise a one-off connection is made with the
// saved auth token.
func (c *Controller) ActivateFavorite(ctx context.Context, host string, port, index int) error {
	favs, err := c.registry.Favorites(host, port)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(favs) {
		return fmt.Errorf("%w: index %d of %d favourites", ErrFavoriteOutOfRange, index, len(favs))
	}
	appName := favs[index]

	conn, err := c.connectionFor(ctx, host, port)
	if err != nil {
		return err
	}

	err = conn.LaunchApp(ctx, appName)
	c.record(ctx, history.KindCommand, address(host, port),
		fmt.Sprintf("launch favourite %q", appName), err)
	return err
}

// connectionFor returns the active connection when it matches host and
// port, or dials the saved device directly.
func (c *Controller) connectionFor(ctx context.Context, host string, port int) (smartcast.Controller, error) {
	c.mu.Lock()
	active := c.conn
	c.mu.Unlock()

	if active != nil {
		t := active.Target()
		if strings.EqualFold(t.Host, host) && t.Port == port {
			return active, nil
		}
	}

	rec, err := c.registry.Get(host, port)
	if err != nil {
		return nil, err
	}
	return c.dialer.Dial(ctx, targetFor(rec))
}
