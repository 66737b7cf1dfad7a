package app

import (
	"context"

	"github.com/nwrenn/castdeck/internal/history"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

// PairStart begins a pairing exchange with the connected device. The device
// shows a PIN on screen; the exchange stays open until PairFinish or
// PairCancel.
func (c *Controller) PairStart(ctx context.Context) (*smartcast.PairChallenge, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.pairing != nil || c.pairStarting {
		c.mu.Unlock()
		return nil, ErrPairingInFlight
	}
	c.pairStarting = true
	c.mu.Unlock()

	target := conn.Target()
	ch, err := conn.StartPair(ctx)
	c.record(ctx, history.KindPairing, address(target.Host, target.Port), "pairing started", err)

	c.mu.Lock()
	c.pairStarting = false
	if err == nil {
		c.pairing = ch
	}
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.logger.Info("pairing started", "address", address(target.Host, target.Port))
	return ch, nil
}

// PairFinish completes the open pairing exchange with the on-screen PIN.
// On success the connection is re-established with the new auth token and,
// if the device is saved, its registry record is updated to match.
func (c *Controller) PairFinish(ctx context.Context, pin string) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}

	c.mu.Lock()
	ch := c.pairing
	c.mu.Unlock()
	if ch == nil {
		return ErrNoPairingInFlight
	}

	target := conn.Target()
	token, err := conn.FinishPair(ctx, ch, pin)
	c.record(ctx, history.KindPairing, address(target.Host, target.Port), "pairing finished", err)
	if err != nil {
		return err
	}

	// Swap in a connection that carries the token.
	target.AuthToken = token
	authed, err := c.dialer.Dial(ctx, target)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = authed
	c.pairing = nil
	c.mu.Unlock()

	// A saved device keeps its new token across restarts.
	if rec, err := c.registry.Get(target.Host, target.Port); err == nil {
		rec.AuthToken = token
		if _, err := c.registry.Upsert(rec); err != nil {
			c.logger.Warn("persisting auth token failed", "error", err)
		}
	}

	c.logger.Info("pairing complete", "address", address(target.Host, target.Port))
	return nil
}

// PairCancel abandons the open pairing exchange.
func (c *Controller) PairCancel(ctx context.Context) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}

	c.mu.Lock()
	ch := c.pairing
	c.pairing = nil
	c.mu.Unlock()
	if ch == nil {
		return ErrNoPairingInFlight
	}

	target := conn.Target()
	err = conn.CancelPair(ctx, ch)
	c.record(ctx, history.KindPairing, address(target.Host, target.Port), "pairing cancelled", err)
	return err
}
