// Package netcheck prevents futile network calls while the device is known
// offline and reclassifies ambiguous transport failures as offline.
package netcheck

import (
	"context"
	"errors"
	"fmt"

	"tagpay/internal/api"
)

// ErrOffline is returned instead of issuing a request while offline, and
// wraps transport failures where no server response was received.
var ErrOffline = errors.New("no internet connection")

// Status is the current connectivity signal.
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
)

// Probe reports current reachability. Unknown means "try the call anyway".
type Probe interface {
	Status() Status
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func() Status

func (f ProbeFunc) Status() Status { return f() }

// Static returns a probe pinned to a fixed status.
func Static(s Status) Probe {
	return ProbeFunc(func() Status { return s })
}

// Gate wraps an api.Doer with the offline policy. Notify fires exactly once
// per offline attempt so the user notice does not repeat per keystroke.
type Gate struct {
	next   api.Doer
	probe  Probe
	notify func()
}

// NewGate builds a Gate. probe and notify may be nil: a nil probe always
// reports unknown, a nil notify is a no-op.
func NewGate(next api.Doer, probe Probe, notify func()) *Gate {
	if next == nil {
		panic("next doer is required")
	}
	if probe == nil {
		probe = Static(StatusUnknown)
	}
	if notify == nil {
		notify = func() {}
	}
	return &Gate{next: next, probe: probe, notify: notify}
}

// Get issues a gated GET.
func (g *Gate) Get(ctx context.Context, path string, out any) error {
	return g.guard(func() error { return g.next.Get(ctx, path, out) })
}

// Post issues a gated POST.
func (g *Gate) Post(ctx context.Context, path string, body, out any) error {
	return g.guard(func() error { return g.next.Post(ctx, path, body, out) })
}

func (g *Gate) guard(call func() error) error {
	if g.probe.Status() == StatusOffline {
		g.notify()
		return ErrOffline
	}

	err := call()
	if err == nil {
		return nil
	}
	// A server-produced error (any status, 401 included) passes through for
	// the caller to interpret. Anything else means no response arrived:
	// reclassify as offline after the fact.
	if api.IsServerError(err) {
		return err
	}
	g.notify()
	return fmt.Errorf("%w: %v", ErrOffline, err)
}
