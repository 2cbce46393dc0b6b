package parking

import (
	"context"
	"errors"
	"time"

	"github.com/peekpark/peekpark/domain"
)

// DefaultLocationTimeout bounds how long ResolveLocation waits for a fix
const DefaultLocationTimeout = 15 * time.Second

// DefaultLocation is central Dubai
var DefaultLocation = domain.Location{Latitude: 25.2048, Longitude: 55.2708}

// ErrNoLocator is returned by a nil locator
var ErrNoLocator = errors.New("no location provider configured")

// Locator obtains the current position
type Locator interface {
	Locate(ctx context.Context) (domain.Location, error)
}

// LocatorFunc adapts a function to Locator
type LocatorFunc func(ctx context.Context) (domain.Location, error)

func (f LocatorFunc) Locate(ctx context.Context) (domain.Location, error) { return f(ctx) }

// StaticLocator always reports the same position
type StaticLocator domain.Location

func (s StaticLocator) Locate(context.Context) (domain.Location, error) {
	return domain.Location(s), nil
}

// Resolution is the outcome of ResolveLocation
type Resolution struct {
	Location domain.Location `json:"location"`
	Fallback bool            `json:"fallback"`
	Status   string          `json:"status,omitempty"`
}

// ResolveLocation races locator against timeout. On timeout or error the default
// location is returned with a status message.
func ResolveLocation(ctx context.Context, locator Locator, timeout time.Duration) Resolution {
	if locator == nil {
		return fallback("Location unavailable. Showing default location.")
	}
	if timeout <= 0 {
		timeout = DefaultLocationTimeout
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		loc domain.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := locator.Locate(ctx)
		done <- result{loc, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return fallback("Error getting location. Showing default location.")
		}
		return Resolution{Location: r.loc}
	case <-timer.C:
		return fallback("Location request timed out. Showing default location.")
	case <-ctx.Done():
		return fallback("Location request cancelled. Showing default location.")
	}
}

func fallback(status string) Resolution {
	return Resolution{Location: DefaultLocation, Fallback: true, Status: status}
}
