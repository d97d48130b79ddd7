package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"mangrovewatch/backend/api"

	"github.com/apex/log"
)

// Locator wraps a Provider with the request semantics of Options: a fix no
// older than MaximumAge is served from cache, and a source that does not
// answer within Timeout fails with ReasonTimeout.
type Locator struct {
	src Provider
	now func() time.Time

	mu      sync.Mutex
	last    api.GPSCoordinates
	lastAt  time.Time
	hasLast bool
}

func NewLocator(src Provider) *Locator {
	return &Locator{src: src, now: time.Now}
}

type fix struct {
	coords api.GPSCoordinates
	err    error
}

func (l *Locator) CurrentPosition(ctx context.Context, opts Options) (api.GPSCoordinates, error) {
	if c, ok := l.cached(opts.MaximumAge); ok {
		log.Debug("Serving cached position")
		return c, nil
	}

	qctx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	// The source may ignore ctx; the buffered channel lets it finish late.
	done := make(chan fix, 1)
	go func() {
		c, err := l.src.CurrentPosition(qctx, opts)
		done <- fix{c, err}
	}()

	select {
	case f := <-done:
		if f.err != nil {
			return api.GPSCoordinates{}, l.classify(ctx, f.err)
		}
		if !Valid(f.coords) {
			return api.GPSCoordinates{}, &LocationError{Reason: ReasonPositionUnavailable}
		}
		l.remember(f.coords)
		return f.coords, nil
	case <-qctx.Done():
		return api.GPSCoordinates{}, l.classify(ctx, qctx.Err())
	}
}

// classify maps source and context failures onto location errors. Cancellation
// of the caller's own context is passed through untouched.
func (l *Locator) classify(parent context.Context, err error) error {
	var le *LocationError
	if errors.As(err, &le) {
		return err
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &LocationError{Reason: ReasonTimeout, Err: err}
	}
	return &LocationError{Reason: ReasonPositionUnavailable, Err: err}
}

func (l *Locator) cached(maxAge time.Duration) (api.GPSCoordinates, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.hasLast || maxAge <= 0 {
		return api.GPSCoordinates{}, false
	}
	if l.now().Sub(l.lastAt) > maxAge {
		return api.GPSCoordinates{}, false
	}
	return l.last, true
}

func (l *Locator) remember(c api.GPSCoordinates) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last, l.lastAt, l.hasLast = c, l.now(), true
}
