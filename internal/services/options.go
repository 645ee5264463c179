// Package services holds the remote-aware components: the catalog, which
// writes through to the backend with a local fallback, and the sync
// coordinator, which drains the queue of unconfirmed purchase writes.
package services

import (
	"time"

	"hissab/internal/log"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 10 * time.Second

// Options are shared by the services constructors. Zero values pick defaults.
type Options struct {
	// Timeout bounds every remote call (default: 10s)
	Timeout time.Duration
	// Now is the clock used for local timestamps (default: time.Now)
	Now    func() time.Time
	Logger *log.Logger
}

func (o Options) withDefaults(component string) Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.ForComponent(component)
	}
	return o
}
