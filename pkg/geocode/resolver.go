package geocode

import (
	"errors"
	"log"
	"net"
	"time"
)

const (
	DefaultAttempts    = 3
	DefaultBackoff     = 2 * time.Second
	DefaultMinInterval = 1100 * time.Millisecond
)

// ReverseGeocoder is the piece of Client the resolver needs.
type ReverseGeocoder interface {
	Reverse(lat, lon float64) (*Place, error)
}

// Resolver wraps a ReverseGeocoder with a minimum delay between calls
// and bounded retry with exponential backoff on transient failures.
// Sleeping and the clock are injectable so tests run without real
// delays.
type Resolver struct {
	client      ReverseGeocoder
	attempts    int
	backoff     time.Duration
	minInterval time.Duration
	sleep       func(time.Duration)
	now         func() time.Time
	lastCall    time.Time
}

type ResolverOption func(*Resolver)

func WithAttempts(n int) ResolverOption {
	return func(r *Resolver) {
		r.attempts = n
	}
}

func WithBackoff(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.backoff = d
	}
}

func WithMinInterval(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.minInterval = d
	}
}

func WithSleep(f func(time.Duration)) ResolverOption {
	return func(r *Resolver) {
		r.sleep = f
	}
}

func WithClock(f func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = f
	}
}

func NewResolver(client ReverseGeocoder, opt ...ResolverOption) *Resolver {
	r := &Resolver{
		client:      client,
		attempts:    DefaultAttempts,
		backoff:     DefaultBackoff,
		minInterval: DefaultMinInterval,
		sleep:       time.Sleep,
		now:         time.Now,
	}
	for _, f := range opt {
		f(r)
	}
	return r
}

// Resolve looks up a coordinate, retrying transient failures up to the
// attempt limit. A nil Place with nil error is a confirmed negative.
// When retries are exhausted the last error is returned; the caller
// records the point as unresolved rather than aborting the run.
func (r *Resolver) Resolve(lat, lon float64) (*Place, error) {
	var lastErr error
	delay := r.backoff
	for attempt := 1; attempt <= r.attempts; attempt++ {
		r.throttle()
		place, err := r.client.Reverse(lat, lon)
		if err == nil {
			return place, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
		var rateLimited *RateLimitError
		if errors.As(err, &rateLimited) {
			// Quota rejections get an extra-long pause.
			delay *= 2
		}
		if attempt < r.attempts {
			log.Printf("Transient error geocoding (%.4f, %.4f), retrying in %s: %v", lat, lon, delay, err)
			r.sleep(delay)
			delay *= 2
		}
	}
	return nil, lastErr
}

// throttle enforces the minimum interval between consecutive calls to
// the external service.
func (r *Resolver) throttle() {
	if !r.lastCall.IsZero() {
		if wait := r.minInterval - r.now().Sub(r.lastCall); wait > 0 {
			r.sleep(wait)
		}
	}
	r.lastCall = r.now()
}

func isTransient(err error) bool {
	var rateLimited *RateLimitError
	if errors.As(err, &rateLimited) {
		return true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
