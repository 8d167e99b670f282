package geocode

import (
	"time"

	. "gopkg.in/check.v1"
)

type ResolverSuite struct{}

var _ = Suite(&ResolverSuite{})

// scriptedGeocoder returns canned results in sequence.
type scriptedGeocoder struct {
	calls   int
	results []func() (*Place, error)
}

func (g *scriptedGeocoder) Reverse(lat, lon float64) (*Place, error) {
	i := g.calls
	g.calls++
	if i >= len(g.results) {
		i = len(g.results) - 1
	}
	return g.results[i]()
}

func ok(name string) func() (*Place, error) {
	return func() (*Place, error) { return &Place{Name: name}, nil }
}

func fail(err error) func() (*Place, error) {
	return func() (*Place, error) { return nil, err }
}

// testResolver builds a resolver with a fake clock that advances one
// millisecond per reading and a sleep that records requested durations.
func testResolver(g ReverseGeocoder, slept *[]time.Duration, opt ...ResolverOption) *Resolver {
	now := time.Unix(1700000000, 0)
	base := []ResolverOption{
		WithBackoff(time.Second),
		WithMinInterval(time.Second),
		WithSleep(func(d time.Duration) { *slept = append(*slept, d) }),
		WithClock(func() time.Time {
			now = now.Add(time.Millisecond)
			return now
		}),
	}
	return NewResolver(g, append(base, opt...)...)
}

func (s *ResolverSuite) TestResolveFirstTry(c *C) {
	var slept []time.Duration
	g := &scriptedGeocoder{results: []func() (*Place, error){ok("Tulsa")}}
	r := testResolver(g, &slept)

	place, err := r.Resolve(36.15, -95.99)
	c.Assert(err, IsNil)
	c.Assert(place.Name, Equals, "Tulsa")
	c.Assert(g.calls, Equals, 1)
	c.Assert(slept, HasLen, 0)
}

func (s *ResolverSuite) TestResolveRetriesTransient(c *C) {
	var slept []time.Duration
	g := &scriptedGeocoder{results: []func() (*Place, error){
		fail(&ServerError{Status: "502 Bad Gateway"}),
		fail(&ServerError{Status: "503 Service Unavailable"}),
		ok("Amarillo"),
	}}
	r := testResolver(g, &slept)

	place, err := r.Resolve(35.22, -101.83)
	c.Assert(err, IsNil)
	c.Assert(place.Name, Equals, "Amarillo")
	c.Assert(g.calls, Equals, 3)
	// Backoff doubles: 1s then 2s, plus two throttle waits.
	c.Assert(contains(slept, time.Second), Equals, true)
	c.Assert(contains(slept, 2*time.Second), Equals, true)
}

func (s *ResolverSuite) TestResolveExhaustsRetries(c *C) {
	var slept []time.Duration
	g := &scriptedGeocoder{results: []func() (*Place, error){
		fail(&ServerError{Status: "500 Internal Server Error"}),
	}}
	r := testResolver(g, &slept)

	place, err := r.Resolve(35.0, -100.0)
	c.Assert(place, IsNil)
	c.Assert(err, FitsTypeOf, &ServerError{})
	c.Assert(g.calls, Equals, DefaultAttempts)
}

func (s *ResolverSuite) TestResolveRateLimitBacksOffHarder(c *C) {
	var slept []time.Duration
	g := &scriptedGeocoder{results: []func() (*Place, error){
		fail(&RateLimitError{}),
		ok("Gallup"),
	}}
	r := testResolver(g, &slept)

	_, err := r.Resolve(35.53, -108.74)
	c.Assert(err, IsNil)
	// Base backoff is 1s; the rate-limit response doubles it before
	// sleeping.
	c.Assert(contains(slept, 2*time.Second), Equals, true)
}

func (s *ResolverSuite) TestResolveNonTransientNotRetried(c *C) {
	var slept []time.Duration
	g := &scriptedGeocoder{results: []func() (*Place, error){
		fail(&unauthorizedError{}),
	}}
	r := testResolver(g, &slept)

	_, err := r.Resolve(35.0, -100.0)
	c.Assert(err, FitsTypeOf, &unauthorizedError{})
	c.Assert(g.calls, Equals, 1)
}

func (s *ResolverSuite) TestThrottleBetweenCalls(c *C) {
	var slept []time.Duration
	g := &scriptedGeocoder{results: []func() (*Place, error){ok("Taos")}}
	r := testResolver(g, &slept)

	_, err := r.Resolve(36.40, -105.57)
	c.Assert(err, IsNil)
	c.Assert(slept, HasLen, 0)

	// The fake clock advances 1ms per reading, far less than the 1s
	// minimum interval, so the second call must wait.
	_, err = r.Resolve(35.68, -105.93)
	c.Assert(err, IsNil)
	c.Assert(len(slept), Equals, 1)
	c.Assert(slept[0] > 900*time.Millisecond, Equals, true)
}

func (s *ResolverSuite) TestTimeoutIsTransient(c *C) {
	c.Assert(isTransient(&timeoutError{}), Equals, true)
}

type unauthorizedError struct{}

func (e *unauthorizedError) Error() string { return "unauthorized" }

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func contains(xs []time.Duration, d time.Duration) bool {
	for _, x := range xs {
		if x == d {
			return true
		}
	}
	return false
}
