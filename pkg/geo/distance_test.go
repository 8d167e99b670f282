package geo

import (
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type GeoSuite struct{}

var _ = Suite(&GeoSuite{})

func (s *GeoSuite) TestDistanceKm(c *C) {
	// Los Angeles to San Francisco is roughly 559 km.
	d := DistanceKm(34.0522, -118.2437, 37.7749, -122.4194)
	c.Assert(d > 540.0, Equals, true)
	c.Assert(d < 580.0, Equals, true)
}

func (s *GeoSuite) TestDistanceZero(c *C) {
	c.Assert(DistanceKm(35.0, -100.0, 35.0, -100.0), Equals, 0.0)
}

func (s *GeoSuite) TestDistanceSymmetric(c *C) {
	d1 := DistanceKm(36.1540, -95.9928, 35.4676, -97.5164)
	d2 := DistanceKm(35.4676, -97.5164, 36.1540, -95.9928)
	c.Assert(d1, Equals, d2)
}
