// Package cities matches coordinates against a static gazetteer of
// known city locations, for zero-cost resolution without network calls.
package cities

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/dhconnelly/rtreego"

	"github.com/velotrace/gpx-cities/pkg/geo"
)

//go:embed us_cities.csv
var usCities []byte

// Degree extent of the bounding box around a city in the spatial index.
const cityRectSize = 0.01

// Distance (km) within which a coordinate is considered to be "at" a city.
const DefaultMatchRadiusKm = 5.0

// Candidates fetched from the index before the great-circle distance
// check. The tree is built in degree space, where nearest-by-degrees is
// not always nearest-by-kilometres, so we re-rank a handful.
const nearestCandidates = 8

// City is a gazetteer entry. Identity is the (Name, State) pair.
type City struct {
	Name  string
	State string
	Lat   float64
	Lon   float64
}

func (c *City) Bounds() *rtreego.Rect {
	return rtreego.Point{c.Lon, c.Lat}.ToRect(cityRectSize)
}

type Gazetteer struct {
	rt            *rtreego.Rtree
	matchRadiusKm float64
}

type Option func(*Gazetteer)

// WithMatchRadius overrides the maximum distance, in kilometres, at
// which a coordinate matches a gazetteer city.
func WithMatchRadius(km float64) Option {
	return func(g *Gazetteer) {
		g.matchRadiusKm = km
	}
}

// New builds a gazetteer from the embedded table of major US cities.
func New(opts ...Option) (*Gazetteer, error) {
	return NewFromCSV(bytes.NewReader(usCities), opts...)
}

// NewFromCSV builds a gazetteer from CSV records of the form
// name,state,latitude,longitude.
func NewFromCSV(r io.Reader, opts ...Option) (*Gazetteer, error) {
	g := &Gazetteer{matchRadiusKm: DefaultMatchRadiusKm}
	for _, f := range opts {
		f(g)
	}
	var objs []rtreego.Spatial
	s := NewScanner(r)
	for s.Scan() {
		objs = append(objs, s.City())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("error parsing city table: %v", err)
	}
	if len(objs) == 0 {
		return nil, fmt.Errorf("city table is empty")
	}
	g.rt = rtreego.NewTree(2, 25, 50, objs...)
	return g, nil
}

// Size returns the number of cities in the gazetteer.
func (g *Gazetteer) Size() int {
	return g.rt.Size()
}

// Nearest returns the closest gazetteer city within the match radius.
// It is a pure lookup: no I/O, and deterministic for a fixed table.
func (g *Gazetteer) Nearest(lat, lon float64) (City, bool) {
	var best *City
	bestDist := 0.0
	for _, obj := range g.rt.NearestNeighbors(nearestCandidates, rtreego.Point{lon, lat}) {
		city, ok := obj.(*City)
		if !ok || city == nil {
			continue
		}
		d := geo.DistanceKm(lat, lon, city.Lat, city.Lon)
		if best == nil || d < bestDist {
			best = city
			bestDist = d
		}
	}
	if best == nil || bestDist > g.matchRadiusKm {
		return City{}, false
	}
	return *best, true
}
