// Package sample reduces a full track to a small representative subset
// of points, preserving geographic spread and coverage along the route.
package sample

import (
	"sort"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/velotrace/gpx-cities/pkg/geo"
	"github.com/velotrace/gpx-cities/pkg/track"
)

// DefaultMaxPoints is the default sample budget.
const DefaultMaxPoints = 100

// gridPrecision is the geohash length used for coverage cells. Three
// characters gives cells of roughly 156 x 156 km, coarse enough that a
// multi-week tour occupies a manageable number of cells.
const gridPrecision = 3

// Select picks at most n points from the route. The first and last
// points are always included, every occupied geohash cell gets a sample
// while the budget allows, and remaining slots are filled greedily with
// the point farthest from everything already chosen. The result is in
// route order and is deterministic for identical input.
func Select(points []track.Point, n int) []track.Point {
	if n <= 0 {
		n = DefaultMaxPoints
	}
	if len(points) <= n {
		out := make([]track.Point, len(points))
		copy(out, points)
		return out
	}

	chosen := make(map[int]bool, n)
	coveredCell := make(map[string]bool)
	pick := func(i int) {
		chosen[i] = true
		coveredCell[cellOf(points[i])] = true
	}
	pick(0)
	pick(len(points) - 1)

	// One sample per occupied grid cell, cells visited in route order.
	seen := make(map[string]bool)
	for i, p := range points {
		if len(chosen) >= n {
			break
		}
		cell := cellOf(p)
		if seen[cell] {
			continue
		}
		seen[cell] = true
		if !coveredCell[cell] {
			pick(i)
		}
	}

	// Farthest-point greedy fill: repeatedly take the point with the
	// greatest minimum distance to the points selected so far. Ties go
	// to the earliest point on the route.
	for len(chosen) < n {
		best := -1
		bestDist := -1.0
		for i, p := range points {
			if chosen[i] {
				continue
			}
			d := minDistanceTo(p, points, chosen)
			if d > bestDist {
				bestDist = d
				best = i
			}
		}
		if best < 0 {
			break
		}
		pick(best)
	}

	indices := make([]int, 0, len(chosen))
	for i := range chosen {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	out := make([]track.Point, len(indices))
	for i, idx := range indices {
		out[i] = points[idx]
	}
	return out
}

func cellOf(p track.Point) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lon, gridPrecision)
}

func minDistanceTo(p track.Point, points []track.Point, chosen map[int]bool) float64 {
	min := -1.0
	for i := range chosen {
		d := geo.DistanceKm(p.Lat, p.Lon, points[i].Lat, points[i].Lon)
		if min < 0 || d < min {
			min = d
		}
	}
	return min
}
