// Package cluster groups nearby sampled points so that one lookup per
// group can stand in for all of its members.
package cluster

import (
	"github.com/velotrace/gpx-cities/pkg/geo"
	"github.com/velotrace/gpx-cities/pkg/track"
)

// DefaultThresholdKm is the default merge distance.
const DefaultThresholdKm = 15.0

// Cluster is a group of nearby points. Rep is the first member in
// route order; a result found for Rep is applied to every member. This
// is a heuristic and may misattribute cities at cluster boundaries.
type Cluster struct {
	Rep     track.Point
	Members []track.Point
}

// Group partitions points, processed in route order, into clusters.
// Each point joins the first cluster whose representative is within
// thresholdKm, otherwise it starts a new cluster.
func Group(points []track.Point, thresholdKm float64) []Cluster {
	if thresholdKm <= 0 {
		thresholdKm = DefaultThresholdKm
	}
	var clusters []Cluster
	for _, p := range points {
		placed := false
		for i := range clusters {
			rep := clusters[i].Rep
			if geo.DistanceKm(p.Lat, p.Lon, rep.Lat, rep.Lon) <= thresholdKm {
				clusters[i].Members = append(clusters[i].Members, p)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, Cluster{Rep: p, Members: []track.Point{p}})
		}
	}
	return clusters
}
