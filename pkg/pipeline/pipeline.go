// Package pipeline wires the track loader, sampler, resolvers, cache
// and writers into a single batch run.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/velotrace/gpx-cities/pkg/cities"
	"github.com/velotrace/gpx-cities/pkg/citycache"
	"github.com/velotrace/gpx-cities/pkg/cluster"
	"github.com/velotrace/gpx-cities/pkg/geocode"
	"github.com/velotrace/gpx-cities/pkg/report"
	"github.com/velotrace/gpx-cities/pkg/sample"
	"github.com/velotrace/gpx-cities/pkg/track"
)

// Geocoder resolves a coordinate through the external service. A nil
// Place with nil error is a confirmed negative; an error means the
// lookup failed after retries.
type Geocoder interface {
	Resolve(lat, lon float64) (*geocode.Place, error)
}

type Config struct {
	GPXDir          string
	CSVPath         string
	TextPath        string
	MaxSamples      int
	ClusterRadiusKm float64
	// FlushEvery saves the cache after every N geocoding calls so an
	// interrupted run keeps most of its work. Zero disables.
	FlushEvery int
}

// Summary reports what a run did. Degraded outcomes (unresolved
// points) are counted here rather than failing the run.
type Summary struct {
	Files       int
	Points      int
	Sampled     int
	OfflineHits int
	CacheHits   int
	APICalls    int
	Unresolved  int
	Cities      int
}

func (s *Summary) Log() {
	log.Printf("Processed %d points from %d files (%d sampled)", s.Points, s.Files, s.Sampled)
	log.Printf("Resolved offline: %d, from cache: %d, API calls: %d, unresolved: %d",
		s.OfflineHits, s.CacheHits, s.APICalls, s.Unresolved)
	log.Printf("Found %d cities", s.Cities)
}

// Run executes the full pipeline: load tracks, sample, resolve offline,
// cluster the remainder, resolve online through the cache, aggregate
// and write the outputs. The cache is flushed incrementally; the caller
// remains responsible for the final save.
func Run(cfg Config, gaz *cities.Gazetteer, geocoder Geocoder, cache *citycache.Cache) (*Summary, error) {
	points, files, err := track.LoadDir(cfg.GPXDir)
	if err != nil {
		return nil, err
	}
	sampled := sample.Select(points, cfg.MaxSamples)

	var s Summary
	s.Files = files
	s.Points = len(points)
	s.Sampled = len(sampled)

	var rows []report.Row
	var pending []track.Point
	for _, p := range sampled {
		if city, ok := gaz.Nearest(p.Lat, p.Lon); ok {
			rows = append(rows, report.Row{City: city, Seq: p.Seq})
			s.OfflineHits++
		} else {
			pending = append(pending, p)
		}
	}

	for _, cl := range cluster.Group(pending, cfg.ClusterRadiusKm) {
		entry, hit := cache.Lookup(cl.Rep.Lat, cl.Rep.Lon)
		if hit {
			s.CacheHits++
		} else {
			entry = resolveOnline(cl.Rep, geocoder, &s)
			cache.Store(cl.Rep.Lat, cl.Rep.Lon, entry)
			if cfg.FlushEvery > 0 && s.APICalls%cfg.FlushEvery == 0 {
				if err := cache.Save(); err != nil {
					log.Printf("Error flushing cache: %v", err)
				}
			}
		}
		if !entry.Found {
			continue
		}
		// Every member of the cluster inherits the representative's
		// result, keeping its own route index.
		city := cities.City{Name: entry.Name, State: entry.State, Lat: entry.Lat, Lon: entry.Lon}
		for _, m := range cl.Members {
			rows = append(rows, report.Row{City: city, Seq: m.Seq})
		}
	}

	final := report.Aggregate(rows)
	s.Cities = len(final)

	if err := writeFile(cfg.CSVPath, final, report.WriteCSV); err != nil {
		return nil, err
	}
	if err := writeFile(cfg.TextPath, final, report.WriteText); err != nil {
		return nil, err
	}
	return &s, nil
}

func resolveOnline(rep track.Point, geocoder Geocoder, s *Summary) citycache.Entry {
	s.APICalls++
	place, err := geocoder.Resolve(rep.Lat, rep.Lon)
	if err != nil {
		log.Printf("Giving up on (%.4f, %.4f): %v", rep.Lat, rep.Lon, err)
		s.Unresolved++
		return citycache.Entry{}
	}
	if place == nil || !report.LikelyCity(place.Name) {
		return citycache.Entry{}
	}
	lat, lon := place.Lat, place.Lon
	if lat == 0 && lon == 0 {
		lat, lon = rep.Lat, rep.Lon
	}
	return citycache.Entry{Found: true, Name: place.Name, State: place.State, Lat: lat, Lon: lon}
}

func writeFile(path string, rows []report.Row, write func(w io.Writer, rows []report.Row) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %v", path, err)
	}
	if err := write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %v", path, err)
	}
	return nil
}
