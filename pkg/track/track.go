// Package track loads GPS track logs from GPX files into an ordered
// sequence of route points.
package track

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path"

	"github.com/twpayne/go-gpx"
)

// Point is a single recorded coordinate on the route. Seq is the
// point's position in route order across all input files.
type Point struct {
	Lat float64
	Lon float64
	Seq int
}

var ErrNoTracks = errors.New("no GPX tracks found")

// ReadTracks parses a single GPX stream and returns its track points
// in trk/trkseg/trkpt order. Points with out-of-range coordinates are
// skipped with a warning.
func ReadTracks(r io.Reader) ([]Point, error) {
	g, err := gpx.Read(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing GPX: %v", err)
	}
	var points []Point
	for _, trk := range g.Trk {
		for _, seg := range trk.TrkSeg {
			for _, p := range seg.TrkPt {
				if !validCoordinate(p.Lat, p.Lon) {
					log.Printf("Skipping malformed track point (%v, %v)", p.Lat, p.Lon)
					continue
				}
				points = append(points, Point{Lat: p.Lat, Lon: p.Lon})
			}
		}
	}
	return points, nil
}

// LoadDir reads every .gpx file in dir in lexicographic filename order
// and concatenates their points, assigning a global route-order Seq.
// It also returns the number of files loaded. A file that fails to
// parse is skipped with a warning; LoadDir fails only when no points
// could be loaded at all.
func LoadDir(dir string) ([]Point, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading directory %s: %v", dir, err)
	}
	var points []Point
	files := 0
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".gpx" {
			continue
		}
		filename := path.Join(dir, e.Name())
		filePoints, err := loadFile(filename)
		if err != nil {
			log.Printf("Skipping %s: %v", filename, err)
			continue
		}
		log.Printf("Loaded %d points from %s", len(filePoints), e.Name())
		points = append(points, filePoints...)
		files++
	}
	if len(points) == 0 {
		return nil, 0, fmt.Errorf("%w in %s", ErrNoTracks, dir)
	}
	for i := range points {
		points[i].Seq = i
	}
	return points, files, nil
}

func loadFile(filename string) ([]Point, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening %s for reading: %v", filename, err)
	}
	defer r.Close()
	points, err := ReadTracks(r)
	if err != nil {
		return nil, fmt.Errorf("error reading GPS track %s: %v", filename, err)
	}
	return points, nil
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
