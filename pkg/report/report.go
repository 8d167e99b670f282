// Package report orders, deduplicates and writes out the cities a
// route passed through.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/velotrace/gpx-cities/pkg/cities"
)

// Row is a resolved city together with the route index at which it was
// first encountered.
type Row struct {
	City cities.City
	Seq  int
}

// Aggregate sorts rows into route order and removes duplicates by
// (name, state) identity, keeping the first occurrence.
func Aggregate(rows []Row) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seq < sorted[j].Seq
	})
	seen := make(map[string]bool, len(sorted))
	out := sorted[:0]
	for _, r := range sorted {
		key := r.City.Name + "\t" + r.City.State
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// WriteCSV writes rows with a fixed header: name, state, latitude,
// longitude, route_index.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "state", "latitude", "longitude", "route_index"}); err != nil {
		return fmt.Errorf("error writing CSV header: %v", err)
	}
	for _, r := range rows {
		record := []string{
			r.City.Name,
			r.City.State,
			strconv.FormatFloat(r.City.Lat, 'f', 4, 64),
			strconv.FormatFloat(r.City.Lon, 'f', 4, 64),
			strconv.Itoa(r.Seq),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing CSV record for %s: %v", r.City.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes a numbered, human-readable city list in route order.
func WriteText(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	for i, r := range rows {
		if r.City.State != "" {
			fmt.Fprintf(bw, "%2d. %s, %s\n", i+1, r.City.Name, r.City.State)
		} else {
			fmt.Fprintf(bw, "%2d. %s\n", i+1, r.City.Name)
		}
	}
	return bw.Flush()
}
