// Package citycache persists resolved coordinate-to-city results across
// runs, keyed by rounded coordinate, so the geocoding service is never
// asked the same question twice.
package citycache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Coordinates are rounded to this many decimal places to form cache
// keys. Four places is roughly 11 m, fine enough that distinct cluster
// representatives never collide, coarse enough to survive GPS jitter
// between runs. Lookup and store must agree, so the rounding lives in
// one place: Key.
const keyPrecision = 4

// Entry is a cached resolution result. Found false is an explicit
// negative: the service was asked and had no city for this coordinate.
type Entry struct {
	Found bool    `json:"found"`
	Name  string  `json:"name,omitempty"`
	State string  `json:"state,omitempty"`
	Lat   float64 `json:"lat,omitempty"`
	Lon   float64 `json:"lon,omitempty"`
}

// Cache is an in-memory map of rounded coordinates to entries, loaded
// from and saved to a JSON file. Entries are never invalidated.
type Cache struct {
	path    string
	entries map[string]Entry
}

// Key returns the cache key for a coordinate.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.*f,%.*f", keyPrecision, lat, keyPrecision, lon)
}

// Load reads the cache file at path. A missing file yields an empty
// cache; an unreadable or corrupt file is logged and likewise yields an
// empty cache rather than aborting the run.
func Load(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]Entry)}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Error reading cache file %s, starting empty: %v", path, err)
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.Printf("Cache file %s is corrupt, starting empty: %v", path, err)
		c.entries = make(map[string]Entry)
		return c
	}
	log.Printf("Loaded %d cached results from %s", len(c.entries), path)
	return c
}

func (c *Cache) Lookup(lat, lon float64) (Entry, bool) {
	e, ok := c.entries[Key(lat, lon)]
	return e, ok
}

func (c *Cache) Store(lat, lon float64, e Entry) {
	c.entries[Key(lat, lon)] = e
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Save writes the cache to its file via a temporary file and rename, so
// an interrupted run never leaves a truncated cache behind.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling cache: %v", err)
	}
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".citycache-*")
	if err != nil {
		return fmt.Errorf("error creating temporary cache file in %s: %v", dir, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("error writing %s: %v", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error closing %s: %v", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error replacing cache file %s: %v", c.path, err)
	}
	return nil
}
