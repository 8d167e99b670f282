package citycache

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type CacheSuite struct{}

var _ = Suite(&CacheSuite{})

func (s *CacheSuite) TestKeyDeterministic(c *C) {
	c.Assert(Key(37.2090, -93.2923), Equals, Key(37.2090, -93.2923))
	c.Assert(Key(37.2090, -93.2923), Equals, "37.2090,-93.2923")
	// Sub-precision jitter maps to the same key.
	c.Assert(Key(37.20901, -93.29231), Equals, Key(37.20904, -93.29233))
}

func (s *CacheSuite) TestRoundTrip(c *C) {
	cache := Load(filepath.Join(c.MkDir(), "cache.json"))

	positive := Entry{Found: true, Name: "Tulsa", State: "OK", Lat: 36.1540, Lon: -95.9928}
	cache.Store(36.1540, -95.9928, positive)
	got, ok := cache.Lookup(36.1540, -95.9928)
	c.Assert(ok, Equals, true)
	c.Assert(got, DeepEquals, positive)

	// Explicit negative results round-trip too.
	cache.Store(36.7, -94.7, Entry{})
	got, ok = cache.Lookup(36.7, -94.7)
	c.Assert(ok, Equals, true)
	c.Assert(got.Found, Equals, false)

	_, ok = cache.Lookup(40.0, -80.0)
	c.Assert(ok, Equals, false)
}

func (s *CacheSuite) TestSaveAndReload(c *C) {
	path := filepath.Join(c.MkDir(), "cache.json")
	cache := Load(path)
	cache.Store(35.0844, -106.6504, Entry{Found: true, Name: "Albuquerque", State: "NM", Lat: 35.0844, Lon: -106.6504})
	cache.Store(36.7, -94.7, Entry{})
	c.Assert(cache.Save(), IsNil)

	reloaded := Load(path)
	c.Assert(reloaded.Len(), Equals, 2)
	got, ok := reloaded.Lookup(35.0844, -106.6504)
	c.Assert(ok, Equals, true)
	c.Assert(got.Name, Equals, "Albuquerque")
	neg, ok := reloaded.Lookup(36.7, -94.7)
	c.Assert(ok, Equals, true)
	c.Assert(neg.Found, Equals, false)
}

func (s *CacheSuite) TestLoadMissingFile(c *C) {
	cache := Load(filepath.Join(c.MkDir(), "does-not-exist.json"))
	c.Assert(cache.Len(), Equals, 0)
}

func (s *CacheSuite) TestLoadCorruptFile(c *C) {
	path := filepath.Join(c.MkDir(), "cache.json")
	c.Assert(os.WriteFile(path, []byte("{ not json"), 0644), IsNil)
	cache := Load(path)
	c.Assert(cache.Len(), Equals, 0)
	// A corrupt cache must still be usable and saveable.
	cache.Store(35.0, -100.0, Entry{})
	c.Assert(cache.Save(), IsNil)
}

func (s *CacheSuite) TestSaveLeavesNoTempFiles(c *C) {
	dir := c.MkDir()
	cache := Load(filepath.Join(dir, "cache.json"))
	cache.Store(35.0, -100.0, Entry{Found: true, Name: "Somewhere"})
	c.Assert(cache.Save(), IsNil)
	entries, err := os.ReadDir(dir)
	c.Assert(err, IsNil)
	c.Assert(entries, HasLen, 1)
	c.Assert(entries[0].Name(), Equals, "cache.json")
}
