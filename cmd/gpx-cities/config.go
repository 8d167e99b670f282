package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/velotrace/gpx-cities/pkg/cities"
	"github.com/velotrace/gpx-cities/pkg/cluster"
	"github.com/velotrace/gpx-cities/pkg/geocode"
	"github.com/velotrace/gpx-cities/pkg/sample"
)

type Config struct {
	GPXDir          string  `yaml:"gpxDir"`
	CacheFile       string  `yaml:"cacheFile"`
	CSVFile         string  `yaml:"csvFile"`
	TextFile        string  `yaml:"textFile"`
	MaxSamples      int     `yaml:"maxSamples"`
	MatchRadiusKm   float64 `yaml:"matchRadiusKm"`
	ClusterRadiusKm float64 `yaml:"clusterRadiusKm"`
	FlushEvery      int     `yaml:"flushEvery"`
	GeocoderURL     string  `yaml:"geocoderUrl"`
	UserAgent       string  `yaml:"userAgent"`
}

func defaultConfig() Config {
	return Config{
		GPXDir:          "gpx",
		CacheFile:       "city_cache.json",
		CSVFile:         "cities.csv",
		TextFile:        "cities.txt",
		MaxSamples:      sample.DefaultMaxPoints,
		MatchRadiusKm:   cities.DefaultMatchRadiusKm,
		ClusterRadiusKm: cluster.DefaultThresholdKm,
		FlushEvery:      5,
		GeocoderURL:     geocode.DefaultBaseURL,
		UserAgent:       geocode.DefaultUserAgent,
	}
}

// loadConfig reads a YAML config file over the defaults.
func loadConfig(filename string) (Config, error) {
	config := defaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("error reading config file %s: %v", filename, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("error parsing config file %s: %v", filename, err)
	}
	return config, nil
}
