package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/velotrace/gpx-cities/pkg/cities"
	"github.com/velotrace/gpx-cities/pkg/citycache"
	"github.com/velotrace/gpx-cities/pkg/geocode"
	"github.com/velotrace/gpx-cities/pkg/pipeline"
)

func main() {
	log.SetFlags(0)
	app := &cli.App{
		Name:  "gpx-cities",
		Usage: "List the cities a GPX route passed through, in route order",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "gpx-dir",
				Aliases: []string{"g"},
				Usage:   "Directory containing .gpx track logs",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Geocoding cache file",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "CSV output file",
			},
			&cli.StringFlag{
				Name:  "txt",
				Usage: "Plain-text output file",
			},
			&cli.IntFlag{
				Name:    "max-samples",
				Aliases: []string{"n"},
				Usage:   "Maximum number of points to resolve",
			},
			&cli.Float64Flag{
				Name:  "match-radius",
				Usage: "Offline gazetteer match radius in kilometres",
			},
			&cli.Float64Flag{
				Name:  "cluster-radius",
				Usage: "Cluster merge distance in kilometres",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg := defaultConfig()
	if filename := c.String("config"); filename != "" {
		var err error
		if cfg, err = loadConfig(filename); err != nil {
			return err
		}
	}
	applyFlags(c, &cfg)
	applyEnv(&cfg)

	gaz, err := cities.New(cities.WithMatchRadius(cfg.MatchRadiusKm))
	if err != nil {
		return err
	}
	log.Printf("Loaded offline table of %d cities", gaz.Size())

	cache := citycache.Load(cfg.CacheFile)
	client := geocode.NewClient(
		geocode.WithBaseURL(cfg.GeocoderURL),
		geocode.WithUserAgent(cfg.UserAgent),
	)
	resolver := geocode.NewResolver(client)

	summary, err := pipeline.Run(pipeline.Config{
		GPXDir:          cfg.GPXDir,
		CSVPath:         cfg.CSVFile,
		TextPath:        cfg.TextFile,
		MaxSamples:      cfg.MaxSamples,
		ClusterRadiusKm: cfg.ClusterRadiusKm,
		FlushEvery:      cfg.FlushEvery,
	}, gaz, resolver, cache)
	if err != nil {
		return err
	}
	if err := cache.Save(); err != nil {
		log.Printf("Error saving cache: %v", err)
	}
	summary.Log()
	log.Printf("Results written to %s and %s", cfg.CSVFile, cfg.TextFile)
	return nil
}

func applyFlags(c *cli.Context, cfg *Config) {
	if c.IsSet("gpx-dir") {
		cfg.GPXDir = c.String("gpx-dir")
	}
	if c.IsSet("cache") {
		cfg.CacheFile = c.String("cache")
	}
	if c.IsSet("csv") {
		cfg.CSVFile = c.String("csv")
	}
	if c.IsSet("txt") {
		cfg.TextFile = c.String("txt")
	}
	if c.IsSet("max-samples") {
		cfg.MaxSamples = c.Int("max-samples")
	}
	if c.IsSet("match-radius") {
		cfg.MatchRadiusKm = c.Float64("match-radius")
	}
	if c.IsSet("cluster-radius") {
		cfg.ClusterRadiusKm = c.Float64("cluster-radius")
	}
}

// applyEnv overlays geocoder settings from the environment, optionally
// populated from a .env file. The public Nominatim instance requires an
// identifying user agent, which deployments usually keep out of config
// committed to source control.
func applyEnv(cfg *Config) {
	godotenv.Load()
	if v := os.Getenv("GEOCODER_URL"); v != "" {
		cfg.GeocoderURL = v
	}
	if v := os.Getenv("GEOCODER_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
}
