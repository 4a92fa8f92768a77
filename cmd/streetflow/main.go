package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/slog"

	lib "github.com/theoremus-urban-solutions/streetflow"
	"github.com/theoremus-urban-solutions/streetflow/config"
	"github.com/theoremus-urban-solutions/streetflow/importer"
	"github.com/theoremus-urban-solutions/streetflow/internal"
	"github.com/theoremus-urban-solutions/streetflow/store"
)

func main() {
	mode := flag.String("mode", "serve", "serve|oneshot")
	configPath := flag.String("config", "", "path to config.yml (default: search working directory)")
	osmPath := flag.String("osm", "", "OSM XML extract whose highways are loaded into the store")
	vehiclePositions := flag.String("vehiclePositions", "", "GTFS-RT VehiclePositions URL or file (overrides config)")
	flag.Parse()

	missingConfig, err := loadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	cfg := config.Config
	if *vehiclePositions != "" {
		cfg.Transit.VehiclePositionsURL = *vehiclePositions
	}

	internal.InitLogging(cfg.Log.Level)
	if missingConfig {
		slog.Warn("config.yml not found, using defaults")
	}

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		panic(err)
	}
	if *osmPath != "" {
		if err := loadOSM(st, *osmPath, cfg.Defaults); err != nil {
			panic(err)
		}
	}

	engine, err := lib.NewEngine(cfg, st)
	if err != nil {
		panic(err)
	}

	switch *mode {
	case "serve":
		srv := lib.NewServer(cfg, engine, importer.NewGeocoder(cfg.Geocoder))
		srv.Start()
		srv.HandleGracefulShutdown()
	case "oneshot":
		report := engine.Simulate(context.Background(), cfg.Transit.VehiclePositionsURL)
		buf, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			panic(err)
		}
		fmt.Println(string(buf))
	default:
		panic("unknown mode")
	}
}

// loadConfig reads an explicit config file, or searches the working directory.
// A missing config.yml during the search is not an error.
func loadConfig(path string) (missing bool, err error) {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return false, err
		}
		config.Config = cfg
		return false, nil
	}
	if err := config.LoadAppConfig(); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func loadOSM(st *store.Store, path string, defaults config.StreetDefaults) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open OSM extract: %w", err)
	}
	defer func() { _ = f.Close() }()

	streets, err := importer.ReadOSM(context.Background(), f, importer.OptionsFrom(importer.Options{}, defaults))
	if err != nil {
		return err
	}
	for _, s := range streets {
		if _, err := st.PutStreet(s); err != nil {
			slog.Warn("skipping OSM way", "street", s.ID, "error", err)
		}
	}
	slog.Info("loaded OSM streets", "path", path, "count", len(streets))
	return st.Save()
}
