// Package config loads the synthmap TOML configuration. Every key is optional; missing keys keep
// the values of Default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/synthmap/pkg/geo"
	"github.com/lintang-b-s/synthmap/pkg/ingest"
	"github.com/lintang-b-s/synthmap/pkg/popdist"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultFile = "synthmap.toml"

	EnvConfig   = "SYNTHMAP_CONFIG"
	EnvLogLevel = "SYNTHMAP_LOG_LEVEL"
)

var (
	ErrEmptyDir = errors.New("directory must not be empty")
)

type Paths struct {
	MapsDir    string `toml:"maps_dir"`
	RawMapsDir string `toml:"raw_maps_dir"`
	KVDir      string `toml:"kv_dir"`
}

type MapBounds struct {
	MinLon float64 `toml:"min_lon"`
	MinLat float64 `toml:"min_lat"`
	MaxLon float64 `toml:"max_lon"`
	MaxLat float64 `toml:"max_lat"`
}

func (b MapBounds) GPSBounds() geo.GPSBounds {
	return geo.NewGPSBounds(b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

type Ingest struct {
	OffsetX            float64 `toml:"offset_x"`
	OffsetY            float64 `toml:"offset_y"`
	SimplifyTolerance  float64 `toml:"simplify_tolerance"`
	PopulationProperty string  `toml:"population_property"`
	Seed               uint64  `toml:"seed"`
}

func (in Ingest) Offset() ingest.Offset {
	return ingest.Offset{DX: in.OffsetX, DY: in.OffsetY}
}

func (in Ingest) PopulationOptions() popdist.Options {
	return popdist.Options{
		Property: in.PopulationProperty,
		Seed:     in.Seed,
	}
}

type Server struct {
	ListenAddr   string `toml:"listen_addr"`
	SpatialIndex bool   `toml:"spatial_index"`
}

type Log struct {
	Level string `toml:"level"`
}

type Config struct {
	Paths  Paths     `toml:"paths"`
	Map    MapBounds `toml:"map"`
	Ingest Ingest    `toml:"ingest"`
	Server Server    `toml:"server"`
	Log    Log       `toml:"log"`
}

func Default() Config {
	return Config{
		Paths: Paths{
			MapsDir:    filepath.Join("data", "synthetic_maps"),
			RawMapsDir: filepath.Join("data", "raw_maps"),
			KVDir:      filepath.Join("data", "kv"),
		},
		Map: MapBounds{
			MinLon: 6.14,
			MinLat: 46.20,
			MaxLon: 6.15,
			MaxLat: 46.21,
		},
		Ingest: Ingest{
			OffsetX:            ingest.DefaultOffset.DX,
			OffsetY:            ingest.DefaultOffset.DY,
			PopulationProperty: popdist.DefaultProperty,
			Seed:               popdist.DefaultSeed,
		},
		Server: Server{
			ListenAddr:   ":5000",
			SpatialIndex: true,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Load reads .env if present, then the TOML file named by path, SYNTHMAP_CONFIG or synthmap.toml,
// in that order. A missing default file is not an error. SYNTHMAP_LOG_LEVEL overrides [log] level.
func Load(path string) (Config, error) {
	_ = godotenv.Load(".env")

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultFile
		explicit = false
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err = Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := c.Map.GPSBounds().Validate(); err != nil {
		return fmt.Errorf("[map]: %w", err)
	}
	dirs := []struct {
		key, val string
	}{
		{"maps_dir", c.Paths.MapsDir},
		{"raw_maps_dir", c.Paths.RawMapsDir},
		{"kv_dir", c.Paths.KVDir},
	}
	for _, d := range dirs {
		if d.val == "" {
			return fmt.Errorf("[paths] %s: %w", d.key, ErrEmptyDir)
		}
	}
	return nil
}
