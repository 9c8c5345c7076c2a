// Package popdist spreads the population of sub-regions over the buildings inside them.
package popdist

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/ingest"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"golang.org/x/exp/rand"
)

const (
	DefaultProperty        = "population"
	DefaultSeed     uint64 = 1312

	// MaxPopulation is the largest population a single region may declare.
	MaxPopulation = 100_000_000
)

var (
	ErrNoPopulation = errors.New("no usable population attribute")
	ErrNoHomes      = errors.New("no building inside the region")
)

// Buildings is the part of the model the distribution reads and writes.
type Buildings interface {
	BuildingIDs() []synthetic.BuildingID
	Building(id synthetic.BuildingID) (synthetic.Building, error)
	SetBuildingResidents(id synthetic.BuildingID, residents int) error
}

type Options struct {
	// Property names the numeric region attribute holding its population.
	Property string
	Seed     uint64
}

func DefaultOptions() Options {
	return Options{Property: DefaultProperty, Seed: DefaultSeed}
}

// RegionWarning reports a region whose population could not be distributed.
type RegionWarning struct {
	Index int
	ID    any
	Err   error
}

func (w *RegionWarning) Error() string {
	if w.ID != nil {
		return fmt.Sprintf("region %d (id %v): %v", w.Index, w.ID, w.Err)
	}
	return fmt.Sprintf("region %d: %v", w.Index, w.Err)
}

func (w *RegionWarning) Unwrap() error {
	return w.Err
}

type Summary struct {
	// Residents per building, for every building inside at least one distributed region.
	Residents map[synthetic.BuildingID]int
	Total     int
	Regions   int
}

// Distribute gives each resident of every region a home picked uniformly at random among the
// buildings whose center lies inside the region. Buildings in several regions add up residents
// from each. The outcome only depends on the inputs and opts.Seed.
func Distribute(regions []ingest.Region, buildings Buildings, opts Options) (*Summary, []error, error) {
	if opts.Property == "" {
		opts.Property = DefaultProperty
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	ids := buildings.BuildingIDs()
	centers := make([]datastructure.Pt2D, 0, len(ids))
	for _, id := range ids {
		b, err := buildings.Building(id)
		if err != nil {
			return nil, nil, err
		}
		centers = append(centers, b.Center)
	}

	summary := &Summary{Residents: make(map[synthetic.BuildingID]int)}
	warnings := make([]error, 0)

	for _, region := range regions {
		population, err := Population(region.Properties, opts.Property)
		if err != nil {
			warnings = append(warnings, &RegionWarning{Index: region.Index, ID: region.ID, Err: err})
			continue
		}

		homes := make([]synthetic.BuildingID, 0)
		for k, c := range centers {
			if datastructure.PolygonContains(region.Polygon, c.Orb()) {
				homes = append(homes, ids[k])
			}
		}
		if len(homes) == 0 {
			warnings = append(warnings, &RegionWarning{Index: region.Index, ID: region.ID, Err: ErrNoHomes})
			continue
		}

		for _, h := range homes {
			if _, ok := summary.Residents[h]; !ok {
				summary.Residents[h] = 0
			}
		}
		for n := 0; n < population; n++ {
			summary.Residents[homes[rng.Intn(len(homes))]]++
		}
		summary.Total += population
		summary.Regions++
	}

	for _, id := range ids {
		n, ok := summary.Residents[id]
		if !ok {
			continue
		}
		if err := buildings.SetBuildingResidents(id, n); err != nil {
			return nil, nil, err
		}
	}
	return summary, warnings, nil
}

// Population reads a whole number of people in [0, MaxPopulation] from props[key]. Numbers,
// json.Number and numeric strings are accepted; fractions are truncated.
func Population(props map[string]any, key string) (int, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: %q missing", ErrNoPopulation, key)
	}

	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrNoPopulation, key, err)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrNoPopulation, key, err)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %q has type %T", ErrNoPopulation, key, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("%w: %q is %v", ErrNoPopulation, key, f)
	}
	if f > MaxPopulation {
		return 0, fmt.Errorf("%w: %q is %v, above %d", ErrNoPopulation, key, f, MaxPopulation)
	}
	return int(f), nil
}
