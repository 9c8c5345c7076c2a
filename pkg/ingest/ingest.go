// Package ingest turns GeoJSON sub-region documents into polygons in a map's local frame and keeps
// the ones that overlap the map.
package ingest

import (
	"runtime"

	"github.com/lintang-b-s/synthmap/pkg/concurrent"
	"github.com/lintang-b-s/synthmap/pkg/geo"

	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/schollz/progressbar/v3"
)

// Region is one polygon feature of the source document, reprojected to the local frame.
type Region struct {
	Index      int
	ID         any
	Polygon    orb.Polygon
	Properties geojson.Properties
}

func (r Region) ref() featureRef {
	return featureRef{Index: r.Index, ID: r.ID}
}

// Regions builds a Region from every Polygon feature. Features without a geometry are ignored;
// other geometry types and degenerate rings are skipped and reported as warnings.
func (rb *RingBuilder) Regions(features []*geojson.Feature) ([]Region, []error) {
	return rb.regions(features, nil)
}

type featureResult struct {
	region  *Region
	warning error
}

func (rb *RingBuilder) feature(job concurrent.Job[*geojson.Feature]) concurrent.Job[featureResult] {
	idx, f := job.ID, job.JobItem
	if f == nil || f.Geometry == nil {
		return concurrent.NewJob(idx, featureResult{})
	}
	ref := featureRef{Index: idx, ID: f.ID}

	gps, ok := f.Geometry.(orb.Polygon)
	if !ok {
		return concurrent.NewJob(idx, featureResult{
			warning: &UnsupportedGeometryError{featureRef: ref, GeometryType: f.Geometry.GeoJSONType()},
		})
	}

	poly, ring, err := rb.Build(gps)
	if err != nil {
		return concurrent.NewJob(idx, featureResult{
			warning: &RingConstructionError{featureRef: ref, Ring: ring, Err: err},
		})
	}
	return concurrent.NewJob(idx, featureResult{region: &Region{
		Index:      idx,
		ID:         f.ID,
		Polygon:    poly,
		Properties: f.Properties,
	}})
}

// regions reprojects the features on all CPUs. Regions and warnings keep document order.
func (rb *RingBuilder) regions(features []*geojson.Feature, bar *progressbar.ProgressBar) ([]Region, []error) {
	workers := concurrent.NewWorkerPool[concurrent.Job[*geojson.Feature], concurrent.Job[featureResult]](
		runtime.NumCPU(), len(features))
	for idx, f := range features {
		workers.AddJob(concurrent.NewJob(idx, f))
	}
	workers.Close()
	workers.Start(func(job concurrent.Job[*geojson.Feature]) concurrent.Job[featureResult] {
		res := rb.feature(job)
		if bar != nil {
			bar.Add(1)
		}
		return res
	})
	workers.Wait()

	results := make([]featureResult, len(features))
	for res := range workers.CollectResults() {
		results[res.ID] = res.JobItem
	}

	regions := make([]Region, 0, len(features))
	warnings := make([]error, 0)
	for _, res := range results {
		if res.warning != nil {
			warnings = append(warnings, res.warning)
		}
		if res.region != nil {
			regions = append(regions, *res.region)
		}
	}
	return regions, warnings
}

type Options struct {
	Offset            Offset
	SimplifyTolerance float64
	// Progress draws a progress bar on stdout while features are reprojected.
	Progress bool
}

type Result struct {
	Regions   []Region
	Discarded []Region
	// Warnings holds per feature problems in document order, followed by one FilteredOutWarning
	// per discarded region.
	Warnings []error
}

// LoadSubRegions reads the document at path, reprojects its polygons into the local frame of
// bounds and filters them against the boundary of that frame. Only document level failures are
// returned as an error.
func LoadSubRegions(path string, bounds geo.GPSBounds, opts Options) (*Result, error) {
	features, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return ProcessFeatures(features, bounds, opts)
}

func ProcessFeatures(features []*geojson.Feature, bounds geo.GPSBounds, opts Options) (*Result, error) {
	rb, err := NewRingBuilder(bounds, opts.Offset, WithSimplify(opts.SimplifyTolerance))
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(features),
			progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(15),
			progressbar.OptionSetDescription("[cyan][1/2][reset] reprojecting sub regions ..."),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		defer bar.Finish()
	}

	regions, warnings := rb.regions(features, bar)
	kept, discarded := FilterByBoundary(rb.BoundaryPolygon(), regions)
	for _, r := range discarded {
		warnings = append(warnings, &FilteredOutWarning{featureRef: r.ref()})
	}

	return &Result{
		Regions:   kept,
		Discarded: discarded,
		Warnings:  warnings,
	}, nil
}
