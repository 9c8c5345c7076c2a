package main

import (
	"fmt"

	"github.com/lintang-b-s/synthmap/pkg/ingest"
	"github.com/lintang-b-s/synthmap/pkg/logger"
	"github.com/lintang-b-s/synthmap/pkg/popdist"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"github.com/spf13/cobra"
)

func (a *app) ingestOptions(progress bool) ingest.Options {
	return ingest.Options{
		Offset:            a.cfg.Ingest.Offset(),
		SimplifyTolerance: a.cfg.Ingest.SimplifyTolerance,
		Progress:          progress,
	}
}

func newIngestCmd(a *app) *cobra.Command {
	var progress bool
	cmd := &cobra.Command{
		Use:   "ingest <geojson>",
		Short: "Reproject sub-regions into the map frame and keep those inside its boundary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := logger.FromContext(cmd.Context())
			p := logger.NewProgress(lg)

			res, err := ingest.LoadSubRegions(args[0], a.cfg.Map.GPSBounds(), a.ingestOptions(progress))
			if err != nil {
				return err
			}
			logger.Warnings(lg, "ingest", res.Warnings)
			p.Done("ingested sub regions", "path", args[0])

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "retained: %d\ndiscarded: %d\nwarnings: %d\n", len(res.Regions), len(res.Discarded), len(res.Warnings))
			for _, r := range res.Regions {
				b := r.Polygon.Bound()
				fmt.Fprintf(out, "  region %d id=%v bound=[%.1f %.1f %.1f %.1f]\n", r.Index, r.ID, b.Min[0], b.Min[1], b.Max[0], b.Max[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&progress, "progress", true, "show a progress bar")
	return cmd
}

func newDistributeCmd(a *app) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "distribute <snapshot.json> <geojson>",
		Short: "Distribute sub-region population over the snapshot's buildings and save it back",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := logger.FromContext(cmd.Context())

			m, err := synthetic.Load(args[0])
			if err != nil {
				return err
			}
			res, err := ingest.LoadSubRegions(args[1], a.cfg.Map.GPSBounds(), a.ingestOptions(false))
			if err != nil {
				return err
			}
			logger.Warnings(lg, "ingest", res.Warnings)

			opts := a.cfg.Ingest.PopulationOptions()
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			sum, warnings, err := popdist.Distribute(res.Regions, m, opts)
			if err != nil {
				return err
			}
			logger.Warnings(lg, "distribute", warnings)

			path := args[0]
			if err := m.SaveFile(path); err != nil {
				return err
			}
			lg.Info("distributed residents", "regions", sum.Regions, "residents", sum.Total, "buildings", len(sum.Residents))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d residents in %d buildings\n", path, sum.Total, len(sum.Residents))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", popdist.DefaultSeed, "random seed, overrides the configured one")
	return cmd
}
