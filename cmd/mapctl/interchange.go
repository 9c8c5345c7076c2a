package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/synthmap/pkg/kv"
	"github.com/lintang-b-s/synthmap/pkg/logger"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "export <snapshot.json>",
		Short: "Export a snapshot to the raw interchange format and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lg := logger.FromContext(ctx)

			m, err := synthetic.Load(args[0])
			if err != nil {
				return err
			}
			path, raw, err := m.ExportFile(a.cfg.Paths.RawMapsDir, a.cfg.Map.GPSBounds())
			if err != nil {
				return err
			}
			lg.Info("exported raw map", "path", path, "roads", len(raw.Roads),
				"intersections", len(raw.Intersections), "buildings", len(raw.Buildings))

			if !noStore {
				if err := os.MkdirAll(a.cfg.Paths.KVDir, 0o755); err != nil {
					return err
				}
				db, err := kv.OpenDB(a.cfg.Paths.KVDir)
				if err != nil {
					return err
				}
				store := kv.NewMapStore(db)
				defer store.Close()
				if err := store.PutRawMap(ctx, raw); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "only write the raw map file")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <raw.bin> <name>",
		Short: "Rebuild an editable snapshot from a raw map",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := logger.FromContext(cmd.Context())

			m, warnings, err := synthetic.ImportFile(args[0])
			if err != nil {
				return err
			}
			logger.Warnings(lg, "import", warnings)
			m.SetName(args[1])

			path, err := m.Save(a.cfg.Paths.MapsDir)
			if err != nil {
				return err
			}
			lg.Info("imported raw map", "path", path, "intersections", m.NumIntersections(),
				"roads", m.NumRoads(), "buildings", m.NumBuildings(), "warnings", len(warnings))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newOSMCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "osm <raw.bin> <out.osm>",
		Short: "Write a raw map as OSM XML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := rawmap.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(args[1]), 0o755); err != nil {
				return err
			}
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := raw.WriteOSM(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.FromContext(cmd.Context()).Info("wrote osm", "path", args[1], "map", raw.Name)
			return nil
		},
	}
}
