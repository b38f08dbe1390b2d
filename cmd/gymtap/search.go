package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a-deal/gym-finder/internal/config"
	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/model"
)

func newZipCmd(o *options) *cobra.Command {
	var radius float64
	cmd := &cobra.Command{
		Use:     "zip <zip>",
		Short:   "Search one ZIP code",
		Example: "  gymtap zip 10001 --radius 2 --sources yelp,places",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zip := strings.TrimSpace(args[0])
			if !geo.ValidZip(zip) {
				return eris.Errorf("invalid zip %q", args[0])
			}
			return o.run(cmd, "zip", zip, zipPlan([]string{zip}, radius))
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in miles (default: from config)")
	return cmd
}

func newBatchCmd(o *options) *cobra.Command {
	var radius float64
	cmd := &cobra.Command{
		Use:     "batch <zip>...",
		Short:   "Search several ZIP codes and deduplicate across them",
		Example: "  gymtap batch 10001 10011 10016 --workers 2",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, "batch", strings.Join(args, ","), zipPlan(args, radius))
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in miles (default: from config)")
	return cmd
}

func newMetroCmd(o *options) *cobra.Command {
	var (
		radius float64
		limit  int
	)
	cmd := &cobra.Command{
		Use:     "metro <code>",
		Short:   "Search the ZIP codes of a metro area",
		Example: "  gymtap metro nyc --limit 3\n  gymtap metro list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			area, err := geo.GetMetroArea(args[0])
			if err != nil {
				return err
			}
			zips := area.ZipCodes
			if limit > 0 && limit < len(zips) {
				zips = zips[:limit]
			}
			return o.run(cmd, "metro", area.Code, zipPlan(zips, radius))
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in miles (default: from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "search only the first N ZIP codes")
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the known metro areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Print(renderMetroList())
			return nil
		},
	})
	return cmd
}

func newGridCmd(o *options) *cobra.Command {
	var lat, lng, radius, cell float64
	cmd := &cobra.Command{
		Use:     "grid",
		Short:   "Cover a circle with overlapping grid regions",
		Example: "  gymtap grid --lat 40.7506 --lng -73.9972 --radius 3 --cell 1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			center := model.Coordinate{Lat: lat, Lng: lng}
			if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
				return eris.Errorf("invalid center %.4f,%.4f", lat, lng)
			}
			target := fmt.Sprintf("%.4f,%.4f r=%.1fmi cell=%.1fmi", lat, lng, radius, cell)
			return o.run(cmd, "grid", target, func(_ context.Context, _ config.Config, logger *zap.Logger) ([]model.Region, []model.RegionResult, error) {
				regions, err := geo.GenerateRadiusGrid(center, radius, cell)
				if err != nil {
					return nil, nil, err
				}
				logger.Info("run: grid regions", zap.Int("regions", len(regions)), zap.Float64("cell_radius_miles", geo.CellRadius(cell)))
				return regions, nil, nil
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "center latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "center longitude")
	cmd.Flags().Float64Var(&radius, "radius", 3, "radius to cover in miles")
	cmd.Flags().Float64Var(&cell, "cell", 1, "grid spacing in miles")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}
