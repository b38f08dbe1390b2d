package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a-deal/gym-finder/internal/config"
	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/engine/match"
	"github.com/a-deal/gym-finder/internal/engine/region"
	"github.com/a-deal/gym-finder/internal/engine/resolve"
	"github.com/a-deal/gym-finder/internal/engine/storage"
	"github.com/a-deal/gym-finder/internal/logging"
	"github.com/a-deal/gym-finder/internal/model"
	"github.com/a-deal/gym-finder/internal/sources"
)

// planFunc turns command arguments into the regions to search. Regions that
// cannot be searched at all come back as failed results.
type planFunc func(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]model.Region, []model.RegionResult, error)

// loadConfig reads the config and applies the flag overrides.
func (o *options) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		return config.Config{}, err
	}
	if o.workers != 0 {
		cfg.Runner.Workers = o.workers
	}
	if o.sources != "" {
		cfg.Runner.Sources = sources.ParseNames(o.sources)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// run executes one search: plan regions, run them, aggregate, save the
// snapshot and report.
func (o *options) run(cmd *cobra.Command, command, target string, plan planFunc) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	outDir := o.output
	if outDir == "" {
		outDir = cfg.LogDir
	}

	session, err := logging.NewSession(outDir, o.verbose)
	if err != nil {
		return err
	}
	defer session.Close()

	runID := uuid.New()
	logger := session.Logger.With(zap.String("run_id", runID.String()))
	logger.Info("run: session start",
		zap.String("command", command),
		zap.String("target", target),
		zap.Strings("sources", cfg.Runner.Sources),
		zap.Int("workers", cfg.Runner.Workers),
		zap.String("strategy", cfg.Matching.Strategy),
		zap.Float64("threshold", cfg.Matching.Threshold),
	)

	srcs, err := sources.Build(cfg.Runner.Sources, cfg.Sources, logger)
	if err != nil {
		return err
	}
	rc := cfg.ResolverConfig()
	resolver, err := resolve.New(rc)
	if err != nil {
		return eris.Wrap(err, "building resolver")
	}
	matcher := match.New(resolver, cfg.Strategy(), rc.SourcePriority, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	regions, failed, err := plan(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(regions)+len(failed) == 0 {
		return eris.New("no regions to search")
	}
	for _, f := range failed {
		logger.Warn("run: region skipped", zap.String("region", f.Region.ID), zap.String("error", f.Error))
	}

	start := time.Now()
	runner := region.NewRunner(srcs, matcher, cfg.RunnerOptions(), logger)
	results, progress := runner.Run(ctx, regions)
	agg := region.Aggregate(append(failed, results...), resolver, cfg.DedupConfig())
	duration := time.Since(start).Truncate(time.Second)

	if ctx.Err() != nil {
		logger.Warn("run: interrupted, saving partial results")
	}
	logger.Info("run: done",
		zap.Int("regions", agg.Stats.RegionsTotal),
		zap.Int("listings", agg.Stats.TotalListings),
		zap.Int("merged", agg.Stats.MergeCount),
		zap.Int("cross_region_duplicates", agg.Stats.CrossRegionDuplicates),
		zap.Int64("source_errors", progress.SourceErrors.Load()),
		zap.Int64("rate_limits", progress.RateLimits.Load()),
		zap.Duration("duration", duration),
	)

	dbPath := session.Path(".db")
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	meta := storage.RunMeta{Command: command, Target: target, Config: cfg, CreatedAt: start}
	if err := store.SaveRun(context.WithoutCancel(ctx), runID, meta, agg); err != nil {
		return err
	}

	if o.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(agg); err != nil {
			return eris.Wrap(err, "writing json")
		}
	}

	fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(summary{
		Command:   command,
		Target:    target,
		Stats:     agg.Stats,
		Threshold: resolver.Threshold(),
		Duration:  duration,
		DBPath:    dbPath,
		LogPath:   session.LogPath,
	}))
	return nil
}

// zipPlan geocodes ZIP codes into regions of the given radius.
func zipPlan(zips []string, radius float64) planFunc {
	return func(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]model.Region, []model.RegionResult, error) {
		if radius <= 0 {
			radius = cfg.Runner.RadiusMiles
		}
		regions, failed := geo.ZipRegions(ctx, newGeocoder(), zips, radius)
		logger.Info("run: zip regions", zap.Int("regions", len(regions)), zap.Int("failed", len(failed)))
		return regions, failed, nil
	}
}

func newGeocoder() geo.Geocoder {
	return geo.ChainGeocoder{
		geo.NewStaticGeocoder(nil),
		geo.NewNominatimGeocoder("", "gymtap/"+version),
	}
}
