package region

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/a-deal/gym-finder/internal/engine/match"
	"github.com/a-deal/gym-finder/internal/model"
)

// DefaultWorkers is the region pool size when none is configured.
const DefaultWorkers = 4

// Progress counts work as regions complete. It is safe to read while a run
// is in flight.
type Progress struct {
	RegionsTotal  int
	RegionsDone   atomic.Int64
	RegionsFailed atomic.Int64
	ListingsFound atomic.Int64
	SourceErrors  atomic.Int64
	RateLimits    atomic.Int64
}

// Options tunes a Runner.
type Options struct {
	Workers int
	Retry   RetryConfig
	// ProgressEvery is the progress log interval. Defaults to 10s.
	ProgressEvery time.Duration
	// Progress, if set, receives live counts instead of a private copy.
	Progress *Progress
}

// Runner searches every source for each region and matches the results.
type Runner struct {
	sources []Source
	matcher *match.Matcher
	opts    Options
	logger  *zap.Logger
}

// NewRunner builds a Runner. Zero options fall back to defaults.
func NewRunner(sources []Source, matcher *match.Matcher, opts Options, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = DefaultRetry()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 10 * time.Second
	}
	return &Runner{sources: sources, matcher: matcher, opts: opts, logger: logger}
}

// Run processes regions on a bounded pool and returns one result per region,
// in input order. Regions not started before ctx is done are marked failed.
func (r *Runner) Run(ctx context.Context, regions []model.Region) ([]model.RegionResult, *Progress) {
	progress := r.opts.Progress
	if progress == nil {
		progress = &Progress{}
	}
	progress.RegionsTotal = len(regions)
	results := make([]model.RegionResult, len(regions))

	start := time.Now()
	done := make(chan struct{})
	go r.report(progress, start, done)

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, reg := range regions {
		if err := ctx.Err(); err != nil {
			results[i] = notStarted(reg, err, progress)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = notStarted(reg, err, progress)
				return nil
			}
			results[i] = r.runRegion(ctx, reg, progress)
			return nil
		})
	}
	_ = g.Wait()
	close(done)

	r.logger.Info("runner: finished",
		zap.Int("regions", progress.RegionsTotal),
		zap.Int64("failed", progress.RegionsFailed.Load()),
		zap.Int64("listings", progress.ListingsFound.Load()),
		zap.Int64("source_errors", progress.SourceErrors.Load()),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)))
	return results, progress
}

// RunRegion processes a single region.
func (r *Runner) RunRegion(ctx context.Context, reg model.Region) model.RegionResult {
	return r.runRegion(ctx, reg, &Progress{RegionsTotal: 1})
}

func (r *Runner) runRegion(ctx context.Context, reg model.Region, progress *Progress) (res model.RegionResult) {
	log := r.logger.With(zap.String("region", reg.ID))
	defer func() {
		if p := recover(); p != nil {
			log.Error("runner: region panicked", zap.Any("panic", p), zap.Stack("stack"))
			res = failed(reg, fmt.Sprintf("panic: %v", p))
			progress.RegionsFailed.Add(1)
		}
		progress.RegionsDone.Add(1)
	}()

	raw := make(map[model.SourceID][]model.RawListing, len(r.sources))
	var failures []model.SourceFailure
	for _, src := range r.sources {
		var listings []model.RawListing
		op := fmt.Sprintf("%s search %s", src.ID(), reg.ID)
		err := r.opts.Retry.Do(ctx, log, op, func(ctx context.Context) error {
			var err error
			listings, err = src.Search(ctx, reg.Center, reg.RadiusMiles)
			if isRateLimit(err) {
				progress.RateLimits.Add(1)
			}
			return err
		})
		if err != nil {
			log.Warn("runner: source failed", zap.String("source", string(src.ID())), zap.Error(err))
			progress.SourceErrors.Add(1)
			failures = append(failures, model.SourceFailure{Source: src.ID(), Err: err.Error()})
			continue
		}
		progress.ListingsFound.Add(int64(len(listings)))
		raw[src.ID()] = listings
	}

	res = r.matcher.MatchRegion(raw)
	res.Region = reg
	res.Failures = failures
	for i := range res.Listings {
		res.Listings[i].Region = reg.ID
	}
	log.Debug("runner: region done",
		zap.Int("listings", len(res.Listings)),
		zap.Int("merged", res.MergeCount),
		zap.Int("failures", len(failures)))
	return res
}

func (r *Runner) report(progress *Progress, start time.Time, done <-chan struct{}) {
	ticker := time.NewTicker(r.opts.ProgressEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.logger.Info("runner: progress",
				zap.Int64("done", progress.RegionsDone.Load()),
				zap.Int("total", progress.RegionsTotal),
				zap.Int64("failed", progress.RegionsFailed.Load()),
				zap.Int64("listings", progress.ListingsFound.Load()),
				zap.Int64("source_errors", progress.SourceErrors.Load()),
				zap.Int64("rate_limits", progress.RateLimits.Load()),
				zap.Duration("elapsed", time.Since(start).Truncate(time.Second)))
		case <-done:
			return
		}
	}
}

func notStarted(reg model.Region, err error, progress *Progress) model.RegionResult {
	progress.RegionsFailed.Add(1)
	progress.RegionsDone.Add(1)
	return failed(reg, "not started: "+err.Error())
}

func failed(reg model.Region, msg string) model.RegionResult {
	return model.RegionResult{
		Region:    reg,
		Listings:  []model.MergedListing{},
		RawCounts: map[model.SourceID]int{},
		Failed:    true,
		Error:     msg,
	}
}
