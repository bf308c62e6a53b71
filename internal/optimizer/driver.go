package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PassResult records the outcome of one pass invocation.
type PassResult struct {
	Pass     string
	Stats    Stats
	Duration time.Duration
}

// Report is the outcome of a Driver run.
type Report struct {
	Passes []PassResult
}

// TotalChanges sums NumChanges over all passes.
func (r Report) TotalChanges() int {
	total := 0
	for _, p := range r.Passes {
		total += p.Stats.NumChanges
	}
	return total
}

// Driver runs registered passes in order over an Item.
type Driver struct {
	registry *Registry
	passes   []string
}

// NewDriver creates a driver that runs the named passes in order.
func NewDriver(r *Registry, passes ...string) *Driver {
	return &Driver{registry: r, passes: passes}
}

// Run executes every configured pass. The first failing pass aborts the run;
// passes that completed before it keep their rewrites.
func (d *Driver) Run(ctx context.Context, item *Item) (Report, error) {
	logger := ctxlog.FromContext(ctx).With("item", item.ID)
	ctx = ctxlog.WithLogger(ctx, logger)

	var report Report
	for _, name := range d.passes {
		opt, err := d.registry.New(name)
		if err != nil {
			return report, err
		}
		result, err := d.runPass(ctx, opt, item)
		if err != nil {
			return report, fmt.Errorf("optimizer pass %q failed: %w", name, err)
		}
		report.Passes = append(report.Passes, result)
	}
	logger.Debug("Optimizer driver finished.", "passes", len(report.Passes), "changes", report.TotalChanges())
	return report, nil
}

func (d *Driver) runPass(ctx context.Context, opt Optimizer, item *Item) (PassResult, error) {
	name := opt.Name()
	logger := ctxlog.FromContext(ctx).With("pass", name)
	ctx = ctxlog.WithLogger(ctx, logger)

	ctx, span := tracer.Start(ctx, "optimizer.Pass",
		trace.WithAttributes(
			attribute.String("pass", name),
			attribute.Int("nodes_before", item.Graph.Len()),
			attribute.Int("functions_before", item.Graph.Library.Len()),
		),
	)
	defer span.End()

	logger.Debug("Running optimizer pass.")
	start := time.Now()
	var stats Stats
	err := opt.Optimize(ctx, item, &stats)
	elapsed := time.Since(start)
	passDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		passRunsTotal.WithLabelValues(name, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return PassResult{}, err
	}

	passRunsTotal.WithLabelValues(name, "ok").Inc()
	passChangesTotal.WithLabelValues(name).Add(float64(stats.NumChanges))
	span.SetAttributes(
		attribute.Int("changes", stats.NumChanges),
		attribute.Int("nodes_after", item.Graph.Len()),
		attribute.Int("functions_after", item.Graph.Library.Len()),
	)
	logger.Info("Optimizer pass complete.", "changes", stats.NumChanges, "duration", elapsed)
	return PassResult{Pass: name, Stats: stats, Duration: elapsed}, nil
}
