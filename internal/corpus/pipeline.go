package corpus

import (
	"context"
	"fmt"

	"github.com/gzhole/sitbench/internal/logger"
	"github.com/gzhole/sitbench/internal/plan"
	"github.com/gzhole/sitbench/internal/render"
	"github.com/gzhole/sitbench/internal/score"
	"github.com/gzhole/sitbench/internal/sit"
	"github.com/gzhole/sitbench/internal/synth"
)

// RunConfig drives an in-memory plan, generate and score pass.
type RunConfig struct {
	Targets   map[string]int
	Policy    plan.Policy
	Seed      uint64
	SampleCap int
	// Via, when set, scores rendered-and-extracted text instead of the
	// synthesized text.
	Via render.Renderer
	// IgnorePlaceholders drops false positives on masked or dummy values.
	IgnorePlaceholders bool
	Options
}

// Result carries every stage's output. ScoreErr holds per-document scoring
// failures that did not stop the run.
type Result struct {
	Plan     *plan.DistributionPlan
	Batch    *Batch
	Report   *score.Report
	ScoreErr error
}

// Run plans, synthesizes and scores in one process.
func Run(ctx context.Context, reg *sit.Registry, cfg RunConfig) (*Result, error) {
	p, err := plan.Plan(reg, cfg.Targets, cfg.Policy, cfg.Seed)
	if err != nil {
		return nil, err
	}
	_ = cfg.Log.Logf(logger.StagePlan, "planned %d documents", len(p.Documents))

	batch, err := Generate(ctx, p, synth.New(reg), cfg.Options)
	if err != nil {
		return nil, err
	}

	docs := batch.Documents
	if cfg.Via != nil {
		if docs, err = RoundTrip(docs, cfg.Via); err != nil {
			return nil, fmt.Errorf("round trip via %s: %w", cfg.Via.Format(), err)
		}
		_ = cfg.Log.Logf(logger.StageRender, "round-tripped %d documents via %s", len(docs), cfg.Via.Format())
	}

	sampleCap := cfg.SampleCap
	if sampleCap <= 0 {
		sampleCap = score.DefaultSampleCap
	}
	eng := score.NewEngine(reg, score.WithSampleCap(sampleCap), score.WithPlaceholderFilter(cfg.IgnorePlaceholders))
	rep, scoreErr := Score(ctx, docs, eng, cfg.Options)
	if rep == nil {
		return nil, scoreErr
	}
	total := rep.Total()
	_ = cfg.Log.Logf(logger.StageRun, "scored %d documents: tp=%d fp=%d missing=%d", rep.Documents, total.TP, total.FP, total.Missing)

	return &Result{Plan: p, Batch: batch, Report: rep, ScoreErr: scoreErr}, nil
}
