// Package corpus runs synthesis and scoring over a whole plan with a bounded
// worker pool.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gzhole/sitbench/internal/logger"
	"github.com/gzhole/sitbench/internal/plan"
	"github.com/gzhole/sitbench/internal/render"
	"github.com/gzhole/sitbench/internal/score"
	"github.com/gzhole/sitbench/internal/synth"
)

// OnError decides what a failed document does to the run.
type OnError string

const (
	// OnErrorSkip records the failure and keeps going.
	OnErrorSkip OnError = "skip"
	// OnErrorAbort cancels the run on the first failure.
	OnErrorAbort OnError = "abort"
)

type Options struct {
	Workers int
	OnError OnError
	Log     *logger.RunLogger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Failure is one document that could not be produced or scored.
type Failure struct {
	Index int
	DocID string
	Err   error
}

// Batch is the outcome of Generate. Documents are in plan order; failed
// documents are absent from it and listed in Failures.
type Batch struct {
	Documents []synth.Document
	Failures  []Failure
}

// Err joins the failure errors, or returns nil.
func (b *Batch) Err() error {
	errs := make([]error, len(b.Failures))
	for i, f := range b.Failures {
		errs[i] = f.Err
	}
	return errors.Join(errs...)
}

// DocSeed derives a per-document seed from the plan seed. Each document gets
// its own stream, so results do not depend on worker scheduling.
func DocSeed(seed uint64, index int) uint64 {
	z := seed + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Generate synthesizes every document in p. If ctx is cancelled, or a failure
// occurs under OnErrorAbort, the whole batch is discarded.
func Generate(ctx context.Context, p *plan.DistributionPlan, s *synth.Synthesizer, opts Options) (*Batch, error) {
	docs := make([]*synth.Document, len(p.Documents))
	errs := make([]error, len(p.Documents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, spec := range p.Documents {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := s.Synthesize(spec, DocSeed(p.Seed, i))
			if err != nil {
				errs[i] = err
				_ = opts.Log.Log(logger.Event{Stage: logger.StageGenerate, DocID: spec.DocID, Message: "synthesis failed", Error: err.Error()})
				if opts.OnError == OnErrorAbort {
					return err
				}
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("generation aborted: %w", err)
	}

	batch := &Batch{Documents: make([]synth.Document, 0, len(docs))}
	for i, d := range docs {
		if errs[i] != nil {
			batch.Failures = append(batch.Failures, Failure{Index: i, DocID: p.Documents[i].DocID, Err: errs[i]})
			continue
		}
		batch.Documents = append(batch.Documents, *d)
	}
	_ = opts.Log.Logf(logger.StageGenerate, "generated %d documents, %d failed", len(batch.Documents), len(batch.Failures))
	return batch, nil
}

// Score scores docs in parallel and merges the per-document partials. Under
// OnErrorSkip malformed documents are left out and their errors joined into
// the returned error next to a usable report. Under OnErrorAbort, or on
// cancellation, no report is returned.
func Score(ctx context.Context, docs []synth.Document, eng *score.Engine, opts Options) (*score.Report, error) {
	total := eng.NewReport()
	var (
		mu   sync.Mutex
		errs = make([]error, len(docs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part, err := eng.ScoreDocument(&docs[i])
			if err != nil {
				errs[i] = err
				_ = opts.Log.Log(logger.Event{Stage: logger.StageScore, DocID: docs[i].DocID, Message: "scoring failed", Error: err.Error()})
				if opts.OnError == OnErrorAbort {
					return err
				}
				return nil
			}
			logFalsePositives(opts.Log, docs[i].DocID, part)
			mu.Lock()
			total.Merge(part)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("scoring aborted: %w", err)
	}
	return total, errors.Join(errs...)
}

func logFalsePositives(l *logger.RunLogger, docID string, part *score.Report) {
	if l == nil {
		return
	}
	for _, id := range part.IDs() {
		t := part.SITs[id]
		if t.FP == 0 && t.Missing == 0 {
			continue
		}
		_ = l.Log(logger.Event{
			Stage:   logger.StageScore,
			DocID:   docID,
			SITID:   id,
			Message: fmt.Sprintf("tp=%d fp=%d missing=%d", t.TP, t.FP, t.Missing),
			Samples: t.SampleValues(),
		})
	}
}

// RoundTrip renders every document with r and returns copies whose Text is
// what r extracts back. The rendered bytes are kept in Rendered[r.Format()].
func RoundTrip(docs []synth.Document, r render.Renderer) ([]synth.Document, error) {
	out := make([]synth.Document, len(docs))
	for i := range docs {
		data, err := r.Render(&docs[i])
		if err != nil {
			return nil, fmt.Errorf("render %s as %s: %w", docs[i].DocID, r.Format(), err)
		}
		text, err := r.Extract(data)
		if err != nil {
			return nil, fmt.Errorf("extract %s from %s: %w", docs[i].DocID, r.Format(), err)
		}
		out[i] = docs[i].WithText(text)
		out[i].Rendered = map[string][]byte{r.Format(): data}
	}
	return out, nil
}
