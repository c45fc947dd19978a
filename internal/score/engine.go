// Package score re-runs SIT patterns over documents and reconciles the
// matches against planted ground truth.
//
// Reconciliation is greedy and leftmost-first, per SIT: each expected span, in
// start order, claims the first unclaimed match that overlaps it (TP). An
// expected span left without a match is missing. A match overlapping no
// expected span of its SIT is a false positive. An unclaimed match that does
// overlap an expected span is a duplicate hit on an already counted
// occurrence and is neither TP nor FP.
//
// Decoy spans mark planted lookalike values. A false positive that overlaps a
// decoy of its own SIT is also counted as a decoy hit, which measures how
// often a pattern accepts a near miss.
package score

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gzhole/sitbench/internal/sit"
	"github.com/gzhole/sitbench/internal/synth"
)

// ScoringError reports a structurally malformed document.
type ScoringError struct {
	DocID  string
	Reason string
}

func (e *ScoringError) Error() string {
	id := e.DocID
	if id == "" {
		id = "<no doc_id>"
	}
	return fmt.Sprintf("scoring error: %s: %s", id, e.Reason)
}

// Engine scores documents against a registry. It holds no mutable state and
// may be shared between goroutines.
type Engine struct {
	reg          *sit.Registry
	sampleCap    int
	placeholders bool
}

type Option func(*Engine)

// WithSampleCap bounds the false-positive samples kept per SIT.
func WithSampleCap(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.sampleCap = n
		}
	}
}

// WithPlaceholderFilter drops false-positive matches that look like masked or
// dummy values ("XXX-XX-XXXX", all zeros) instead of counting them.
func WithPlaceholderFilter(on bool) Option {
	return func(e *Engine) { e.placeholders = on }
}

func NewEngine(reg *sit.Registry, opts ...Option) *Engine {
	e := &Engine{reg: reg, sampleCap: DefaultSampleCap}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewReport returns an empty report covering every registry SIT.
func (e *Engine) NewReport() *Report {
	return NewReport(e.sampleCap, e.reg.IDs()...)
}

// Score scores every document and merges the results. Malformed documents are
// skipped; their errors are joined into the returned error alongside the
// report of everything that could be scored.
func (e *Engine) Score(docs []synth.Document) (*Report, error) {
	total := e.NewReport()
	var errs []error
	for i := range docs {
		part, err := e.ScoreDocument(&docs[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total.Merge(part)
	}
	return total, errors.Join(errs...)
}

// ScoreDocument scores a single document against its own ground truth.
func (e *Engine) ScoreDocument(doc *synth.Document) (*Report, error) {
	if err := e.validate(doc); err != nil {
		return nil, err
	}

	expected := map[string][]sit.Span{}
	for _, g := range doc.GroundTruth {
		expected[g.SITID] = append(expected[g.SITID], g.Span())
	}
	decoys := map[string][]sit.Span{}
	for _, g := range doc.Decoys {
		decoys[g.SITID] = append(decoys[g.SITID], g.Span())
	}

	rep := e.NewReport()
	rep.Documents = 1
	rep.DocSITs = len(expected)

	for _, def := range e.reg.Definitions() {
		id := def.ID()
		exp := expected[id]
		sort.Slice(exp, func(i, j int) bool { return exp[i].Start < exp[j].Start })

		t := rep.Tally(id)
		if len(exp) > 0 {
			t.Docs = 1
		}
		t.Decoys = len(decoys[id])
		e.reconcile(t, doc, def.Matches(doc.Text), exp, decoys[id])

		if t.Missing > 0 {
			rep.Findings = append(rep.Findings, Finding{DocID: doc.DocID, SITID: id, Kind: FindingMissing, Found: t.TP, Expected: len(exp)})
		}
		if t.FP > 0 {
			f := Finding{DocID: doc.DocID, SITID: id, Kind: FindingFP, Found: t.FP}
			if len(t.FPSamples) > 0 {
				f.Sample = t.FPSamples[0].Value
			}
			rep.Findings = append(rep.Findings, f)
		}
	}
	sort.Slice(rep.Findings, func(i, j int) bool { return rep.Findings[i].less(rep.Findings[j]) })
	return rep, nil
}

func (e *Engine) reconcile(t *Tally, doc *synth.Document, matches, expected, decoys []sit.Span) {
	claimed := make([]bool, len(matches))
	for _, exp := range expected {
		hit := false
		for j, m := range matches {
			if !claimed[j] && m.Overlaps(exp) {
				claimed[j] = true
				hit = true
				break
			}
		}
		if hit {
			t.TP++
		} else {
			t.Missing++
		}
	}

	var samples []Sample
	for j, m := range matches {
		if claimed[j] || overlapsAny(m, expected) {
			continue
		}
		value := doc.Text[m.Start:m.End]
		if e.placeholders && IsPlaceholder(value) {
			t.Placeholders++
			continue
		}
		t.FP++
		if overlapsAny(m, decoys) {
			t.DecoyHits++
		}
		samples = append(samples, Sample{DocID: doc.DocID, Start: m.Start, Value: value})
	}
	t.FPSamples = mergeSamples(t.FPSamples, samples, e.sampleCap)
}

func overlapsAny(s sit.Span, spans []sit.Span) bool {
	for _, o := range spans {
		if s.Overlaps(o) {
			return true
		}
	}
	return false
}

func (e *Engine) validate(doc *synth.Document) error {
	if doc.DocID == "" {
		return &ScoringError{Reason: "missing doc_id"}
	}
	if doc.Text == "" {
		return &ScoringError{DocID: doc.DocID, Reason: "missing text"}
	}
	for _, g := range append(doc.GroundTruth[:len(doc.GroundTruth):len(doc.GroundTruth)], doc.Decoys...) {
		if g.Start < 0 || g.End <= g.Start {
			return &ScoringError{DocID: doc.DocID, Reason: fmt.Sprintf("malformed span [%d,%d) for %s", g.Start, g.End, g.SITID)}
		}
		if !e.reg.Has(g.SITID) {
			return &ScoringError{DocID: doc.DocID, Reason: fmt.Sprintf("ground truth names unknown SIT %q", g.SITID)}
		}
	}
	return nil
}
