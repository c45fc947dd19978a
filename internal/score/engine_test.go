package score

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gzhole/sitbench/internal/plan"
	"github.com/gzhole/sitbench/internal/sit"
	"github.com/gzhole/sitbench/internal/synth"
)

func testRegistry(t *testing.T) *sit.Registry {
	t.Helper()
	reg, err := sit.NewRegistry(
		sit.MustDefinition("SIT_SSN", `\d{3}-\d{2}-\d{4}`, sit.Static("123-45-6789")),
		sit.MustDefinition("SIT_IP", `\b(?:\d{1,3}\.){3}\d{1,3}\b`, sit.Static("10.0.0.1")),
	)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

// at locates value in text and returns its ground-truth span.
func at(t *testing.T, text, sitID, value string) synth.GroundTruthSpan {
	t.Helper()
	i := strings.Index(text, value)
	if i < 0 {
		t.Fatalf("%q not in %q", value, text)
	}
	return synth.GroundTruthSpan{SITID: sitID, Start: i, End: i + len(value), Value: value}
}

type want struct {
	tp, fp, missing int
	samples         []string
}

func TestScoreDocument_Scenarios(t *testing.T) {
	reg := testRegistry(t)
	eng := NewEngine(reg)

	tests := []struct {
		name string
		text string
		gt   func(text string) []synth.GroundTruthSpan
		want map[string]want
	}{
		{
			name: "two planted SSNs are both found",
			text: "SSN: 123-45-6789 and later 987-65-4321.",
			gt: func(s string) []synth.GroundTruthSpan {
				return []synth.GroundTruthSpan{at(t, s, "SIT_SSN", "123-45-6789"), at(t, s, "SIT_SSN", "987-65-4321")}
			},
			want: map[string]want{"SIT_SSN": {tp: 2}, "SIT_IP": {}},
		},
		{
			name: "filler match in a negative document",
			text: "The memo mentions 111-22-3333 in passing.",
			gt:   func(string) []synth.GroundTruthSpan { return nil },
			want: map[string]want{"SIT_SSN": {fp: 1, samples: []string{"111-22-3333"}}, "SIT_IP": {}},
		},
		{
			name: "value mangled by extraction is missing",
			text: "SSN: 123-45-67 89",
			gt: func(string) []synth.GroundTruthSpan {
				return []synth.GroundTruthSpan{{SITID: "SIT_SSN", Start: 5, End: 16, Value: "123-45-6789"}}
			},
			want: map[string]want{"SIT_SSN": {missing: 1}},
		},
		{
			name: "partial overlap still counts",
			text: "id 9123-45-67890 end",
			gt: func(s string) []synth.GroundTruthSpan {
				return []synth.GroundTruthSpan{at(t, s, "SIT_SSN", "9123-45-67890")}
			},
			want: map[string]want{"SIT_SSN": {tp: 1}},
		},
		{
			name: "two matches inside one expected span count once",
			text: "pair 123-45-6789 987-65-4321 done",
			gt: func(s string) []synth.GroundTruthSpan {
				return []synth.GroundTruthSpan{at(t, s, "SIT_SSN", "123-45-6789 987-65-4321")}
			},
			want: map[string]want{"SIT_SSN": {tp: 1}},
		},
		{
			name: "one match cannot satisfy two expected spans",
			text: "x 123-45-6789 y",
			gt: func(string) []synth.GroundTruthSpan {
				return []synth.GroundTruthSpan{
					{SITID: "SIT_SSN", Start: 2, End: 8, Value: "123-45"},
					{SITID: "SIT_SSN", Start: 8, End: 13, Value: "-6789"},
				}
			},
			want: map[string]want{"SIT_SSN": {tp: 1, missing: 1}},
		},
		{
			name: "ground truth beyond extracted text is missing",
			text: "short",
			gt: func(string) []synth.GroundTruthSpan {
				return []synth.GroundTruthSpan{{SITID: "SIT_IP", Start: 40, End: 48, Value: "10.0.0.1"}}
			},
			want: map[string]want{"SIT_IP": {missing: 1}, "SIT_SSN": {}},
		},
		{
			name: "match of another SIT is not a TP",
			text: "host 10.0.0.1 and 555-12-3456",
			gt: func(s string) []synth.GroundTruthSpan {
				return []synth.GroundTruthSpan{at(t, s, "SIT_IP", "10.0.0.1")}
			},
			want: map[string]want{"SIT_IP": {tp: 1}, "SIT_SSN": {fp: 1, samples: []string{"555-12-3456"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &synth.Document{DocID: "doc1", Text: tt.text, GroundTruth: tt.gt(tt.text)}
			rep, err := eng.ScoreDocument(doc)
			if err != nil {
				t.Fatalf("ScoreDocument: %v", err)
			}
			for id, w := range tt.want {
				got := rep.SITs[id]
				if got == nil {
					t.Fatalf("no tally for %s", id)
				}
				if got.TP != w.tp || got.FP != w.fp || got.Missing != w.missing {
					t.Errorf("%s: tp=%d fp=%d missing=%d, want tp=%d fp=%d missing=%d",
						id, got.TP, got.FP, got.Missing, w.tp, w.fp, w.missing)
				}
				wantSamples := w.samples
				if wantSamples == nil {
					wantSamples = []string{}
				}
				if diff := cmp.Diff(wantSamples, got.SampleValues()); diff != "" {
					t.Errorf("%s samples (-want +got):\n%s", id, diff)
				}
			}
		})
	}
}

func TestScoreDocument_MalformedInput(t *testing.T) {
	eng := NewEngine(testRegistry(t))
	tests := []struct {
		name string
		doc  synth.Document
	}{
		{"missing doc id", synth.Document{Text: "x"}},
		{"missing text", synth.Document{DocID: "d"}},
		{"negative start", synth.Document{DocID: "d", Text: "x", GroundTruth: []synth.GroundTruthSpan{{SITID: "SIT_SSN", Start: -1, End: 2}}}},
		{"empty span", synth.Document{DocID: "d", Text: "x", GroundTruth: []synth.GroundTruthSpan{{SITID: "SIT_SSN", Start: 3, End: 3}}}},
		{"unknown sit", synth.Document{DocID: "d", Text: "x", GroundTruth: []synth.GroundTruthSpan{{SITID: "SIT_NOPE", Start: 0, End: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.ScoreDocument(&tt.doc)
			var scErr *ScoringError
			if !errors.As(err, &scErr) {
				t.Fatalf("expected ScoringError, got %v", err)
			}
		})
	}
}

func TestScore_SkipsBadDocumentsAndJoinsErrors(t *testing.T) {
	eng := NewEngine(testRegistry(t))
	docs := []synth.Document{
		{DocID: "a", Text: "ssn 123-45-6789"},
		{DocID: "b"},
		{Text: "orphan"},
		{DocID: "c", Text: "nothing to see"},
	}
	rep, err := eng.Score(docs)
	if err == nil {
		t.Fatal("expected joined error")
	}
	if n := len(err.(interface{ Unwrap() []error }).Unwrap()); n != 2 {
		t.Errorf("joined %d errors, want 2", n)
	}
	if rep.Documents != 2 {
		t.Errorf("Documents = %d, want 2", rep.Documents)
	}
	if rep.SITs["SIT_SSN"].FP != 1 {
		t.Errorf("SIT_SSN fp = %d, want 1", rep.SITs["SIT_SSN"].FP)
	}
}

func TestScore_NoMatchesIsNotAnError(t *testing.T) {
	rep, err := NewEngine(testRegistry(t)).Score([]synth.Document{{DocID: "d", Text: "plain words only"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for id, tally := range rep.SITs {
		if tally.TP+tally.FP+tally.Missing != 0 {
			t.Errorf("%s: expected an all-zero tally, got %+v", id, tally)
		}
	}
}

func synthesizeCorpus(t *testing.T, reg *sit.Registry, targets map[string]int, pol plan.Policy, seed uint64) []synth.Document {
	t.Helper()
	p, err := plan.Plan(reg, targets, pol, seed)
	if err != nil {
		t.Fatal(err)
	}
	s := synth.New(reg)
	docs := make([]synth.Document, 0, len(p.Documents))
	for i, spec := range p.Documents {
		doc, err := s.Synthesize(spec, seed+uint64(i))
		if err != nil {
			t.Fatal(err)
		}
		docs = append(docs, *doc)
	}
	return docs
}

func TestScore_ZeroSITDocumentsHaveNoMissing(t *testing.T) {
	reg := sit.Builtin()
	pol := plan.DefaultPolicy()
	pol.NegativeDocs = 12
	docs := synthesizeCorpus(t, reg, map[string]int{}, pol, 5)
	if len(docs) != 12 {
		t.Fatalf("expected 12 negative documents, got %d", len(docs))
	}

	rep, err := NewEngine(reg).Score(docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.SITs) != reg.Len() {
		t.Errorf("report covers %d SITs, want %d", len(rep.SITs), reg.Len())
	}
	for id, tally := range rep.SITs {
		if tally.Missing != 0 || tally.TP != 0 {
			t.Errorf("%s: tp=%d missing=%d on negative documents", id, tally.TP, tally.Missing)
		}
	}
}

func TestScore_SynthesizedCorpusFullRecall(t *testing.T) {
	reg := sit.Builtin()
	targets := map[string]int{}
	for _, id := range reg.IDs() {
		targets[id] = 15
	}
	docs := synthesizeCorpus(t, reg, targets, plan.DefaultPolicy(), 42)

	rep, err := NewEngine(reg).Score(docs)
	if err != nil {
		t.Fatal(err)
	}
	for id, want := range targets {
		tally := rep.SITs[id]
		if tally.TP != want || tally.Missing != 0 {
			t.Errorf("%s: tp=%d missing=%d, want tp=%d missing=0", id, tally.TP, tally.Missing, want)
		}
	}
	// Cross-SIT collisions are possible, so fp is logged rather than asserted.
	total := rep.Total()
	t.Logf("corpus: docs=%d tp=%d fp=%d missing=%d", rep.Documents, total.TP, total.FP, total.Missing)
}

func TestMerge_AssociativeAndCommutative(t *testing.T) {
	reg := testRegistry(t)
	eng := NewEngine(reg, WithSampleCap(3))

	var docs []synth.Document
	for i := 0; i < 9; i++ {
		text := fmt.Sprintf("planted 123-45-67%02d noise 4%02d-11-2222 and 10.0.%d.1", i, i, i)
		docs = append(docs, synth.Document{
			DocID:       fmt.Sprintf("doc_%05d", 9-i),
			Text:        text,
			GroundTruth: []synth.GroundTruthSpan{at(t, text, "SIT_SSN", fmt.Sprintf("123-45-67%02d", i))},
		})
	}

	whole, err := eng.Score(docs)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := eng.Score(docs[:2])
	b, _ := eng.Score(docs[2:6])
	c, _ := eng.Score(docs[6:])

	// (a+b)+c
	left := eng.NewReport()
	left.Merge(a)
	left.Merge(b)
	left.Merge(c)

	// a+(c+b)
	cb := eng.NewReport()
	cb.Merge(c)
	cb.Merge(b)
	right := eng.NewReport()
	right.Merge(cb)
	right.Merge(a)

	if diff := cmp.Diff(whole, left); diff != "" {
		t.Errorf("whole vs (a+b)+c (-whole +left):\n%s", diff)
	}
	if diff := cmp.Diff(left, right); diff != "" {
		t.Errorf("merge order changed the result (-left +right):\n%s", diff)
	}

	ssn := whole.SITs["SIT_SSN"]
	if ssn.TP != 9 || ssn.FP != 9 {
		t.Errorf("SIT_SSN tp=%d fp=%d, want 9/9", ssn.TP, ssn.FP)
	}
	if diff := cmp.Diff([]string{"408-11-2222", "407-11-2222", "406-11-2222"}, ssn.SampleValues()); diff != "" {
		t.Errorf("samples should be the smallest by doc id (-want +got):\n%s", diff)
	}
	if whole.SITs["SIT_IP"].FP != 9 {
		t.Errorf("SIT_IP fp = %d, want 9", whole.SITs["SIT_IP"].FP)
	}
	if len(whole.Findings) != 18 || whole.Findings[0].DocID != "doc_00001" {
		t.Errorf("expected 18 findings starting at doc_00001, got %d: %+v", len(whole.Findings), whole.Findings)
	}
}

func TestScoreDocument_Findings(t *testing.T) {
	eng := NewEngine(testRegistry(t))
	text := "SSN: 123-45-67 89 and stray 555-12-3456"
	doc := &synth.Document{
		DocID:       "doc_7",
		Text:        text,
		GroundTruth: []synth.GroundTruthSpan{{SITID: "SIT_SSN", Start: 5, End: 16, Value: "123-45-6789"}},
	}
	rep, err := eng.ScoreDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := []Finding{
		{DocID: "doc_7", SITID: "SIT_SSN", Kind: FindingFP, Found: 1, Sample: "555-12-3456"},
		{DocID: "doc_7", SITID: "SIT_SSN", Kind: FindingMissing, Found: 0, Expected: 1},
	}
	if diff := cmp.Diff(want, rep.Findings); diff != "" {
		t.Errorf("findings (-want +got):\n%s", diff)
	}
	if got := rep.Findings[1].String(); got != "TP missing matches for doc doc_7, sit SIT_SSN: found 0 expected 1" {
		t.Errorf("unexpected finding line %q", got)
	}

	clean, err := eng.ScoreDocument(&synth.Document{DocID: "doc_8", Text: "nothing here"})
	if err != nil {
		t.Fatal(err)
	}
	if len(clean.Findings) != 0 {
		t.Errorf("clean document produced findings: %+v", clean.Findings)
	}
}

func TestTally_Metrics(t *testing.T) {
	tally := &Tally{TP: 8, FP: 2, Missing: 8}
	if got := tally.Precision(); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Precision = %v, want 0.8", got)
	}
	if got := tally.Recall(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Recall = %v, want 0.5", got)
	}
	if got := tally.F1(); math.Abs(got-2*0.8*0.5/1.3) > 1e-9 {
		t.Errorf("F1 = %v", got)
	}
	if got := (&Tally{}).F1(); got != 0 {
		t.Errorf("empty F1 = %v, want 0", got)
	}
	if tally.Planted() != 16 {
		t.Errorf("Planted = %d, want 16", tally.Planted())
	}
}

func TestWithSampleCap(t *testing.T) {
	eng := NewEngine(testRegistry(t), WithSampleCap(1))
	rep, err := eng.ScoreDocument(&synth.Document{DocID: "d", Text: "111-11-1111 222-22-2222"})
	if err != nil {
		t.Fatal(err)
	}
	got := rep.SITs["SIT_SSN"]
	if got.FP != 2 {
		t.Errorf("fp = %d, want 2", got.FP)
	}
	if diff := cmp.Diff([]string{"111-11-1111"}, got.SampleValues()); diff != "" {
		t.Errorf("samples (-want +got):\n%s", diff)
	}
}

func TestScoreDocument_Decoys(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		name         string
		text         string
		decoy        string
		opts         []Option
		fp           int
		decoyHits    int
		placeholders int
	}{
		{
			name:  "decoy the pattern rejects",
			text:  "SSN 123-45-6789, masked copy XXX-XX-XXXX.",
			decoy: "XXX-XX-XXXX",
		},
		{
			name:      "decoy the pattern accepts",
			text:      "SSN 123-45-6789, dummy copy 000-00-0000.",
			decoy:     "000-00-0000",
			fp:        1,
			decoyHits: 1,
		},
		{
			name:         "accepted decoy dropped by placeholder filter",
			text:         "SSN 123-45-6789, dummy copy 000-00-0000.",
			decoy:        "000-00-0000",
			opts:         []Option{WithPlaceholderFilter(true)},
			placeholders: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := synth.Document{
				DocID:       "d",
				Text:        tt.text,
				GroundTruth: []synth.GroundTruthSpan{at(t, tt.text, "SIT_SSN", "123-45-6789")},
				Decoys:      []synth.GroundTruthSpan{at(t, tt.text, "SIT_SSN", tt.decoy)},
			}
			rep, err := NewEngine(reg, tt.opts...).ScoreDocument(&doc)
			if err != nil {
				t.Fatal(err)
			}
			got := rep.SITs["SIT_SSN"]
			want := &Tally{TP: 1, FP: tt.fp, Docs: 1, Decoys: 1, DecoyHits: tt.decoyHits, Placeholders: tt.placeholders}
			if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Tally{}, "FPSamples")); diff != "" {
				t.Errorf("tally (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScoreDocument_MalformedDecoy(t *testing.T) {
	doc := synth.Document{DocID: "d", Text: "x", Decoys: []synth.GroundTruthSpan{{SITID: "SIT_SSN", Start: 2, End: 1}}}
	_, err := NewEngine(testRegistry(t)).ScoreDocument(&doc)
	var scErr *ScoringError
	if !errors.As(err, &scErr) {
		t.Fatalf("expected ScoringError, got %v", err)
	}
}
