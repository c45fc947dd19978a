package score

import (
	"fmt"
	"sort"
)

// DefaultSampleCap bounds fp_samples per SIT.
const DefaultSampleCap = 10

// FindingCap bounds the per-document findings kept in a report.
const FindingCap = 500

// Sample is one false-positive match kept for the report.
type Sample struct {
	DocID string `json:"doc_id"`
	Start int    `json:"start"`
	Value string `json:"value"`
}

func (s Sample) less(o Sample) bool {
	if s.DocID != o.DocID {
		return s.DocID < o.DocID
	}
	if s.Start != o.Start {
		return s.Start < o.Start
	}
	return s.Value < o.Value
}

// FindingKind classifies a per-document finding.
type FindingKind string

const (
	FindingMissing FindingKind = "missing"
	FindingFP      FindingKind = "fp"
)

// Finding records one document where a SIT was under-detected or produced
// false positives.
type Finding struct {
	DocID    string      `json:"doc_id"`
	SITID    string      `json:"sit_id"`
	Kind     FindingKind `json:"kind"`
	Found    int         `json:"found"`
	Expected int         `json:"expected"`
	Sample   string      `json:"sample,omitempty"`
}

func (f Finding) String() string {
	if f.Kind == FindingMissing {
		return fmt.Sprintf("TP missing matches for doc %s, sit %s: found %d expected %d", f.DocID, f.SITID, f.Found, f.Expected)
	}
	return fmt.Sprintf("FP contains valid-looking match in doc %s, sit %s: %d match(es), sample %q", f.DocID, f.SITID, f.Found, f.Sample)
}

func (f Finding) less(o Finding) bool {
	if f.DocID != o.DocID {
		return f.DocID < o.DocID
	}
	if f.SITID != o.SITID {
		return f.SITID < o.SITID
	}
	return f.Kind < o.Kind
}

// Tally is the per-SIT outcome. Decoys counts planted lookalikes and
// DecoyHits the false positives that landed on one. Placeholders counts
// matches dropped by the placeholder filter.
type Tally struct {
	TP           int      `json:"tp_count"`
	FP           int      `json:"fp_count"`
	Missing      int      `json:"missing_count"`
	Docs         int      `json:"docs"`
	Decoys       int      `json:"decoys"`
	DecoyHits    int      `json:"decoy_hits"`
	Placeholders int      `json:"placeholders_ignored"`
	FPSamples    []Sample `json:"fp_samples"`
}

// Planted is the number of ground-truth occurrences seen for the SIT.
func (t *Tally) Planted() int { return t.TP + t.Missing }

// Precision is TP/(TP+FP); zero when nothing was detected.
func (t *Tally) Precision() float64 {
	if t.TP+t.FP == 0 {
		return 0
	}
	return float64(t.TP) / float64(t.TP+t.FP)
}

// Recall is TP/(TP+Missing); zero when nothing was planted.
func (t *Tally) Recall() float64 {
	if t.TP+t.Missing == 0 {
		return 0
	}
	return float64(t.TP) / float64(t.TP+t.Missing)
}

func (t *Tally) F1() float64 {
	p, r := t.Precision(), t.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// SampleValues returns the matched substrings of the kept samples.
func (t *Tally) SampleValues() []string {
	out := make([]string, len(t.FPSamples))
	for i, s := range t.FPSamples {
		out[i] = s.Value
	}
	return out
}

func (t *Tally) add(o *Tally, limit int) {
	t.TP += o.TP
	t.FP += o.FP
	t.Missing += o.Missing
	t.Docs += o.Docs
	t.Decoys += o.Decoys
	t.DecoyHits += o.DecoyHits
	t.Placeholders += o.Placeholders
	t.FPSamples = mergeSamples(t.FPSamples, o.FPSamples, limit)
}

func mergeSamples(a, b []Sample, limit int) []Sample {
	return mergeCapped(a, b, limit, Sample.less)
}

// mergeCapped keeps the limit smallest elements of a and b. Keeping a fixed
// order rather than arrival order makes Merge commutative.
func mergeCapped[T any](a, b []T, limit int, less func(x, y T) bool) []T {
	all := make([]T, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Report aggregates tallies across scored documents. DocSITs sums, over
// documents, the number of distinct SITs planted.
type Report struct {
	SITs      map[string]*Tally `json:"sits"`
	Documents int               `json:"documents"`
	DocSITs   int               `json:"doc_sits"`
	SampleCap int               `json:"sample_cap"`
	Findings  []Finding         `json:"findings"`
}

// NewReport returns an empty report with a zero tally for each id.
func NewReport(sampleCap int, ids ...string) *Report {
	r := &Report{SITs: make(map[string]*Tally, len(ids)), SampleCap: sampleCap, Findings: []Finding{}}
	for _, id := range ids {
		r.SITs[id] = &Tally{FPSamples: []Sample{}}
	}
	return r
}

// Tally returns the tally for id, creating it if needed.
func (r *Report) Tally(id string) *Tally {
	t, ok := r.SITs[id]
	if !ok {
		t = &Tally{FPSamples: []Sample{}}
		r.SITs[id] = t
	}
	return t
}

// IDs returns the SIT ids in the report, sorted.
func (r *Report) IDs() []string {
	ids := make([]string, 0, len(r.SITs))
	for id := range r.SITs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge adds other into r. Counts add; samples keep the SampleCap smallest by
// (DocID, Start) and findings the FindingCap smallest by (DocID, SITID).
// Merge is associative and commutative.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	if r.SITs == nil {
		r.SITs = map[string]*Tally{}
	}
	if r.SampleCap == 0 {
		r.SampleCap = other.SampleCap
	}
	r.Documents += other.Documents
	r.DocSITs += other.DocSITs
	for _, id := range other.IDs() {
		r.Tally(id).add(other.SITs[id], r.SampleCap)
	}
	r.Findings = mergeCapped(r.Findings, other.Findings, FindingCap, Finding.less)
}

// Total sums every SIT's counts. Samples are not carried.
func (r *Report) Total() Tally {
	var t Tally
	for _, s := range r.SITs {
		t.TP += s.TP
		t.FP += s.FP
		t.Missing += s.Missing
		t.Docs += s.Docs
		t.Decoys += s.Decoys
		t.DecoyHits += s.DecoyHits
		t.Placeholders += s.Placeholders
	}
	return t
}

// AvgSITsPerDoc is the mean number of distinct SITs planted per document.
func (r *Report) AvgSITsPerDoc() float64 {
	if r.Documents == 0 {
		return 0
	}
	return float64(r.DocSITs) / float64(r.Documents)
}
