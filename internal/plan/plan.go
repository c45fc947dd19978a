// Package plan decides, per synthetic document, which SITs it must contain and
// how many occurrences of each.
//
// Spread policy: every SIT's target total is first cut into slots (one slot =
// one SIT inside one document). Slots are shuffled with the seeded source and
// packed into documents whose width (distinct slots per document) is drawn
// from Policy.SITsPerDoc. Slot sizes come from Policy.Spread:
//
//	fixed     n = max(1, T/PerDoc) slots of T/n occurrences; the first T%n
//	          slots carry one extra occurrence.
//	bucketed  slot sizes are drawn from Policy.Instances until T is used up;
//	          an oversize draw is clamped to the remainder.
//
// Either way the per-SIT sum over the plan equals the target exactly.
//
// Decoys: when Policy.TPRatio is below 1, each SIT also gets decoy slots,
// labeled FP, so that TP slots make up TPRatio of that SIT's entries. Decoy
// slots are sized like TP slots, shuffled in with them, and never count
// toward the target.
package plan

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/gzhole/sitbench/internal/sit"
)

// Spread selects how a SIT's target total is cut into per-document slots.
type Spread string

const (
	SpreadFixed    Spread = "fixed"
	SpreadBucketed Spread = "bucketed"
)

// planStream separates the planner's PCG stream from the synthesizer's.
const planStream = 0x706c616e

// Label marks a planned entry as real occurrences (TP) or decoys (FP).
type Label string

const (
	LabelTP Label = "TP"
	LabelFP Label = "FP"
)

// Confidence grades an entry by how many instances it carries.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// mediumMinInstances is the instance count at which an entry is at least
// Medium confidence.
const mediumMinInstances = 3

// ConfidenceRules sets the High threshold for TP entries. FP entries are
// never High.
type ConfidenceRules struct {
	HighMinInstances int `yaml:"high_min_instances" json:"high_min_instances"`
}

func (c ConfidenceRules) assign(label Label, instances int) Confidence {
	high := c.HighMinInstances
	if high <= 0 {
		high = DefaultHighMinInstances
	}
	switch {
	case label != LabelFP && instances >= high:
		return ConfidenceHigh
	case instances >= mediumMinInstances:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// DefaultHighMinInstances is the default High confidence threshold.
const DefaultHighMinInstances = 6

// Policy controls document construction. TPRatio in (0,1) adds decoy entries;
// 0 and 1 both mean no decoys.
type Policy struct {
	Spread       Spread           `yaml:"spread" json:"spread"`
	PerDoc       int              `yaml:"per_doc" json:"per_doc"`
	Instances    Distribution     `yaml:"instance_count_distribution" json:"instance_count_distribution,omitempty"`
	SITsPerDoc   Distribution     `yaml:"sit_count_distribution" json:"sit_count_distribution,omitempty"`
	NegativeDocs int              `yaml:"negative_docs" json:"negative_docs"`
	Formats      []string         `yaml:"formats" json:"formats"`
	Size         SizeDistribution `yaml:"size_distribution" json:"size_distribution"`
	TPRatio      float64          `yaml:"tp_ratio" json:"tp_ratio"`
	Confidence   ConfidenceRules  `yaml:"confidence_rules" json:"confidence_rules"`
}

// DefaultPolicy mirrors the historical generator defaults.
func DefaultPolicy() Policy {
	return Policy{
		Spread: SpreadBucketed,
		PerDoc: 1,
		Instances: Distribution{
			"1":    0.55,
			"3-5":  0.25,
			"6-10": 0.15,
			">10":  0.05,
		},
		SITsPerDoc: Distribution{
			"1":   0.45,
			"2-3": 0.35,
			"4-6": 0.15,
			">6":  0.05,
		},
		NegativeDocs: 0,
		Formats:      []string{"document", "email", "chat", "email_with_attachment"},
		Size: SizeDistribution{
			MainRangeShare: 0.65,
			MainRangeMin:   150,
			MainRangeMax:   400,
			MinWords:       50,
			MaxWords:       1200,
		},
		TPRatio:    1,
		Confidence: ConfidenceRules{HighMinInstances: DefaultHighMinInstances},
	}
}

// SITCount is one SIT's entry inside a document. An empty Label means TP.
type SITCount struct {
	SITID      string     `json:"sit_id"`
	Count      int        `json:"count"`
	Label      Label      `json:"label,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
}

// Decoy reports whether the entry plants lookalike values instead of real ones.
func (s SITCount) Decoy() bool { return s.Label == LabelFP }

// LabelOrTP returns the entry's label, defaulting to TP.
func (s SITCount) LabelOrTP() Label {
	if s.Label == "" {
		return LabelTP
	}
	return s.Label
}

// DocumentSpec is the planner's instruction for one document.
type DocumentSpec struct {
	DocID      string     `json:"doc_id"`
	Format     string     `json:"format"`
	WordTarget int        `json:"word_count_target"`
	SITs       []SITCount `json:"sits"`
}

// Count returns the planned real occurrences of id in this document.
func (d DocumentSpec) Count(id string) int {
	n := 0
	for _, s := range d.SITs {
		if s.SITID == id && !s.Decoy() {
			n += s.Count
		}
	}
	return n
}

// Occurrences returns the total real occurrences across all SITs.
func (d DocumentSpec) Occurrences() int {
	n := 0
	for _, s := range d.SITs {
		if !s.Decoy() {
			n += s.Count
		}
	}
	return n
}

// Decoys returns the total decoy values across all SITs.
func (d DocumentSpec) Decoys() int {
	n := 0
	for _, s := range d.SITs {
		if s.Decoy() {
			n += s.Count
		}
	}
	return n
}

// DistributionPlan is the immutable output of Plan.
type DistributionPlan struct {
	Seed      uint64         `json:"seed"`
	Policy    Policy         `json:"policy"`
	Targets   map[string]int `json:"targets"`
	Documents []DocumentSpec `json:"documents"`
}

// Totals sums real occurrence counts per SIT across the plan. Decoys are not
// counted.
func (p *DistributionPlan) Totals() map[string]int {
	out := map[string]int{}
	for _, d := range p.Documents {
		for _, s := range d.SITs {
			if !s.Decoy() {
				out[s.SITID] += s.Count
			}
		}
	}
	return out
}

// DecoyTotals sums decoy counts per SIT across the plan.
func (p *DistributionPlan) DecoyTotals() map[string]int {
	out := map[string]int{}
	for _, d := range p.Documents {
		for _, s := range d.SITs {
			if s.Decoy() {
				out[s.SITID] += s.Count
			}
		}
	}
	return out
}

// Row is one line of the mapping export.
type Row struct {
	DocID string `json:"doc_id"`
	SITID string `json:"sit_id"`
	Count int    `json:"occurrence_count"`
}

// Rows flattens the plan into one row per (document, SIT) with real
// occurrences. Decoy entries are listed in the manifest only.
func (p *DistributionPlan) Rows() []Row {
	var rows []Row
	for _, d := range p.Documents {
		for _, s := range d.SITs {
			if !s.Decoy() {
				rows = append(rows, Row{DocID: d.DocID, SITID: s.SITID, Count: s.Count})
			}
		}
	}
	return rows
}

type slot struct {
	sitID string
	count int
	decoy bool
}

// Plan distributes targets over documents. Same registry, targets, policy and
// seed always yield an identical plan.
func Plan(reg *sit.Registry, targets map[string]int, policy Policy, seed uint64) (*DistributionPlan, error) {
	if err := checkTargets(reg, targets); err != nil {
		return nil, err
	}
	widths, instances, err := policy.compile()
	if err != nil {
		return nil, err
	}

	r := rand.New(rand.NewPCG(seed, planStream))

	var slots []slot
	for _, id := range reg.IDs() {
		total := targets[id]
		if total == 0 {
			continue
		}
		sizes := policy.split(total, instances, r)
		for _, n := range sizes {
			slots = append(slots, slot{sitID: id, count: n})
		}
		if def, _ := reg.Get(id); def.Decoy() == nil {
			continue
		}
		for k := decoyEntries(len(sizes), policy.TPRatio); k > 0; k-- {
			slots = append(slots, slot{sitID: id, count: policy.decoySize(instances, r), decoy: true})
		}
	}
	r.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

	var docs []DocumentSpec
	for i := 0; i < len(slots); {
		width := widths.draw(r)
		end := min(i+width, len(slots))
		docs = append(docs, DocumentSpec{SITs: pack(slots[i:end], policy.Confidence)})
		i = end
	}

	for k := 0; k < policy.NegativeDocs; k++ {
		pos := r.IntN(len(docs) + 1)
		docs = append(docs, DocumentSpec{})
		copy(docs[pos+1:], docs[pos:])
		docs[pos] = DocumentSpec{SITs: []SITCount{}}
	}

	for i := range docs {
		docs[i].DocID = fmt.Sprintf("doc_%05d", i+1)
		docs[i].Format = policy.Formats[r.IntN(len(policy.Formats))]
		docs[i].WordTarget = policy.Size.draw(r)
	}

	tcopy := make(map[string]int, len(targets))
	for k, v := range targets {
		tcopy[k] = v
	}
	return &DistributionPlan{Seed: seed, Policy: policy, Targets: tcopy, Documents: docs}, nil
}

// pack merges slots into an ordered SIT list. A SIT drawn twice with the same
// label for one document has its counts added so totals are preserved.
func pack(slots []slot, rules ConfidenceRules) []SITCount {
	type key struct {
		id    string
		decoy bool
	}
	out := make([]SITCount, 0, len(slots))
	at := map[key]int{}
	for _, s := range slots {
		k := key{s.sitID, s.decoy}
		if i, ok := at[k]; ok {
			out[i].Count += s.count
			continue
		}
		at[k] = len(out)
		label := LabelTP
		if s.decoy {
			label = LabelFP
		}
		out = append(out, SITCount{SITID: s.sitID, Count: s.count, Label: label})
	}
	for i := range out {
		out[i].Confidence = rules.assign(out[i].Label, out[i].Count)
	}
	return out
}

// decoyEntries is the number of decoy slots that makes tp slots a ratio share
// of all slots for one SIT.
func decoyEntries(tp int, ratio float64) int {
	if ratio <= 0 || ratio >= 1 {
		return 0
	}
	return int(math.Round(float64(tp) * (1 - ratio) / ratio))
}

func (p Policy) decoySize(instances *sampler, r *rand.Rand) int {
	if p.Spread == SpreadFixed {
		return p.PerDoc
	}
	return instances.draw(r)
}

func (p Policy) split(total int, instances *sampler, r *rand.Rand) []int {
	switch p.Spread {
	case SpreadFixed:
		n := max(1, total/p.PerDoc)
		base, rem := total/n, total%n
		sizes := make([]int, n)
		for i := range sizes {
			sizes[i] = base
			if i < rem {
				sizes[i]++
			}
		}
		return sizes
	default:
		var sizes []int
		for left := total; left > 0; {
			n := min(instances.draw(r), left)
			sizes = append(sizes, n)
			left -= n
		}
		return sizes
	}
}

func (p Policy) compile() (widths, instances *sampler, err error) {
	switch p.Spread {
	case SpreadFixed:
		if p.PerDoc < 1 {
			return nil, nil, &sit.ConfigError{Key: "per_doc", Reason: fmt.Sprintf("must be >= 1 for fixed spread, got %d", p.PerDoc)}
		}
	case SpreadBucketed:
		if instances, err = p.Instances.compile(); err != nil {
			return nil, nil, &sit.ConfigError{Key: "instance_count_distribution", Reason: "invalid", Err: err}
		}
	default:
		return nil, nil, &sit.ConfigError{Key: "spread", Reason: fmt.Sprintf("unknown spread policy %q", p.Spread)}
	}

	if len(p.SITsPerDoc) == 0 {
		widths = &sampler{buckets: []bucket{{lo: 1, hi: 1, weight: 1, spec: "1"}}, total: 1}
	} else if widths, err = p.SITsPerDoc.compile(); err != nil {
		return nil, nil, &sit.ConfigError{Key: "sit_count_distribution", Reason: "invalid", Err: err}
	}

	if len(p.Formats) == 0 {
		return nil, nil, &sit.ConfigError{Key: "formats", Reason: "at least one format is required"}
	}
	if p.TPRatio < 0 || p.TPRatio > 1 || math.IsNaN(p.TPRatio) {
		return nil, nil, &sit.ConfigError{Key: "tp_ratio", Reason: fmt.Sprintf("must be within [0,1], got %v", p.TPRatio)}
	}
	if p.NegativeDocs < 0 {
		return nil, nil, &sit.ConfigError{Key: "negative_docs", Reason: "must not be negative"}
	}
	if err := p.Size.validate(); err != nil {
		return nil, nil, &sit.ConfigError{Key: "size_distribution", Reason: "invalid", Err: err}
	}
	return widths, instances, nil
}

func checkTargets(reg *sit.Registry, targets map[string]int) error {
	ids := make([]string, 0, len(targets))
	for id := range targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !reg.Has(id) {
			return &sit.ConfigError{Key: id, Reason: "SIT id not in registry"}
		}
		if targets[id] < 0 {
			return &sit.ConfigError{Key: id, Reason: fmt.Sprintf("negative target %d", targets[id])}
		}
	}
	return nil
}
