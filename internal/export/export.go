// Package export writes the plan mapping, the per-document manifest, the
// ground-truth file and the validation report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gzhole/sitbench/internal/plan"
	"github.com/gzhole/sitbench/internal/render"
	"github.com/gzhole/sitbench/internal/synth"
)

// WriteMapping writes one doc_id,sit_id,occurrence_count row per (document, SIT).
func WriteMapping(w io.Writer, p *plan.DistributionPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"doc_id", "sit_id", "occurrence_count"}); err != nil {
		return err
	}
	for _, r := range p.Rows() {
		if err := cw.Write([]string{r.DocID, r.SITID, strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteManifest writes one row per document. SIT ids, labels, counts and
// confidences are joined with ';' in the same order. Decoy entries carry the
// FP label.
func WriteManifest(w io.Writer, p *plan.DistributionPlan, renderFormat string) error {
	cw := csv.NewWriter(w)
	header := []string{"doc_id", "filename", "format", "word_count_target", "sit_ids", "labels", "instances", "confidences"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range p.Documents {
		ids := make([]string, len(d.SITs))
		labels := make([]string, len(d.SITs))
		counts := make([]string, len(d.SITs))
		confs := make([]string, len(d.SITs))
		for i, s := range d.SITs {
			ids[i] = s.SITID
			labels[i] = string(s.LabelOrTP())
			counts[i] = strconv.Itoa(s.Count)
			confs[i] = string(s.Confidence)
		}
		row := []string{
			d.DocID,
			render.Filename(d.DocID, renderFormat),
			d.Format,
			strconv.Itoa(d.WordTarget),
			strings.Join(ids, ";"),
			strings.Join(labels, ";"),
			strings.Join(counts, ";"),
			strings.Join(confs, ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePlan writes the plan as indented JSON.
func WritePlan(w io.Writer, p *plan.DistributionPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ReadPlan reads a plan written by WritePlan.
func ReadPlan(r io.Reader) (*plan.DistributionPlan, error) {
	var p plan.DistributionPlan
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

// GroundTruth is the on-disk record that lets a later `score` run find each
// rendered file and know what was planted in it.
type GroundTruth struct {
	Seed      uint64             `json:"seed"`
	RunID     string             `json:"run_id,omitempty"`
	Documents []GroundTruthEntry `json:"documents"`
}

type GroundTruthEntry struct {
	DocID  string                  `json:"doc_id"`
	Layout string                  `json:"layout"`
	Files  map[string]string       `json:"files"`
	Spans  []synth.GroundTruthSpan `json:"ground_truth"`
	Decoys []synth.GroundTruthSpan `json:"decoys,omitempty"`
}

// NewGroundTruth records docs with the file names they are rendered to.
func NewGroundTruth(seed uint64, runID string, docs []synth.Document, formats []string) *GroundTruth {
	gt := &GroundTruth{Seed: seed, RunID: runID, Documents: make([]GroundTruthEntry, 0, len(docs))}
	for _, d := range docs {
		files := make(map[string]string, len(formats))
		for _, f := range formats {
			files[f] = render.Filename(d.DocID, f)
		}
		gt.Documents = append(gt.Documents, GroundTruthEntry{
			DocID:  d.DocID,
			Layout: d.Format,
			Files:  files,
			Spans:  d.GroundTruth,
			Decoys: d.Decoys,
		})
	}
	return gt
}

func WriteGroundTruth(w io.Writer, gt *GroundTruth) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(gt)
}

func ReadGroundTruth(r io.Reader) (*GroundTruth, error) {
	var gt GroundTruth
	if err := json.NewDecoder(r).Decode(&gt); err != nil {
		return nil, fmt.Errorf("decode ground truth: %w", err)
	}
	return &gt, nil
}

// Document rebuilds a scorable document from an entry and extracted text.
func (e GroundTruthEntry) Document(text string) synth.Document {
	spans := e.Spans
	if spans == nil {
		spans = []synth.GroundTruthSpan{}
	}
	return synth.Document{DocID: e.DocID, Format: e.Layout, Text: text, GroundTruth: spans, Decoys: e.Decoys}
}
