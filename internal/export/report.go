package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gzhole/sitbench/internal/score"
)

// maxIssues caps the issue lines in the text report.
const maxIssues = 500

// ReportInput is everything the validation report shows.
type ReportInput struct {
	Report  *score.Report
	Targets map[string]int
	Issues  []string
}

// SITSummary is one SIT's line in the structured report.
type SITSummary struct {
	SITID     string   `json:"sit_id"`
	Target    int      `json:"target"`
	Planted   int      `json:"planted"`
	Docs      int      `json:"docs"`
	TP        int      `json:"tp_count"`
	FP        int      `json:"fp_count"`
	Missing   int      `json:"missing_count"`
	Decoys    int      `json:"decoys"`
	DecoyHits int      `json:"decoy_hits"`
	Precision float64  `json:"precision"`
	Recall    float64  `json:"recall"`
	F1        float64  `json:"f1"`
	FPSamples []string `json:"fp_samples"`
}

// Summary is the structured validation report.
type Summary struct {
	Documents     int          `json:"documents"`
	AvgSITsPerDoc float64      `json:"avg_sits_per_doc"`
	AvgInstances  float64      `json:"avg_instances_per_sit"`
	TP            int          `json:"tp_count"`
	FP            int          `json:"fp_count"`
	Missing       int          `json:"missing_count"`
	Decoys        int          `json:"decoys"`
	DecoyHits     int          `json:"decoy_hits"`
	Placeholders  int          `json:"placeholders_ignored"`
	Precision     float64      `json:"precision"`
	Recall        float64      `json:"recall"`
	F1            float64      `json:"f1"`
	SITs          []SITSummary `json:"sits"`
	Issues        []string     `json:"issues"`
}

// Summarize flattens the report. SITs are listed by id; a SIT appears when it
// had a target, a planted occurrence or a false positive. Issues lists the
// caller's issues followed by the report's per-document findings.
func Summarize(in ReportInput) Summary {
	rep := in.Report
	total := rep.Total()
	s := Summary{
		Documents:     rep.Documents,
		AvgSITsPerDoc: rep.AvgSITsPerDoc(),
		TP:            total.TP,
		FP:            total.FP,
		Missing:       total.Missing,
		Decoys:        total.Decoys,
		DecoyHits:     total.DecoyHits,
		Placeholders:  total.Placeholders,
		Precision:     total.Precision(),
		Recall:        total.Recall(),
		F1:            total.F1(),
		SITs:          []SITSummary{},
		Issues:        append([]string{}, in.Issues...),
	}
	for _, f := range rep.Findings {
		s.Issues = append(s.Issues, f.String())
	}
	if total.Docs > 0 {
		s.AvgInstances = float64(total.Planted()) / float64(total.Docs)
	}

	for _, id := range rep.IDs() {
		t := rep.SITs[id]
		target := in.Targets[id]
		if target == 0 && t.Planted() == 0 && t.FP == 0 && t.Decoys == 0 {
			continue
		}
		s.SITs = append(s.SITs, SITSummary{
			SITID:     id,
			Target:    target,
			Planted:   t.Planted(),
			Docs:      t.Docs,
			TP:        t.TP,
			FP:        t.FP,
			Missing:   t.Missing,
			Decoys:    t.Decoys,
			DecoyHits: t.DecoyHits,
			Precision: t.Precision(),
			Recall:    t.Recall(),
			F1:        t.F1(),
			FPSamples: t.SampleValues(),
		})
	}
	return s
}

// WriteReportText writes the human-readable validation report.
func WriteReportText(w io.Writer, in ReportInput) error {
	s := Summarize(in)
	var b strings.Builder

	b.WriteString("Validation report\n=================\n\n")
	fmt.Fprintf(&b, "Total unique SITs observed: %d\n", len(s.SITs))
	fmt.Fprintf(&b, "Documents scored: %d\n\n", s.Documents)

	for _, sit := range s.SITs {
		fmt.Fprintf(&b, "%s: docs=%d, tp=%d, fp=%d, missing=%d, precision=%.3f, recall=%.3f\n",
			sit.SITID, sit.Docs, sit.TP, sit.FP, sit.Missing, sit.Precision, sit.Recall)
		if sit.Decoys > 0 {
			fmt.Fprintf(&b, "  decoys: planted=%d, matched=%d\n", sit.Decoys, sit.DecoyHits)
		}
		if sit.Planted < sit.Target {
			fmt.Fprintf(&b, "  >>> WARNING: only %d occurrences planted for %s (target %d)\n", sit.Planted, sit.SITID, sit.Target)
		}
		if len(sit.FPSamples) > 0 {
			fmt.Fprintf(&b, "  fp_samples: %s\n", quoteAll(sit.FPSamples))
		}
	}

	b.WriteString("\nDistribution summary:\n\n")
	fmt.Fprintf(&b, "Average SITs per doc: %.2f\n", s.AvgSITsPerDoc)
	fmt.Fprintf(&b, "Average instances per SIT (across docs): %.2f\n", s.AvgInstances)
	fmt.Fprintf(&b, "Corpus: tp=%d, fp=%d, missing=%d, precision=%.3f, recall=%.3f, f1=%.3f\n",
		s.TP, s.FP, s.Missing, s.Precision, s.Recall, s.F1)
	if s.Placeholders > 0 {
		fmt.Fprintf(&b, "Placeholder matches ignored: %d\n", s.Placeholders)
	}

	fmt.Fprintf(&b, "\nDetected issues (first %d lines):\n\n", maxIssues)
	if len(s.Issues) == 0 {
		b.WriteString("No issues detected.\n")
	}
	for i, issue := range s.Issues {
		if i == maxIssues {
			break
		}
		b.WriteString(issue + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteReportJSON writes the structured validation report.
func WriteReportJSON(w io.Writer, in ReportInput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Summarize(in))
}

func quoteAll(values []string) string {
	q := make([]string, len(values))
	for i, v := range values {
		q[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
