package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/corpus"
	"github.com/gzhole/sitbench/internal/export"
	"github.com/gzhole/sitbench/internal/logger"
	"github.com/gzhole/sitbench/internal/render"
	"github.com/gzhole/sitbench/internal/score"
	"github.com/gzhole/sitbench/internal/synth"
)

var scoreFormat string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a generated corpus and write the validation report",
	Long: `Read ground_truth.json and the rendered documents from the output
directory, extract their text, run every SIT pattern over it, and reconcile
the matches against the planted spans.

  sitbench score --out ./corpus
  sitbench score --out ./corpus --format eml`,
	RunE: scoreCommand,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "", "Rendered format to score (default: first render format)")
	rootCmd.AddCommand(scoreCmd)
}

// loadRendered reads and extracts every document of gt rendered as r's format.
// Documents that cannot be read are reported as issues.
func loadRendered(dir string, gt *export.GroundTruth, r render.Renderer) ([]synth.Document, []string) {
	var docs []synth.Document
	var issues []string
	for _, entry := range gt.Documents {
		name, ok := entry.Files[r.Format()]
		if !ok {
			issues = append(issues, fmt.Sprintf("%s: not rendered as %s", entry.DocID, r.Format()))
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, docsDir, name))
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", entry.DocID, err))
			continue
		}
		text, err := r.Extract(data)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: extract %s: %v", entry.DocID, r.Format(), err))
			continue
		}
		docs = append(docs, entry.Document(text))
	}
	return docs, issues
}

func scoreCommand(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	format := scoreFormat
	if format == "" {
		format = e.cfg.RenderFormats[0]
	}
	r, err := render.Default().Lookup(format)
	if err != nil {
		return err
	}
	lg, err := e.openLog()
	if err != nil {
		return err
	}
	defer lg.Close()

	dir := e.cfg.OutputDir
	gt, err := readFile(filepath.Join(dir, groundTruthFile), export.ReadGroundTruth)
	if err != nil {
		return fmt.Errorf("failed to read ground truth (run 'sitbench generate' first): %w", err)
	}
	// Targets come from the plan that produced the corpus, not the current config.
	var targets map[string]int
	if p, err := readFile(filepath.Join(dir, planFile), export.ReadPlan); err == nil {
		targets = p.Targets
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	docs, issues := loadRendered(dir, gt, r)
	if len(issues) > 0 && e.cfg.OnError == corpus.OnErrorAbort {
		return fmt.Errorf("cannot load %d rendered documents: %s", len(issues), issues[0])
	}
	verbosef(cmd, "loaded %d documents as %s", len(docs), r.Format())

	opts := e.cfg.Options()
	opts.Log = lg
	eng := score.NewEngine(e.reg, score.WithSampleCap(e.cfg.SampleCap), score.WithPlaceholderFilter(e.cfg.IgnorePlaceholders))
	rep, scoreErr := corpus.Score(cmd.Context(), docs, eng, opts)
	if rep == nil {
		return scoreErr
	}
	issues = append(issues, errorLines(scoreErr)...)

	total := rep.Total()
	_ = lg.Logf(logger.StageScore, "scored %d documents: tp=%d fp=%d missing=%d", rep.Documents, total.TP, total.FP, total.Missing)

	in := export.ReportInput{Report: rep, Targets: targets, Issues: issues}
	if err := writeReports(dir, in); err != nil {
		return err
	}
	return export.WriteReportText(cmd.OutOrStdout(), in)
}
