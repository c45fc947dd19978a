package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/corpus"
	"github.com/gzhole/sitbench/internal/export"
	"github.com/gzhole/sitbench/internal/logger"
	"github.com/gzhole/sitbench/internal/render"
	"github.com/gzhole/sitbench/internal/synth"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Plan and synthesize the corpus, render it and write ground_truth.json",
	Long: `Plan the corpus, synthesize every document, render each one to every
configured render format, and write the plan files plus ground_truth.json.

  sitbench generate --out ./corpus
  sitbench score --out ./corpus`,
	RunE: generateCommand,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func renderers(formats []string) ([]render.Renderer, error) {
	reg := render.Default()
	out := make([]render.Renderer, 0, len(formats))
	for _, f := range formats {
		r, err := reg.Lookup(f)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func generateCommand(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	rs, err := renderers(e.cfg.RenderFormats)
	if err != nil {
		return err
	}
	lg, err := e.openLog()
	if err != nil {
		return err
	}
	defer lg.Close()

	p, err := buildPlan(e, lg)
	if err != nil {
		return err
	}
	verbosef(cmd, "planned %d documents", len(p.Documents))

	opts := e.cfg.Options()
	opts.Log = lg
	batch, err := corpus.Generate(cmd.Context(), p, synth.New(e.reg), opts)
	if err != nil {
		return err
	}
	verbosef(cmd, "synthesized %d documents (%d failed)", len(batch.Documents), len(batch.Failures))

	dir := e.cfg.OutputDir
	if err := writePlanFiles(dir, p, rs[0].Format()); err != nil {
		return err
	}

	formats := make([]string, len(rs))
	for i, r := range rs {
		formats[i] = r.Format()
		for _, doc := range batch.Documents {
			data, err := r.Render(&doc)
			if err != nil {
				return fmt.Errorf("render %s as %s: %w", doc.DocID, r.Format(), err)
			}
			path := filepath.Join(dir, docsDir, render.Filename(doc.DocID, r.Format()))
			if err := writeFile(path, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}); err != nil {
				return err
			}
		}
		_ = lg.Logf(logger.StageRender, "rendered %d documents as %s", len(batch.Documents), r.Format())
	}

	gt := export.NewGroundTruth(p.Seed, lg.RunID(), batch.Documents, formats)
	if err := writeFile(filepath.Join(dir, groundTruthFile), func(w io.Writer) error {
		return export.WriteGroundTruth(w, gt)
	}); err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout())
	out.printf("%s Generated %d documents in %s\n", out.icon(len(batch.Failures) == 0), len(batch.Documents), dir)
	for _, f := range batch.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "  skipped %s: %v\n", f.DocID, f.Err)
	}
	return nil
}
