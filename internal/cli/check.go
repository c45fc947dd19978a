package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/corpus"
	"github.com/gzhole/sitbench/internal/plan"
	"github.com/gzhole/sitbench/internal/render"
	"github.com/gzhole/sitbench/internal/score"
	"github.com/gzhole/sitbench/internal/synth"
)

// checkSamples is how many values each generator must produce cleanly.
const checkSamples = 20

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Self-test: verify every SIT generator, synthesis and renderer round trip",
	Long: `Run a quick diagnostic over the registered SITs. Every generator must
produce values its own pattern matches; a small synthesized corpus must be
recovered with full recall; every renderer must return the text it was given.
Nothing is written to disk.

  sitbench check`,
	RunE: checkCommand,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkCommand(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	p.banner("sitbench Self-Test")
	p.println()

	// Generators

	p.section("SIT Generators")
	genPass := 0
	r := rand.New(rand.NewPCG(e.cfg.Seed, 0))
	for _, d := range e.reg.Definitions() {
		bad := ""
		for i := 0; i < checkSamples && bad == ""; i++ {
			v, err := d.Generator().Generate(r)
			switch {
			case err != nil:
				bad = err.Error()
			case !matchesWhole(d, v):
				bad = fmt.Sprintf("%q does not match its pattern", v)
			}
		}
		if bad == "" {
			genPass++
		}
		p.printf("  %s  %-24s %s\n", p.icon(bad == ""), d.ID(), bad)
	}
	p.printf("\n  Generators: %d/%d passed\n\n", genPass, e.reg.Len())

	// Synthesis and scoring

	p.section("Synthesis Recall")
	targets := make(map[string]int, e.reg.Len())
	for _, id := range e.reg.IDs() {
		targets[id] = 5
	}
	pol := plan.DefaultPolicy()
	pol.NegativeDocs = 2
	pl, err := plan.Plan(e.reg, targets, pol, e.cfg.Seed)
	if err != nil {
		return fmt.Errorf("failed to plan self-test corpus: %w", err)
	}
	opts := corpus.Options{Workers: e.cfg.Workers, OnError: corpus.OnErrorSkip}
	batch, err := corpus.Generate(cmd.Context(), pl, synth.New(e.reg), opts)
	if err != nil {
		return err
	}
	rep, scoreErr := corpus.Score(cmd.Context(), batch.Documents, score.NewEngine(e.reg), opts)
	if rep == nil {
		return scoreErr
	}
	synthPass := 0
	for _, f := range batch.Failures {
		p.printf("  %s  %s\n", p.icon(false), f.Err)
	}
	for _, id := range e.reg.IDs() {
		t := rep.Tally(id)
		ok := t.Missing == 0 && t.TP == targets[id]
		if ok {
			synthPass++
		}
		p.printf("  %s  %-24s tp=%d missing=%d fp=%d\n", p.icon(ok), id, t.TP, t.Missing, t.FP)
	}
	p.printf("\n  Synthesis: %d/%d SITs fully recovered\n\n", synthPass, e.reg.Len())

	// Renderers

	p.section("Renderer Round Trip")
	reg := render.Default()
	renderPass := 0
	for _, name := range reg.Formats() {
		rr, _ := reg.Lookup(name)
		ok := true
		detail := ""
		extracted, err := corpus.RoundTrip(batch.Documents, rr)
		if err != nil {
			ok, detail = false, err.Error()
		} else {
			for i, d := range extracted {
				if d.Text != batch.Documents[i].Text {
					ok, detail = false, d.DocID+": extracted text differs"
					break
				}
			}
		}
		if ok {
			renderPass++
		}
		p.printf("  %s  %-6s %s\n", p.icon(ok), name, detail)
	}
	p.printf("\n  Renderers: %d/%d passed\n\n", renderPass, len(reg.Formats()))

	// Summary

	total := e.reg.Len()*2 + len(reg.Formats())
	passed := genPass + synthPass + renderPass
	p.banner(fmt.Sprintf("%d/%d checks passed", passed, total))
	if passed != total {
		return fmt.Errorf("self-test failed: %d checks did not pass", total-passed)
	}
	return nil
}
