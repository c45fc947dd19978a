package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/logger"
	"github.com/gzhole/sitbench/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a distribution plan and write plan.json, mapping.csv and manifest.csv",
	Long: `Build the per-document SIT distribution from the run config without
synthesizing any text. The plan is deterministic for a given seed.

  sitbench plan --out ./corpus`,
	RunE: planCommand,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

// buildPlan resolves targets and plans the corpus.
func buildPlan(e *env, lg *logger.RunLogger) (*plan.DistributionPlan, error) {
	targets, err := e.cfg.ResolveTargets(e.reg)
	if err != nil {
		return nil, err
	}
	p, err := plan.Plan(e.reg, targets, e.cfg.Policy, e.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to plan corpus: %w", err)
	}
	_ = lg.Logf(logger.StagePlan, "planned %d documents for %d SITs (seed %d)", len(p.Documents), len(targets), p.Seed)
	return p, nil
}

func planCommand(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
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
	if err := writePlanFiles(e.cfg.OutputDir, p, e.cfg.RenderFormats[0]); err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout())
	occurrences := 0
	for _, d := range p.Documents {
		occurrences += d.Occurrences()
	}
	out.printf("Planned %d documents, %d SIT occurrences (seed %d)\n", len(p.Documents), occurrences, p.Seed)
	if decoys := p.DecoyTotals(); len(decoys) > 0 {
		n := 0
		for _, c := range decoys {
			n += c
		}
		out.printf("  %d decoy values across %d SITs\n", n, len(decoys))
	}
	out.printf("  %s\n", filepath.Join(e.cfg.OutputDir, planFile))
	out.printf("  %s\n", filepath.Join(e.cfg.OutputDir, mappingFile))
	out.printf("  %s\n", filepath.Join(e.cfg.OutputDir, manifestFile))
	return nil
}
