package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/corpus"
	"github.com/gzhole/sitbench/internal/export"
	"github.com/gzhole/sitbench/internal/render"
)

var (
	runVia  string
	runJSON bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan, synthesize and score in one process",
	Long: `Plan, synthesize and score the corpus in memory and print the
validation report. Nothing is written to the output directory.

With --via, each document is rendered to the named format and its text
extracted back before scoring.

Example:
  sitbench run
  sitbench run --via eml --json`,
	RunE: runCommand,
}

func init() {
	runCmd.Flags().StringVar(&runVia, "via", "", "Round-trip documents through this render format before scoring")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(runCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	targets, err := e.cfg.ResolveTargets(e.reg)
	if err != nil {
		return err
	}

	var via render.Renderer
	if runVia != "" {
		if via, err = render.Default().Lookup(runVia); err != nil {
			return err
		}
	}

	lg, err := e.openLog()
	if err != nil {
		return err
	}
	defer lg.Close()

	opts := e.cfg.Options()
	opts.Log = lg
	res, err := corpus.Run(cmd.Context(), e.reg, corpus.RunConfig{
		Targets:   targets,
		Policy:    e.cfg.Policy,
		Seed:      e.cfg.Seed,
		SampleCap: e.cfg.SampleCap,
		Via:       via,
		Options:   opts,

		IgnorePlaceholders: e.cfg.IgnorePlaceholders,
	})
	if err != nil {
		return err
	}
	verbosef(cmd, "run %s: %d documents planned, %d synthesized", lg.RunID(), len(res.Plan.Documents), len(res.Batch.Documents))

	var issues []string
	for _, f := range res.Batch.Failures {
		issues = append(issues, f.Err.Error())
	}
	issues = append(issues, errorLines(res.ScoreErr)...)

	in := export.ReportInput{Report: res.Report, Targets: targets, Issues: issues}
	if runJSON {
		return export.WriteReportJSON(cmd.OutOrStdout(), in)
	}
	if err := export.WriteReportText(cmd.OutOrStdout(), in); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
