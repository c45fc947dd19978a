package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gzhole/sitbench/internal/export"
	"github.com/gzhole/sitbench/internal/plan"
)

// Output layout under --out.
const (
	planFile        = "plan.json"
	mappingFile     = "mapping.csv"
	manifestFile    = "manifest.csv"
	groundTruthFile = "ground_truth.json"
	reportTextFile  = "validation_report.txt"
	reportJSONFile  = "validation_report.json"
	docsDir         = "docs"
)

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return read(f)
}

// writePlanFiles writes plan.json, mapping.csv and manifest.csv into dir.
func writePlanFiles(dir string, p *plan.DistributionPlan, renderFormat string) error {
	if err := writeFile(filepath.Join(dir, planFile), func(w io.Writer) error {
		return export.WritePlan(w, p)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, mappingFile), func(w io.Writer) error {
		return export.WriteMapping(w, p)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, manifestFile), func(w io.Writer) error {
		return export.WriteManifest(w, p, renderFormat)
	})
}

// writeReports writes the text and JSON validation reports into dir.
func writeReports(dir string, in export.ReportInput) error {
	if err := writeFile(filepath.Join(dir, reportTextFile), func(w io.Writer) error {
		return export.WriteReportText(w, in)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, reportJSONFile), func(w io.Writer) error {
		return export.WriteReportJSON(w, in)
	})
}

// errorLines flattens an errors.Join tree into one line per leaf error.
func errorLines(err error) []string {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range j.Unwrap() {
			out = append(out, errorLines(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
