package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/logger"
)

var (
	logFilterStage string
	logFilterRun   string
	logErrorsOnly  bool
	logLast        int
	logSummary     bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the run log",
	Long: `View the sitbench run log with filtering and summary options.

Examples:
  sitbench log                    # Show all entries
  sitbench log --last 20          # Show last 20 entries
  sitbench log --stage score      # Show only scoring events
  sitbench log --run <run-id>     # Show one run
  sitbench log --errors           # Show only failures
  sitbench log --summary          # Show per-run summary stats`,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().StringVar(&logFilterStage, "stage", "", "Filter by stage (plan, generate, render, score, run)")
	logCmd.Flags().StringVar(&logFilterRun, "run", "", "Filter by run id (prefix match)")
	logCmd.Flags().BoolVar(&logErrorsOnly, "errors", false, "Show only events that carry an error")
	logCmd.Flags().IntVar(&logLast, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	events, err := readRunLog(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to read run log: %w", err)
	}
	if len(events) == 0 {
		p.println("No run log entries found.")
		return nil
	}

	filtered := filterEvents(events)
	if logLast > 0 && logLast < len(filtered) {
		filtered = filtered[len(filtered)-logLast:]
	}

	if logSummary {
		printSummary(p, filtered)
		return nil
	}
	printEvents(p, filtered)
	return nil
}

func readRunLog(path string) ([]logger.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []logger.Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var event logger.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip malformed lines
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}

func filterEvents(events []logger.Event) []logger.Event {
	if logFilterStage == "" && logFilterRun == "" && !logErrorsOnly {
		return events
	}

	var filtered []logger.Event
	for _, e := range events {
		if logFilterStage != "" && !strings.EqualFold(e.Stage, logFilterStage) {
			continue
		}
		if logFilterRun != "" && !strings.HasPrefix(e.RunID, logFilterRun) {
			continue
		}
		if logErrorsOnly && e.Error == "" {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func printEvents(p *printer, events []logger.Event) {
	for _, e := range events {
		p.printf("%s %s [%s] %s\n", p.icon(e.Error == ""), formatTimestamp(e.Timestamp), e.Stage, e.Message)
		if e.DocID != "" || e.SITID != "" {
			p.printf("     Doc: %s  SIT: %s\n", e.DocID, e.SITID)
		}
		if len(e.Samples) > 0 {
			p.printf("     Samples: %s\n", strings.Join(e.Samples, ", "))
		}
		if e.Error != "" {
			p.printf("     Error: %s\n", e.Error)
		}
		p.printf("     Run: %s\n", e.RunID)
		p.println()
	}
}

type runSummary struct {
	id     string
	first  string
	stages map[string]int
	errors int
}

func printSummary(p *printer, events []logger.Event) {
	runs := map[string]*runSummary{}
	var order []string
	errorCount := 0
	for _, e := range events {
		rs, ok := runs[e.RunID]
		if !ok {
			rs = &runSummary{id: e.RunID, first: e.Timestamp, stages: map[string]int{}}
			runs[e.RunID] = rs
			order = append(order, e.RunID)
		}
		rs.stages[e.Stage]++
		if e.Error != "" {
			rs.errors++
			errorCount++
		}
	}

	p.banner("sitbench Run Log Summary")
	p.printf("  Total events:    %d\n", len(events))
	p.printf("  Runs:            %d\n", len(runs))
	p.printf("  Errors:          %d\n", errorCount)
	if len(events) > 0 {
		p.printf("  First event:     %s\n", formatTimestamp(events[0].Timestamp))
		p.printf("  Last event:      %s\n", formatTimestamp(events[len(events)-1].Timestamp))
	}
	p.println()

	for _, id := range order {
		rs := runs[id]
		stages := make([]string, 0, len(rs.stages))
		for s, n := range rs.stages {
			stages = append(stages, fmt.Sprintf("%s=%d", s, n))
		}
		sort.Strings(stages)
		p.printf("  %s %s  %s  %s\n", p.icon(rs.errors == 0), id, formatTimestamp(rs.first), strings.Join(stages, " "))
	}
	p.println()
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
