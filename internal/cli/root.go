package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/config"
	"github.com/gzhole/sitbench/internal/logger"
	"github.com/gzhole/sitbench/internal/sit"
)

var (
	configPath string
	packsPath  string
	logPath    string
	outDir     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sitbench",
	Short: "sitbench - synthetic corpus generator and scorer for SIT detectors",
	Long: `sitbench plans, synthesizes and scores a corpus of documents seeded with
Sensitive Information Types (SITs). Every planted value is recorded with its
byte offsets, so a detector's output can be scored for true positives, false
positives and missing occurrences.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to run config YAML (default: ~/.sitbench/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&packsPath, "packs", "", "Directory of SIT pack YAML files (default: ~/.sitbench/packs)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to the JSONL run log (default: ~/.sitbench/run.jsonl)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "Output directory (default: ~/.sitbench/out)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print progress to stderr")
}

// Execute runs the root command. Interrupts cancel in-flight generation and
// scoring.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// env is the loaded configuration and the SIT registry it resolves to.
type env struct {
	cfg   *config.Config
	reg   *sit.Registry
	packs []sit.PackInfo
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if packsPath != "" {
		cfg.PacksDir = packsPath
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	return cfg, nil
}

func loadEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	reg, infos, err := sit.LoadPacks(cfg.PacksDir, sit.Builtin())
	if err != nil {
		return nil, fmt.Errorf("failed to load SIT packs: %w", err)
	}
	return &env{cfg: cfg, reg: reg, packs: infos}, nil
}

func (e *env) openLog() (*logger.RunLogger, error) {
	if err := os.MkdirAll(filepath.Dir(e.cfg.LogPath), 0700); err != nil {
		return nil, err
	}
	lg, err := logger.New(e.cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run logger: %w", err)
	}
	return lg, nil
}

func verbosef(cmd *cobra.Command, format string, args ...any) {
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}
