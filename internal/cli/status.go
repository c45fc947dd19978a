package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/config"
	"github.com/gzhole/sitbench/internal/sit"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sitbench status: config, SIT packs, run log and output files",
	Long: `Show which config file is in effect, how many SITs and packs are
registered, and which artifacts exist in the output directory.

  sitbench status`,
	RunE: statusCommand,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusCommand(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	p.banner("sitbench Status")
	p.println()
	p.printf("  Version:   %s\n", Version)
	p.printf("  Seed:      %d\n", e.cfg.Seed)
	p.println()

	p.section("Config")
	path := configPath
	if path == "" {
		path, _ = config.DefaultPath()
	}
	checkFile(p, "Run config", path, "using built-in defaults")
	p.println()

	p.section("SIT Registry")
	builtin := sit.Builtin().Len()
	p.printf("  %s Built-in SITs: %d\n", p.icon(true), builtin)
	enabled := 0
	for _, info := range e.packs {
		if info.Enabled {
			enabled++
		}
	}
	if len(e.packs) > 0 {
		p.printf("  %s SIT packs: %d installed, %d enabled (%s)\n", p.icon(true), len(e.packs), enabled, e.cfg.PacksDir)
	} else {
		p.printf("  %s No SIT packs installed (%s)\n", p.absent(), e.cfg.PacksDir)
	}
	p.printf("  Registered SITs: %d\n", e.reg.Len())
	p.println()

	p.section("Run Log")
	checkFile(p, "Run log", e.cfg.LogPath, "not yet created, will start on first run")
	p.println()

	p.section("Output")
	p.printf("  Directory: %s\n", e.cfg.OutputDir)
	for _, name := range []string{planFile, mappingFile, manifestFile, groundTruthFile, reportTextFile, reportJSONFile} {
		checkFile(p, name, filepath.Join(e.cfg.OutputDir, name), "missing")
	}
	p.println()
	return nil
}

func checkFile(p *printer, name, path, missing string) {
	info, err := os.Stat(path)
	if err != nil {
		p.printf("  %s %s: %s\n", p.absent(), name, missing)
		return
	}
	sizeKB := info.Size() / 1024
	if sizeKB == 0 {
		p.printf("  %s %s: %s (<1 KB)\n", p.icon(true), name, path)
		return
	}
	p.printf("  %s %s: %s (%d KB)\n", p.icon(true), name, path, sizeKB)
}
