package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/sit"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Manage SIT packs",
	Long: `Manage sitbench SIT packs.

A pack is a YAML file of SIT definitions (id, name, regex, generator). Packs
live in ~/.sitbench/packs/ and are layered over the built-in SITs at runtime.
A pack whose file name starts with "_" is disabled.

Examples:
  sitbench pack list              # List installed packs
  sitbench pack enable financial  # Enable a pack
  sitbench pack disable financial # Disable a pack
  sitbench pack show financial    # Print a pack's YAML`,
}

var packListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed SIT packs",
	RunE:  packList,
}

var packEnableCmd = &cobra.Command{
	Use:   "enable <pack-name>",
	Short: "Enable a disabled SIT pack",
	Args:  cobra.ExactArgs(1),
	RunE:  packEnable,
}

var packDisableCmd = &cobra.Command{
	Use:   "disable <pack-name>",
	Short: "Disable a SIT pack (prefix with underscore)",
	Args:  cobra.ExactArgs(1),
	RunE:  packDisable,
}

var packShowCmd = &cobra.Command{
	Use:   "show <pack-name>",
	Short: "Show a SIT pack's YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  packShow,
}

func init() {
	packCmd.AddCommand(packListCmd)
	packCmd.AddCommand(packEnableCmd)
	packCmd.AddCommand(packDisableCmd)
	packCmd.AddCommand(packShowCmd)
	rootCmd.AddCommand(packCmd)
}

func packsDir() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfg.PacksDir, 0700); err != nil {
		return "", err
	}
	return cfg.PacksDir, nil
}

func packList(cmd *cobra.Command, args []string) error {
	dir, err := packsDir()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	_, infos, err := sit.LoadPacks(dir, sit.Builtin())
	if err != nil {
		return fmt.Errorf("failed to load packs: %w", err)
	}

	if len(infos) == 0 {
		p.println("No SIT packs installed.")
		p.printf("\nTo install packs, copy YAML files to: %s\n", dir)
		return nil
	}

	p.println("Installed SIT Packs:")
	p.println(strings.Repeat("-", 60))
	for _, info := range infos {
		p.printf("  %s  %-25s %s\n", p.icon(info.Enabled), info.Name, info.Description)
		if info.Version != "" {
			p.printf("       v%s by %s  (%d SITs)\n", info.Version, info.Author, info.SITCount)
		}
	}
	p.println(strings.Repeat("-", 60))
	p.printf("\nPacks directory: %s\n", dir)
	return nil
}

// packPath finds name's file, enabled or disabled, with either YAML extension.
func packPath(dir, name string, enabled bool) (string, bool) {
	base := name
	if !enabled {
		base = "_" + name
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func packEnable(cmd *cobra.Command, args []string) error {
	dir, err := packsDir()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	name := args[0]

	if disabled, ok := packPath(dir, name, false); ok {
		enabled := filepath.Join(dir, name+filepath.Ext(disabled))
		if err := os.Rename(disabled, enabled); err != nil {
			return fmt.Errorf("failed to enable pack: %w", err)
		}
		p.printf("%s Pack '%s' enabled.\n", p.icon(true), name)
		return nil
	}

	if _, ok := packPath(dir, name, true); ok {
		p.printf("Pack '%s' is already enabled.\n", name)
		return nil
	}

	return fmt.Errorf("pack '%s' not found in %s", name, dir)
}

func packDisable(cmd *cobra.Command, args []string) error {
	dir, err := packsDir()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	name := args[0]

	if enabled, ok := packPath(dir, name, true); ok {
		disabled := filepath.Join(dir, "_"+name+filepath.Ext(enabled))
		if err := os.Rename(enabled, disabled); err != nil {
			return fmt.Errorf("failed to disable pack: %w", err)
		}
		p.printf("%s Pack '%s' disabled.\n", p.icon(false), name)
		return nil
	}

	if _, ok := packPath(dir, name, false); ok {
		p.printf("Pack '%s' is already disabled.\n", name)
		return nil
	}

	return fmt.Errorf("pack '%s' not found in %s", name, dir)
}

func packShow(cmd *cobra.Command, args []string) error {
	dir, err := packsDir()
	if err != nil {
		return err
	}

	path, ok := packPath(dir, args[0], true)
	if !ok {
		if path, ok = packPath(dir, args[0], false); !ok {
			return fmt.Errorf("pack '%s' not found in %s", args[0], dir)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
