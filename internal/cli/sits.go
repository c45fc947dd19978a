package cli

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gzhole/sitbench/internal/sit"
)

var (
	sampleCount int
	sampleSeed  uint64
)

var sitsCmd = &cobra.Command{
	Use:   "sits",
	Short: "Inspect the SIT registry",
	Long: `Inspect the registered Sensitive Information Types: the built-ins plus
every enabled pack.

Examples:
  sitbench sits list               # List every registered SIT
  sitbench sits show SIT_SSN       # Show a SIT's pattern and tags
  sitbench sits sample SIT_IBAN -n 5 # Generate sample values`,
}

var sitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered SITs",
	RunE:  sitsList,
}

var sitsShowCmd = &cobra.Command{
	Use:   "show <sit-id>",
	Short: "Show a SIT's definition",
	Args:  cobra.ExactArgs(1),
	RunE:  sitsShow,
}

var sitsSampleCmd = &cobra.Command{
	Use:   "sample <sit-id>",
	Short: "Generate sample values and check them against the SIT's pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  sitsSample,
}

func init() {
	sitsSampleCmd.Flags().IntVarP(&sampleCount, "count", "n", 5, "Number of values to generate")
	sitsSampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "Sampling seed (default: config seed)")
	sitsCmd.AddCommand(sitsListCmd)
	sitsCmd.AddCommand(sitsShowCmd)
	sitsCmd.AddCommand(sitsSampleCmd)
	rootCmd.AddCommand(sitsCmd)
}

func sitsList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	p.printf("Registered SITs (%d):\n", e.reg.Len())
	for _, d := range e.reg.Definitions() {
		tags := ""
		if len(d.Tags) > 0 {
			tags = "[" + strings.Join(d.Tags, ", ") + "]"
		}
		p.printf("  %-22s %-34s %s\n", d.ID(), d.DisplayName(), tags)
	}
	return nil
}

func lookupSIT(reg *sit.Registry, id string) (*sit.Definition, error) {
	d, ok := reg.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown SIT %q (see 'sitbench sits list')", id)
	}
	return d, nil
}

func sitsShow(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	d, err := lookupSIT(e.reg, args[0])
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	p.printf("ID:          %s\n", d.ID())
	p.printf("Name:        %s\n", d.DisplayName())
	if d.Description != "" {
		p.printf("Description: %s\n", d.Description)
	}
	if len(d.Tags) > 0 {
		p.printf("Tags:        %s\n", strings.Join(d.Tags, ", "))
	}
	p.printf("Pattern:     %s\n", d.Pattern())
	if dg := d.Decoy(); dg != nil {
		v, err := dg.Generate(rand.New(rand.NewPCG(e.cfg.Seed, 0)))
		if err != nil {
			return fmt.Errorf("%s: decoy generator failed: %w", d.ID(), err)
		}
		verdict := "rejected"
		if matchesWhole(d, v) {
			verdict = "matches pattern"
		}
		p.printf("Decoy:       %s (%s)\n", v, verdict)
	}
	return nil
}

func sitsSample(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	d, err := lookupSIT(e.reg, args[0])
	if err != nil {
		return err
	}
	if sampleCount <= 0 {
		return fmt.Errorf("--count must be positive, got %d", sampleCount)
	}
	seed := sampleSeed
	if seed == 0 {
		seed = e.cfg.Seed
	}
	p := newPrinter(cmd.OutOrStdout())

	r := rand.New(rand.NewPCG(seed, 0))
	bad := 0
	for i := 0; i < sampleCount; i++ {
		v, err := d.Generator().Generate(r)
		if err != nil {
			return fmt.Errorf("%s: generator failed: %w", d.ID(), err)
		}
		ok := matchesWhole(d, v)
		if !ok {
			bad++
		}
		p.printf("  %s  %s\n", p.icon(ok), v)
	}
	if bad > 0 {
		return fmt.Errorf("%s: %d/%d generated values do not match its own pattern", d.ID(), bad, sampleCount)
	}
	return nil
}

// matchesWhole reports whether d's pattern matches all of v.
func matchesWhole(d *sit.Definition, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range d.Matches(v) {
		if s.Start == 0 && s.End == len(v) {
			return true
		}
	}
	return false
}
