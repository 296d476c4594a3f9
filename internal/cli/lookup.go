package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/telcoscope/internal/pipeline"
)

var (
	outJSON       string
	outMD         string
	lookupTimeout time.Duration
	noFooter      bool
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <operator>",
	Short: "Look up a single operator and build its profile",
	Long: `Lookup asks the configured search backend about one telecom operator
and assembles the answer into a profile:
- Normalizes contacts, coverage and outage regions
- Resolves reputation from structured scores or sentiment
- Classifies and deduplicates the cited sources
- Derives stability trend, data reliability and operational risk

Example:
  telcoscope lookup "Vivo" --llm-provider openai
  telcoscope lookup "Brisanet" --json brisanet.json --md brisanet.md
  telcoscope lookup "Algar Telecom" --llm-provider anthropic --timeout 3m`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&outJSON, "json", "-", "output JSON path (- for stdout)")
	lookupCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	lookupCmd.Flags().DurationVar(&lookupTimeout, "timeout", 2*time.Minute, "overall lookup timeout")
	lookupCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runLookup(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), lookupTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Looking up: %s\n", query)
		fmt.Fprintf(os.Stderr, "Backend: %s\n", a.pipeline.Backend().Name())
		fmt.Fprintf(os.Stderr, "Cache: %v\n", a.cache != nil)
		fmt.Fprintln(os.Stderr)
	}

	result, err := a.pipeline.Lookup(ctx, query)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if verbose {
		if result.Cached {
			fmt.Fprintf(os.Stderr, "✓ Served from cache\n")
		} else {
			fmt.Fprintf(os.Stderr, "✓ Backend answered in %v (%d tokens)\n", result.Duration.Round(time.Millisecond), result.Response.TokensUsed)
		}
		printWarnings(result.Assembly)
	}

	return renderProfile(pipeline.NewRenderer(cfg.Output.IncludeFooter), result.Assembly, outJSON, outMD)
}

// renderProfile writes the requested outputs and the stderr summary line
func renderProfile(r *pipeline.Renderer, assembly *pipeline.Assembly, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := r.RenderJSON(assembly.Profile, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose && jsonPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(assembly.Profile, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose && mdPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	r.RenderSummary(os.Stderr, assembly.Profile)
	return nil
}

func printWarnings(assembly *pipeline.Assembly) {
	if len(assembly.Warnings) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "⚠  %d item(s) skipped or corrected:\n", len(assembly.Warnings))
	for _, w := range assembly.Warnings {
		fmt.Fprintf(os.Stderr, "   - %s\n", w)
	}
}
