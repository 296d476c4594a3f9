package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/telcoscope/internal/llm"
	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/pipeline"
)

var (
	citationsFile string
	fixedNow      string
	fixedID       string
)

// assembleCmd represents the assemble command
var assembleCmd = &cobra.Command{
	Use:   "assemble <candidate.json>",
	Short: "Assemble a stored candidate into a profile without calling a backend",
	Long: `Assemble runs the profile assembly offline on a candidate JSON file, such
as one saved from a previous backend answer. Citations can be supplied as a
separate JSON array of {"url","title"} objects or plain URL strings.

Pass --now and --id to make the output byte-for-byte reproducible.

Example:
  telcoscope assemble candidate.json
  telcoscope assemble candidate.json --citations citations.json --md report.md
  telcoscope assemble candidate.json --now 2026-10-18T12:00:00Z --id fixed-id`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().StringVar(&citationsFile, "citations", "", "JSON file with the grounding citations")
	assembleCmd.Flags().StringVar(&fixedNow, "now", "", "analysis time (RFC3339) instead of the current time")
	assembleCmd.Flags().StringVar(&fixedID, "id", "", "profile id instead of a random uuid")
	assembleCmd.Flags().StringVar(&outJSON, "json", "-", "output JSON path (- for stdout)")
	assembleCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	assembleCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read candidate: %w", err)
	}

	// Stored backend responses and bare candidates may both carry citations
	text, citations := raw, []model.Citation(nil)
	if resp, err := llm.ParseReplay(raw); err == nil {
		text, citations = []byte(resp.Text), resp.Citations
	}

	if citationsFile != "" {
		extra, err := readCitations(citationsFile)
		if err != nil {
			return err
		}
		citations = append(citations, extra...)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger())}
	if fixedNow != "" {
		now, err := time.Parse(time.RFC3339, fixedNow)
		if err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
		opts = append(opts, pipeline.WithClock(func() time.Time { return now }))
	}
	if fixedID != "" {
		opts = append(opts, pipeline.WithIDGenerator(func() string { return fixedID }))
	}

	assembly, err := pipeline.NewAssembler(cfg, opts...).Assemble(text, citations)
	if err != nil {
		return fmt.Errorf("assemble failed: %w", err)
	}

	if verbose {
		printWarnings(assembly)
	}

	return renderProfile(pipeline.NewRenderer(cfg.Output.IncludeFooter), assembly, outJSON, outMD)
}

// readCitations accepts either [{"url","title"}] or a wrapper with a citations field
func readCitations(path string) ([]model.Citation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read citations: %w", err)
	}

	var list []model.Citation
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	// Plain URL strings, or an object with a citations array
	_, citations := llm.SplitCitations(`{"citations":` + string(data) + `}`)
	if citations == nil {
		_, citations = llm.SplitCitations(string(data))
	}
	if citations == nil {
		return nil, fmt.Errorf("read citations: %s is not a JSON citation list", path)
	}
	return citations, nil
}
