package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/pipeline"
	"github.com/ppiankov/telcoscope/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Look up every operator listed in a file",
	Long: `Batch reads one operator per line (blank lines and # comments are skipped),
looks them up concurrently and writes <slug>.json and <slug>.md per operator.
All workers share the provider rate limit.

Example:
  telcoscope batch operators.txt
  telcoscope batch operators.txt --concurrency 8 --output-dir ./profiles`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel lookups (0 uses concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./telcoscope-profiles", "directory for generated reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 20*time.Minute, "deadline for the whole batch")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the Markdown footer")
}

// batchWriter renders each finished lookup to disk and keeps the tally
type batchWriter struct {
	dir      string
	renderer *pipeline.Renderer
	out      io.Writer
	used     map[string]int
	written  int
	failed   int
}

func newBatchWriter(dir string, includeFooter bool, out io.Writer) *batchWriter {
	return &batchWriter{
		dir:      dir,
		renderer: pipeline.NewRenderer(includeFooter),
		out:      out,
		used:     make(map[string]int),
	}
}

// handle is called once per completed lookup, from a single goroutine
func (w *batchWriter) handle(done, total int, r *worker.LookupResult) {
	prefix := fmt.Sprintf("[%d/%d]", done, total)
	if r.Error != nil {
		w.failed++
		fmt.Fprintf(w.out, "%s ✗ %s: %v\n", prefix, r.Query, r.Error)
		return
	}

	profile := r.Result.Profile()
	slug := uniqueSlug(w.used, sanitizeFilename(profile.Name))
	base := filepath.Join(w.dir, slug)

	if err := w.renderer.RenderJSON(profile, base+".json"); err != nil {
		w.failed++
		fmt.Fprintf(w.out, "%s ✗ %s: write json: %v\n", prefix, r.Query, err)
		return
	}
	if err := w.renderer.RenderMarkdown(profile, base+".md"); err != nil {
		w.failed++
		fmt.Fprintf(w.out, "%s ✗ %s: write markdown: %v\n", prefix, r.Query, err)
		return
	}

	w.written++
	cached := ""
	if r.Result.Cached {
		cached = " (cache)"
	}
	fmt.Fprintf(w.out, "%s ✓ %s%s\n", prefix, pipeline.Summary(profile), cached)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	logger().Info("batch started",
		zap.String("file", args[0]),
		zap.Int("workers", cfg.Concurrency.Workers),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("output_dir", outputDir),
	)

	w := newBatchWriter(outputDir, cfg.Output.IncludeFooter, os.Stderr)
	processor := worker.NewBatchProcessor(a.pipeline, cfg.Concurrency.Workers)
	processor.OnProgress(w.handle)

	start := time.Now()
	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	// queries cancelled before a worker picked them up never reach handle
	skipped := len(results) - w.written - w.failed

	fmt.Fprintf(os.Stderr, "\n%d queries in %s: %d written, %d failed", len(results), time.Since(start).Round(time.Millisecond), w.written, w.failed)
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, ", %d not run", skipped)
	}
	fmt.Fprintf(os.Stderr, " (reports in %s)\n", outputDir)

	if w.written == 0 && len(results) > 0 {
		return fmt.Errorf("no profile could be produced from %s", args[0])
	}
	return nil
}

// sanitizeFilename lower-cases an operator name and keeps only letters, digits, dots and dashes
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune('_')
		}
	}

	slug := strings.Trim(b.String(), ".-_")
	if slug == "" {
		return "operator"
	}
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], ".-_")
	}
	return slug
}

// uniqueSlug suffixes repeated slugs so two answers naming the same operator
// do not overwrite each other
func uniqueSlug(used map[string]int, slug string) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
