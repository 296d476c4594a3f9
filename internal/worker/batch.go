package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/telcoscope/internal/pipeline"
	"github.com/ppiankov/telcoscope/internal/util"
)

// Lookuper defines the interface for looking up a single operator
type Lookuper interface {
	Lookup(ctx context.Context, query string) (*pipeline.LookupResult, error)
}

// LookupJob represents one operator lookup
type LookupJob struct {
	Index    int
	Query    string
	Lookuper Lookuper
}

// Execute executes the lookup job
func (j *LookupJob) Execute(ctx context.Context) (res Result) {
	defer func() {
		if v := recover(); v != nil {
			res = &LookupResult{Index: j.Index, Query: j.Query, Error: fmt.Errorf("lookup panicked: %v", v)}
		}
	}()

	result, err := j.Lookuper.Lookup(ctx, j.Query)
	return &LookupResult{
		Index:  j.Index,
		Query:  j.Query,
		Result: result,
		Error:  err,
	}
}

// LookupResult represents the result of a lookup job
type LookupResult struct {
	Index  int
	Query  string
	Result *pipeline.LookupResult
	Error  error
}

// GetError returns the error from the lookup result
func (r *LookupResult) GetError() error {
	return r.Error
}

// BatchProcessor looks up multiple operators concurrently
type BatchProcessor struct {
	lookuper    Lookuper
	concurrency int
	progress    func(done, total int, r *LookupResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(lookuper Lookuper, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		lookuper:    lookuper,
		concurrency: concurrency,
	}
}

// OnProgress registers fn to be called each time a lookup completes
func (b *BatchProcessor) OnProgress(fn func(done, total int, r *LookupResult)) {
	b.progress = fn
}

// ProcessQueries runs every query and returns the results in input order.
// Queries not started before ctx is done come back with ctx's error.
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*LookupResult {
	if len(queries) == 0 {
		return []*LookupResult{}
	}

	jobs := make([]Job, len(queries))
	for i, q := range queries {
		jobs[i] = &LookupJob{Index: i, Query: q, Lookuper: b.lookuper}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	defer pool.Shutdown()
	if b.progress != nil {
		done := 0
		pool.OnResult(func(r Result) {
			done++
			if lr, ok := r.(*LookupResult); ok {
				b.progress(done, len(queries), lr)
			}
		})
	}
	results := pool.Run(jobs)

	ordered := make([]*LookupResult, len(queries))
	for _, r := range results {
		if lr, ok := r.(*LookupResult); ok {
			ordered[lr.Index] = lr
		}
	}
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &LookupResult{Index: i, Query: queries[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads queries from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*LookupResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads operator queries from a file (one per line).
// Blank lines and # comments are skipped; repeated queries that differ only
// in case, accents or spacing are kept once.
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.Join(strings.Fields(util.Fold(line)), " ")
		if !seen[key] {
			seen[key] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
