package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/contactscan/contactscan/internal/crawler"
	"github.com/contactscan/contactscan/internal/database"
	"github.com/contactscan/contactscan/internal/extract"
	"github.com/contactscan/contactscan/internal/fetcher"
	"github.com/contactscan/contactscan/internal/urlutil"
)

// ResolveStep normalizes the seed URL and follows its redirects so the
// crawl starts from the site's canonical location. Without this, a seed
// like "example.com" that redirects to "https://www.example.com" would
// scope the whole crawl to the wrong hostname.
type ResolveStep struct {
	fetcher *fetcher.Fetcher
}

// NewResolveStep creates a ResolveStep using the given fetcher.
func NewResolveStep(f *fetcher.Fetcher) *ResolveStep {
	return &ResolveStep{fetcher: f}
}

// Name returns the step name.
func (s *ResolveStep) Name() string { return "resolve" }

// Do resolves the seed to its final URL after scheme defaulting and
// redirects. Resolution failure is fatal for the job: if the seed is
// unreachable there is nothing to crawl.
func (s *ResolveStep) Do(ctx context.Context, job *Job) error {
	raw := urlutil.EnsureScheme(job.SeedURL)

	final, err := s.fetcher.ResolveFinalURL(ctx, raw)
	if err != nil {
		return fmt.Errorf("failed to resolve seed %s: %w", job.SeedURL, err)
	}

	job.ResolvedURL = final
	return nil
}

// CrawlStep runs the crawl engine against the resolved seed.
type CrawlStep struct {
	fetcher   *fetcher.Fetcher
	extractor *extract.Extractor
	opts      []crawler.Option
}

// NewCrawlStep creates a CrawlStep. The engine options are applied to a
// fresh engine per job, so one step instance can serve a whole batch.
func NewCrawlStep(f *fetcher.Fetcher, ex *extract.Extractor, opts ...crawler.Option) *CrawlStep {
	return &CrawlStep{fetcher: f, extractor: ex, opts: opts}
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do crawls from the resolved URL, feeding findings into the job store.
func (s *CrawlStep) Do(ctx context.Context, job *Job) error {
	seed := job.ResolvedURL
	if seed == "" {
		seed = urlutil.EnsureScheme(job.SeedURL)
	}

	engine := crawler.New(s.fetcher, s.extractor, job.Store, s.opts...)
	stats, err := engine.Run(ctx, seed)
	if err != nil {
		return fmt.Errorf("crawl of %s failed: %w", seed, err)
	}

	job.Stats = stats
	job.Images = engine.Images()
	return nil
}

// EXIFStep analyzes images collected during the crawl for identifying
// EXIF metadata and adds the results to the job store.
type EXIFStep struct {
	analyzer *extract.EXIFAnalyzer
}

// NewEXIFStep creates an EXIFStep using the given analyzer.
func NewEXIFStep(analyzer *extract.EXIFAnalyzer) *EXIFStep {
	return &EXIFStep{analyzer: analyzer}
}

// Name returns the step name.
func (s *EXIFStep) Name() string { return "exif" }

// Do analyzes the collected images. Findings gathered before a
// cancellation are kept; the cancellation itself is not an error here
// because the crawl state already records it.
func (s *EXIFStep) Do(ctx context.Context, job *Job) error {
	if len(job.Images) == 0 {
		return nil
	}

	findings, err := s.analyzer.Analyze(ctx, job.Stats.FinalURL, job.Images)
	job.Store.Add(findings...)

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("exif analysis failed: %w", err)
	}
	return nil
}

// FinalizeStep seals the job store into a crawl result with a fresh
// run ID.
type FinalizeStep struct{}

// NewFinalizeStep creates a FinalizeStep.
func NewFinalizeStep() *FinalizeStep {
	return &FinalizeStep{}
}

// Name returns the step name.
func (s *FinalizeStep) Name() string { return "finalize" }

// Do seals the store into the job result.
func (s *FinalizeStep) Do(_ context.Context, job *Job) error {
	job.Result = job.Store.Finalize(uuid.NewString(), job.SeedURL, job.Stats)
	return nil
}

// PersistStep saves the finalized result to the crawl database.
type PersistStep struct {
	db *database.CrawlDB
}

// NewPersistStep creates a PersistStep. A nil database disables
// persistence, turning the step into a no-op.
func NewPersistStep(db *database.CrawlDB) *PersistStep {
	return &PersistStep{db: db}
}

// Name returns the step name.
func (s *PersistStep) Name() string { return "persist" }

// Do stores the result. It detaches from the context's cancellation so
// an interrupted crawl still gets its partial findings saved.
func (s *PersistStep) Do(ctx context.Context, job *Job) error {
	if s.db == nil || job.Result == nil {
		return nil
	}

	if err := s.db.SaveCrawlResult(context.WithoutCancel(ctx), job.Result); err != nil {
		return fmt.Errorf("failed to persist run %s: %w", job.Result.RunID, err)
	}
	return nil
}
