package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contactscan/contactscan/internal/config"
	"github.com/contactscan/contactscan/internal/crawler"
	"github.com/contactscan/contactscan/internal/database"
	"github.com/contactscan/contactscan/internal/extract"
	"github.com/contactscan/contactscan/internal/fetcher"
	"github.com/contactscan/contactscan/internal/log"
	"github.com/contactscan/contactscan/internal/pipeline"
	"github.com/contactscan/contactscan/internal/report"
	"github.com/contactscan/contactscan/internal/urlutil"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl websites and extract contact signals",
		Long: `Crawl fetches pages from the given seed URLs and extracts contact
signals: email addresses, phone numbers, social profile links, and page
metadata. A bare host like "example.com" is accepted; https:// is
assumed.

The crawl stays on the seed's site. With --recursive, same-site links
are followed breadth-first up to the page budget; without it, only the
seed page is fetched.

Examples:
  # Single page
  contactscan crawl example.com

  # Whole-site crawl with a larger budget
  contactscan crawl --recursive --max-pages 100 https://example.com

  # Export findings to a file (format from the extension)
  contactscan crawl -o findings.csv example.com

  # Crawl several sites concurrently
  contactscan crawl --recursive site1.example site2.example

  # Include EXIF metadata from images
  contactscan crawl --recursive --exif example.com

Configuration file (.contactscan) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      maxPages: 100
      ignorePatterns:
        - "/archive/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of page fetch attempts per crawl")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each page fetch")
	cmd.Flags().DurationP("delay", "d", config.DefaultDelay,
		"Politeness delay between page fetches")
	cmd.Flags().BoolP("recursive", "r", false,
		"Follow same-site links beyond the seed page")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of in-flight page fetches per crawl")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls for multiple seeds")

	// Transport flags
	cmd.Flags().Bool("insecure", false,
		"Disable TLS certificate verification")
	cmd.Flags().String("proxy", "",
		"Proxy URL for all requests (http://, https:// or socks5://)")
	cmd.Flags().String("user-agent", "",
		"Pin a single User-Agent header instead of rotating")

	// Extraction flags
	cmd.Flags().Bool("exif", false,
		"Extract identifying EXIF metadata from referenced images")
	cmd.Flags().Int("max-exif-images", config.DefaultMaxEXIFImages,
		"Maximum images fetched for EXIF analysis per crawl")

	// Output and persistence flags
	cmd.Flags().StringP("output", "o", "",
		"Write findings to the given file (.json, .csv or .md)")
	cmd.Flags().Bool("no-db", false,
		"Do not record this crawl in the history database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .contactscan in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Graceful shutdown on interrupt: the crawl aborts but partial
	// findings are still reported and persisted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Delay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.Recursive, err = cmd.Flags().GetBool("recursive"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.InsecureTLS, err = cmd.Flags().GetBool("insecure"); err != nil {
		return nil, err
	}
	if cfg.Proxy, err = cmd.Flags().GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.EXIF, err = cmd.Flags().GetBool("exif"); err != nil {
		return nil, err
	}
	if cfg.MaxEXIFImages, err = cmd.Flags().GetInt("max-exif-images"); err != nil {
		return nil, err
	}
	if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.NoDB, err = cmd.Flags().GetBool("no-db"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Load site-specific configurations from config file.
	// If the user explicitly specified a path, a missing file is an error.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.DBDir = config.XDGDataDir()
	cfg.SeedURLs = args

	return cfg, nil
}

// runCrawl executes the crawl for all configured seeds.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.SeedURLs,
		"max_pages", cfg.MaxPages,
		"recursive", cfg.Recursive,
		"batch_size", cfg.BatchSize,
	)

	var db *database.CrawlDB
	if !cfg.NoDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // Close on exit is best effort
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	if len(cfg.SeedURLs) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, db, logger)
	}
	return runSequentialCrawl(ctx, cfg, db, logger)
}

// runSequentialCrawl crawls seeds one at a time, applying per-site
// configuration to each.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	for _, seed := range cfg.SeedURLs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p, err := createPipelineForSeed(cfg, seedHost(seed), db, logger)
		if err != nil {
			return err
		}

		fmt.Printf("Crawling %s...\n", seed)
		startTime := time.Now()

		job := pipeline.NewJob(seed)
		if err := p.Execute(ctx, job); err != nil {
			logger.Error("crawl failed", "seed_url", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
			continue
		}

		fmt.Printf("Crawl completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

		if err := outputReport(cfg, job); err != nil {
			logger.Error("report failed", "seed_url", seed, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchProcessor.
// Per-site configurations are not applied in batch mode; only the
// defaults from the config file are used.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.SeedURLs), cfg.BatchSize)

	startTime := time.Now()

	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch mode uses default site config only; per-site settings are ignored",
			"site_count", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use --batch 1 to apply per-site settings.\n\n")
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			p, err := createPipelineForSeed(cfg, "", db, logger)
			if err != nil {
				// Flag validation already covered transport errors; an
				// empty pipeline just records nothing for this seed.
				logger.Error("failed to create pipeline", "error", err)
				return pipeline.New(pipeline.WithLogger(logger))
			}
			return p
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	err := bp.ProcessBatchWithCallback(ctx, cfg.SeedURLs, func(job *pipeline.Job, index int) {
		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(cfg.SeedURLs), job.SeedURL)

		if err := outputReport(cfg, job); err != nil {
			logger.Error("report failed", "seed_url", job.SeedURL, "error", err)
		}
	})

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return err
}

// seedHost extracts the hostname of a seed URL for site config lookup.
func seedHost(seed string) string {
	u, err := urlutil.Normalize(urlutil.EnsureScheme(seed), nil)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// createPipelineForSeed builds the full crawl pipeline for one seed,
// applying the site configuration of the given host.
func createPipelineForSeed(cfg *config.Config, host string, db *database.CrawlDB, logger *slog.Logger) (*pipeline.Pipeline, error) {
	var siteCfg config.SiteConfig
	if cfg.SiteConfigs != nil {
		if host != "" {
			siteCfg = cfg.SiteConfigs.GetSiteConfig(host)
		} else {
			siteCfg = cfg.SiteConfigs.Defaults
		}
	}

	fetchOpts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithMaxRedirects(config.DefaultMaxRedirects),
		fetcher.WithInsecureTLS(cfg.InsecureTLS),
		fetcher.WithLogger(logger),
	}
	if cfg.Proxy != "" {
		fetchOpts = append(fetchOpts, fetcher.WithProxy(cfg.Proxy))
	}
	if cfg.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetcher.WithUserAgent(cfg.UserAgent))
	}
	if siteCfg.Cookie != "" {
		fetchOpts = append(fetchOpts, fetcher.WithCookie(siteCfg.Cookie))
	}
	if len(siteCfg.Headers) > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithHeaders(siteCfg.Headers))
	}

	f, err := fetcher.New(fetchOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	extractor := extract.New(extract.WithLogger(logger))

	// Site config overrides the global budget and pacing
	maxPages := cfg.MaxPages
	if siteCfg.MaxPages > 0 {
		maxPages = siteCfg.MaxPages
	}
	delay := cfg.Delay
	if siteCfg.Delay > 0 {
		delay = siteCfg.Delay
	}

	discoverer := crawler.NewDiscoverer(
		crawler.WithIgnorePatterns(siteCfg.IgnorePatterns),
		crawler.WithFollowPatterns(siteCfg.FollowPatterns),
	)

	engineOpts := []crawler.Option{
		crawler.WithMaxPages(maxPages),
		crawler.WithDelay(delay),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithRecursive(cfg.Recursive),
		crawler.WithDiscoverer(discoverer),
		crawler.WithImageCollection(cfg.EXIF),
		crawler.WithLogger(logger),
	}

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddStep(pipeline.NewResolveStep(f))
	p.AddStep(pipeline.NewCrawlStep(f, extractor, engineOpts...))
	if cfg.EXIF {
		analyzer := extract.NewEXIFAnalyzer(f.Client(),
			extract.WithMaxImages(cfg.MaxEXIFImages),
			extract.WithEXIFLogger(logger),
		)
		p.AddStep(pipeline.NewEXIFStep(analyzer))
	}
	p.AddStep(pipeline.NewFinalizeStep())
	p.AddStep(pipeline.NewPersistStep(db))

	return p, nil
}

// outputReport outputs the crawl result in the requested format.
func outputReport(cfg *config.Config, job *pipeline.Job) error {
	if job.Result == nil {
		if job.Err != nil {
			return job.Err
		}
		return errors.New("crawl produced no result")
	}

	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		w, closer, err := report.ForPath(cfg.OutputFile)
		if err != nil {
			return err
		}
		defer closer.Close() //nolint:errcheck // Close error is secondary to write error

		if _, err := w.Write(job.Result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", cfg.OutputFile)
		return nil
	}

	writer := report.NewSimpleWriter(os.Stdout, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(job.Result)
	return err
}
