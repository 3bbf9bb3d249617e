package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/watchscope/pkg/buzz"
	"github.com/umputun/watchscope/pkg/catalog"
	"github.com/umputun/watchscope/pkg/config"
	"github.com/umputun/watchscope/pkg/content"
	"github.com/umputun/watchscope/pkg/forum"
	"github.com/umputun/watchscope/pkg/llm"
	"github.com/umputun/watchscope/pkg/recommender"
	"github.com/umputun/watchscope/pkg/repository"
	"github.com/umputun/watchscope/pkg/scoring"
	"github.com/umputun/watchscope/pkg/sentiment"
	"github.com/umputun/watchscope/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"config file path"`
	Import bool   `long:"import" description:"import catalog feeds and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	setupLog(opts.Debug, opts.NoColor, cfg.LLM.APIKey)

	lgr.Printf("[INFO] starting watchscope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, cfg, opts); err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	lgr.Printf("[INFO] shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, opts Opts) error {
	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer repos.Close()

	if opts.Import {
		importer := catalog.NewImporter(cfg.Catalog, repos.Content)
		n, err := importer.ImportAll(ctx)
		if err != nil {
			return fmt.Errorf("catalog import: %w", err)
		}
		lgr.Printf("[INFO] imported %d catalog items", n)
		return nil
	}

	forumClient := forum.NewClient(cfg.GetForumConfig())

	var extractor recommender.Extractor
	if cfg.Extraction.Enabled {
		extractor = content.NewHTTPExtractor(cfg.Extraction)
	}

	rec := recommender.New(recommender.Params{
		Forum:      forumClient,
		Signals:    repos.Signal,
		Catalog:    repos.Content,
		Analyzer:   sentiment.NewAnalyzer(),
		Classifier: buzz.NewClassifier(cfg.GetBuzzConfig()),
		Extractor:  extractor,
		Scorer:     scoring.NewScorer(cfg.GetScoringConfig()),
		Questions:  cfg.GetQuestions(),
		SignalTTL:  cfg.Forum.SignalTTL,
	})

	srv := server.New(server.Params{
		Config:     cfg,
		Rec:        rec,
		Forum:      forumClient,
		RecStore:   repos.Recommendation,
		FbStore:    repos.Feedback,
		Summarizer: llm.NewSummarizer(cfg.GetLLMConfig()),
		Version:    revision,
		Debug:      opts.Debug,
	})

	return srv.Run(ctx)
}

// loadConfig reads the config file or falls back to built-in defaults
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	// keep secrets out of logs
	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
