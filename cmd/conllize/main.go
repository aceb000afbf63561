package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	conllize "github.com/jamesainslie/go-conllize"
	"github.com/jamesainslie/go-conllize/internal/config"
	"github.com/jamesainslie/go-conllize/internal/report"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config (default: $CONFIG_PATH or ./conllize.yaml)")
		annotation  = flag.String("a", "", "Annotation file under the annotations dir (single-file mode)")
		output      = flag.String("o", "", "Output file under the output root (default: same as -a)")
		first       = flag.Int("first", 0, "First annotation shard")
		last        = flag.Int("last", 0, "Last annotation shard")
		workers     = flag.Int("workers", 0, "Shards converted at once")
		reportPath  = flag.String("report", "", "Report path under the output root, \"-\" disables it")
		logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
		logFormat   = flag.String("log-format", "", "Log format: text or json")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("conllize %s (%s, %s)\n", version, commit, date)
		return
	}
	if err := checkMode(*annotation, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line override the file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "first":
			cfg.Run.ShardFirst = *first
		case "last":
			cfg.Run.ShardLast = *last
		case "workers":
			cfg.Run.Workers = *workers
		case "report":
			cfg.Output.Report = *reportPath
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *annotation, *output); err != nil {
		logger.Error("conversion failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// checkMode rejects an output name without an annotation file; batch runs
// name their outputs after the shard numbers.
func checkMode(annotation, output string) error {
	if output != "" && annotation == "" {
		return errors.New("-o requires -a")
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, annotation, output string) error {
	if err := checkMode(annotation, output); err != nil {
		return err
	}

	conv, err := conllize.New(ctx, converterConfig(cfg),
		conllize.WithLogger(logger),
		conllize.WithWorkers(cfg.Run.Workers),
		conllize.WithIndexWorkers(cfg.Run.IndexWorkers),
		conllize.WithColumn(cfg.Output.Column),
	)
	if err != nil {
		return err
	}

	if annotation != "" {
		if output == "" {
			output = annotation
		}
		in := filepath.Join(corpusPath(cfg, cfg.Corpus.AnnotationsDir), annotation)
		_, err := conv.ConvertFile(ctx, in, filepath.Join(cfg.Output.Root, output))
		return err
	}

	batch, err := conv.ConvertAll(ctx)
	if cfg.Output.Report != "" && cfg.Output.Report != "-" {
		path := cfg.Output.Report
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Output.Root, path)
		}
		if werr := report.Write(path, batch); werr != nil {
			return errors.Join(err, werr)
		}
		logger.Info("report written", "path", path)
	}
	return err
}

func converterConfig(cfg *config.Config) conllize.Config {
	return conllize.Config{
		CorpusRoot:     cfg.Corpus.Root,
		DocumentsDir:   cfg.Corpus.DocumentsDir,
		AnnotationsDir: cfg.Corpus.AnnotationsDir,
		DocumentVocab:  cfg.Corpus.DocumentVocab,
		EntityVocab:    cfg.Corpus.EntityVocab,
		OutputRoot:     cfg.Output.Root,
		DocumentShards: cfg.Corpus.DocumentShards,
		ShardFirst:     cfg.Run.ShardFirst,
		ShardLast:      cfg.Run.ShardLast,
	}
}

func corpusPath(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Corpus.Root, name)
}
