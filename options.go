package conllize

import (
	"log/slog"

	"github.com/jamesainslie/go-conllize/conll"
)

// Option configures a Converter.
type Option func(*config)

type config struct {
	workers      int
	indexWorkers int
	column       int
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		workers:      1,
		indexWorkers: 1,
		column:       conll.DefaultColumn,
		logger:       slog.Default(),
	}
}

// WithWorkers sets how many annotation shards ConvertAll converts at once
// (default: 1). Articles within a shard are always converted in order.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithIndexWorkers sets how many document shards are scanned at once while
// building the article index (default: 1).
func WithIndexWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.indexWorkers = n
		}
	}
}

// WithColumn sets the output label column (default: 20).
func WithColumn(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.column = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
