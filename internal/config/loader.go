package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML path is path if non-empty, else CONFIG_PATH. When neither is set
// and ./conllize.yaml does not exist, configuration comes from ENV and
// defaults only.
func Load(path string) (*Config, error) {
	cfg := Config{Run: RunConfig{ShardFirst: DefaultShardFirst, ShardLast: DefaultShardLast}}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	explicitPath := path != ""
	if !explicitPath {
		path = "./conllize.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	var errs []error

	if c.Corpus.Root == "" {
		errs = append(errs, errors.New("corpus.root must be set"))
	}
	if c.Corpus.DocumentShards <= 0 {
		errs = append(errs, fmt.Errorf("corpus.document_shards must be > 0 (got %d)", c.Corpus.DocumentShards))
	}
	if c.Output.Root == "" {
		errs = append(errs, errors.New("output.root must be set"))
	}
	if c.Output.Column <= 0 {
		errs = append(errs, fmt.Errorf("output.column must be > 0 (got %d)", c.Output.Column))
	}
	if c.Run.ShardFirst < 0 || c.Run.ShardFirst > c.Run.ShardLast {
		errs = append(errs, fmt.Errorf("run: invalid shard range [%d, %d]", c.Run.ShardFirst, c.Run.ShardLast))
	}
	if c.Run.Workers < 1 {
		errs = append(errs, fmt.Errorf("run.workers must be >= 1 (got %d)", c.Run.Workers))
	}
	if c.Run.IndexWorkers < 1 {
		errs = append(errs, fmt.Errorf("run.index_workers must be >= 1 (got %d)", c.Run.IndexWorkers))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
