// Package config loads conversion settings from YAML and the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Config is the root configuration of the conllize command.
type Config struct {
	Corpus CorpusConfig `yaml:"corpus"`
	Output OutputConfig `yaml:"output"`
	Run    RunConfig    `yaml:"run"`
	Log    LogConfig    `yaml:"log"`
}

// CorpusConfig locates the WiFiNE input files.
type CorpusConfig struct {
	Root           string `yaml:"root"            env:"CONLLIZE_CORPUS_ROOT"     env-default:"../WiFiNE_original"`
	DocumentsDir   string `yaml:"documents_dir"   env:"CONLLIZE_DOCUMENTS_DIR"   env-default:"Documents"`
	AnnotationsDir string `yaml:"annotations_dir" env:"CONLLIZE_ANNOTATIONS_DIR" env-default:"FineEntity"`
	DocumentVocab  string `yaml:"document_vocab"  env:"CONLLIZE_DOCUMENT_VOCAB"  env-default:"document.vocab"`
	EntityVocab    string `yaml:"entity_vocab"    env:"CONLLIZE_ENTITY_VOCAB"    env-default:"figer.vocab"`
	DocumentShards int    `yaml:"document_shards" env:"CONLLIZE_DOCUMENT_SHARDS" env-default:"3242"`
}

// OutputConfig locates the CoNLL output.
type OutputConfig struct {
	Root   string `yaml:"root"   env:"CONLLIZE_OUTPUT_ROOT" env-default:"../WiFiNE_CoNLLized"`
	Report string `yaml:"report" env:"CONLLIZE_REPORT"      env-default:"report.json"`
	Column int    `yaml:"column" env:"CONLLIZE_COLUMN"      env-default:"20"`
}

// Default annotation shard range. Zero is a valid shard number, so these
// are set before reading instead of through env-default, which cleanenv
// applies to any zero field.
const (
	DefaultShardFirst = 82
	DefaultShardLast  = 99
)

// RunConfig selects the annotation shards and parallelism.
type RunConfig struct {
	ShardFirst   int `yaml:"shard_first"   env:"CONLLIZE_SHARD_FIRST"`
	ShardLast    int `yaml:"shard_last"    env:"CONLLIZE_SHARD_LAST"`
	Workers      int `yaml:"workers"       env:"CONLLIZE_WORKERS"       env-default:"1"`
	IndexWorkers int `yaml:"index_workers" env:"CONLLIZE_INDEX_WORKERS" env-default:"1"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// NewLogger builds a text or JSON slog.Logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.Format)
	}
}
