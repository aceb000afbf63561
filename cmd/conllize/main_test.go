package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-conllize/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"document.vocab": "Obama\nwas\npresident\n",
		"figer.vocab":    "PERSON\n",
		"Documents/0":    "ID 1\n0 1 2\n",
		"FineEntity/3":   "ID 1\n0 0 1 0 0\n",
		"FineEntity/4":   "ID 2\n0 0 1 0 0\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return &config.Config{
		Corpus: config.CorpusConfig{
			Root:           root,
			DocumentsDir:   "Documents",
			AnnotationsDir: "FineEntity",
			DocumentVocab:  "document.vocab",
			EntityVocab:    "figer.vocab",
			DocumentShards: 1,
		},
		Output: config.OutputConfig{Root: filepath.Join(root, "out"), Report: "report.json", Column: 20},
		Run:    config.RunConfig{ShardFirst: 3, ShardLast: 4, Workers: 1, IndexWorkers: 1},
		Log:    config.LogConfig{Level: "info", Format: "text"},
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_SingleFile(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, run(context.Background(), cfg, discard(), "3", "three.conll"))
	assert.FileExists(t, filepath.Join(cfg.Output.Root, "three.conll"))
	assert.NoFileExists(t, filepath.Join(cfg.Output.Root, "report.json"))
}

func TestRun_OutputWithoutAnnotation(t *testing.T) {
	cfg := testConfig(t)

	err := run(context.Background(), cfg, discard(), "", "three.conll")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-o requires -a")
	assert.NoDirExists(t, cfg.Output.Root, "no batch ran")
}

func TestCheckMode(t *testing.T) {
	assert.NoError(t, checkMode("", ""))
	assert.NoError(t, checkMode("82", ""))
	assert.NoError(t, checkMode("82", "out"))
	assert.Error(t, checkMode("", "out"))
}

func TestRun_BatchWritesReport(t *testing.T) {
	cfg := testConfig(t)

	err := run(context.Background(), cfg, discard(), "", "")
	require.Error(t, err, "shard 4 names an unknown article")
	assert.FileExists(t, filepath.Join(cfg.Output.Root, "3"))

	data, err := os.ReadFile(filepath.Join(cfg.Output.Root, "report.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotEmpty(t, doc["run_id"])
	assert.EqualValues(t, 1, doc["failed"])
}

func TestRun_ReportDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Run.ShardLast = 3
	cfg.Output.Report = "-"

	require.NoError(t, run(context.Background(), cfg, discard(), "", ""))
	assert.NoFileExists(t, filepath.Join(cfg.Output.Root, "report.json"))
}
