// Package report serializes a conversion run summary as JSON.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jamesainslie/go-conllize/internal/stats"
)

// topLabels caps the label histogram written per shard.
const topLabels = 20

// Build converts a batch into a protobuf Struct.
func Build(b *stats.Batch) (*structpb.Struct, error) {
	shards := make([]any, 0, len(b.Shards))
	for _, s := range b.Shards {
		shards = append(shards, shardFields(s))
	}

	tot := b.Totals()
	fields := map[string]any{
		"run_id":           b.RunID,
		"duration_seconds": b.Duration.Seconds(),
		"shards":           shards,
		"failed":           len(b.Failed()),
		"uncovered":        b.Uncovered,
		"totals":           shardFields(tot),
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}
	return st, nil
}

func shardFields(s stats.Shard) map[string]any {
	labels := make(map[string]any)
	for _, l := range s.TopLabels(topLabels) {
		labels[l] = s.Labels[l]
	}

	m := map[string]any{
		"index":            s.Index,
		"articles":         s.Articles,
		"distinct":         s.Distinct(),
		"lines":            s.Lines,
		"sentences":        s.Sentences,
		"tokens":           s.Tokens,
		"entity_tokens":    s.EntityTokens,
		"entity_ratio":     s.EntityRatio(),
		"skipped_lines":    s.Skipped,
		"overlaps":         s.Overlaps,
		"duplicates":       s.Duplicates,
		"labels":           labels,
		"duration_seconds": s.Duration.Seconds(),
	}
	if s.Input != "" {
		m["input"] = s.Input
	}
	if s.Output != "" {
		m["output"] = s.Output
	}
	if s.Err != nil {
		m["error"] = s.Err.Error()
	}
	return m
}

// Marshal renders the batch report as indented JSON.
func Marshal(b *stats.Batch) ([]byte, error) {
	st, err := Build(b)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
}

// Write stores the batch report at path, creating parent directories.
func Write(path string, b *stats.Batch) error {
	data, err := Marshal(b)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
