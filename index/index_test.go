package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeShard(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "0", "ID 10\n0 1 2\nID 11\n3 4\n")
	// shard 1 intentionally missing
	writeShard(t, dir, "2", "ID 12\n5\n")

	idx, err := Build(context.Background(), dir, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 3, idx.Shards())
	assert.Equal(t, []int{1}, idx.Skipped())

	path, err := idx.Lookup(11)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "0"), path)

	path, err = idx.Lookup(12)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2"), path)

	assert.True(t, idx.Contains(10))
	assert.False(t, idx.Contains(99))
	assert.Equal(t, uint64(3), idx.Articles().GetCardinality())
}

func TestBuild_WideArticleIDs(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "0", "ID 1099511627776\nID 7\n")

	idx, err := Build(context.Background(), dir, 1)
	require.NoError(t, err)
	assert.True(t, idx.Contains(1<<40))
	assert.True(t, idx.Contains(7))
	assert.False(t, idx.Contains(1<<40+1))

	ids := idx.Articles()
	assert.Equal(t, uint64(2), ids.GetCardinality())
	ids.Remove(7)
	assert.True(t, idx.Contains(7), "Articles returns a copy")
}

func TestBuild_BoundedScan(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "0", "ID 1\n")
	writeShard(t, dir, "5", "ID 2\n")

	idx, err := Build(context.Background(), dir, 2)
	require.NoError(t, err)
	assert.True(t, idx.Contains(1))
	assert.False(t, idx.Contains(2), "shard beyond the configured count must not be scanned")
}

func TestBuild_LaterShardWins(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "0", "ID 5\n")
	writeShard(t, dir, "1", "ID 5\n")

	for _, workers := range []int{1, 4} {
		idx, err := Build(context.Background(), dir, 2, WithConcurrency(workers))
		require.NoError(t, err)
		path, err := idx.Lookup(5)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "1"), path)
	}
}

func TestBuild_CompressedShard(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "0.zst"))
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte("ID 42\n1 2 3\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	idx, err := Build(context.Background(), dir, 1)
	require.NoError(t, err)
	path, err := idx.Lookup(42)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "0.zst"), path)
}

func TestBuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, t.TempDir(), 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLookup_NotFound(t *testing.T) {
	idx, err := Build(context.Background(), t.TempDir(), 0)
	require.NoError(t, err)

	_, err = idx.Lookup(7)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		line   string
		want   ArticleID
		wantOK bool
	}{
		{"ID 432236", 432236, true},
		{"ID\t7 extra", 7, true},
		{"  ID 3", 3, true},
		{"ID", 0, false},
		{"ID abc", 0, false},
		{"IDX 4", 0, false},
		{"0 1 2 0 5", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseHeader(tt.line)
		assert.Equal(t, tt.wantOK, ok, "line %q", tt.line)
		assert.Equal(t, tt.want, got, "line %q", tt.line)
	}

	assert.True(t, IsHeader("ID abc"))
	assert.False(t, IsHeader("12 ID"))
}
