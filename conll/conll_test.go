package conll

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArticle(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	err := w.WriteArticle(
		[][]string{{"Obama", "was", "president"}},
		[][]string{{"PERSON", "O", "O"}},
	)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	want := "-DOCSTART-          O\n" +
		"\n" +
		"Obama               PERSON\n" +
		"was                 O\n" +
		"president           O\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 1, w.Articles())
	assert.Equal(t, 4, w.Lines())
}

func TestWriteArticle_SeparatesArticles(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteArticle([][]string{{"a"}, {"b"}}, [][]string{{"O"}, {"X"}}))
	require.NoError(t, w.WriteArticle([][]string{{"c"}}, [][]string{{"O"}}))
	require.NoError(t, w.Flush())

	want := "-DOCSTART-          O\n" +
		"\n" +
		"a                   O\n" +
		"\n" +
		"b                   X\n" +
		"\n" +
		"-DOCSTART-          O\n" +
		"\n" +
		"c                   O\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 2, strings.Count(buf.String(), DocStart))
}

func TestWriteArticle_EmptyArticle(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteArticle(nil, nil))
	require.NoError(t, w.Flush())
	assert.Equal(t, "-DOCSTART-          O\n", buf.String())
}

func TestWriteArticle_LongToken(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	long := strings.Repeat("x", 20)
	longer := strings.Repeat("y", 25)
	require.NoError(t, w.WriteArticle([][]string{{long, longer}}, [][]string{{"A", "B"}}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, long+" A", lines[2])
	assert.Equal(t, longer+" B", lines[3])
}

func TestWriteArticle_PadsByRunes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteArticle([][]string{{"Zürich"}}, [][]string{{"/location/city"}}))
	require.NoError(t, w.Flush())

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "Zürich"+strings.Repeat(" ", 14)+"/location/city", lines[2])
}

func TestWriteArticle_Column(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithColumn(4))

	require.NoError(t, w.WriteArticle([][]string{{"ab"}}, [][]string{{"O"}}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "-DOCSTART- O\n\nab  O\n", buf.String())
}

func TestWriteArticle_Mismatch(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	err := w.WriteArticle([][]string{{"a"}}, nil)
	assert.ErrorIs(t, err, ErrLabelMismatch)

	err = w.WriteArticle([][]string{{"a", "b"}}, [][]string{{"O"}})
	assert.ErrorIs(t, err, ErrLabelMismatch)
	assert.Zero(t, w.Articles())
}
