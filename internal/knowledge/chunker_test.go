package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerSplitEmpty(t *testing.T) {
	c := NewChunker(100, 10)

	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestChunkerSplitPassthrough(t *testing.T) {
	// Chunk size zero disables splitting entirely.
	c := NewChunker(0, 0)
	chunks := c.Split("Solar panels are efficient.")

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "Solar panels are efficient.", chunks[0].Text)
}

func TestChunkerSplitShortText(t *testing.T) {
	c := NewChunker(100, 10)
	chunks := c.Split("short text")

	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
}

func TestChunkerSplitWindows(t *testing.T) {
	c := NewChunker(10, 2)
	text := strings.Repeat("a", 25)

	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, len([]rune(chunk.Text)), 10)
	}
}

func TestChunkerNormalizesWhitespace(t *testing.T) {
	c := NewChunker(0, 0)
	chunks := c.Split("hello \n\n  world\t!")

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world !", chunks[0].Text)
}

func TestChunkerOverlapClamped(t *testing.T) {
	// Overlap >= chunk size would loop forever; the constructor clamps it.
	c := NewChunker(8, 20)
	chunks := c.Split(strings.Repeat("b", 40))

	assert.NotEmpty(t, chunks)
}
