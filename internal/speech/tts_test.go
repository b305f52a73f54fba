package speech

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunksShortTextIsSingleChunk(t *testing.T) {
	chunks := splitChunks("hello there general kenobi", maxChunkLen)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello there general kenobi", chunks[0])
}

func TestSplitChunksRespectsWordBoundaries(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 20))
	chunks := splitChunks(text, maxChunkLen)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), maxChunkLen)
		assert.False(t, strings.HasPrefix(c, " "))
		assert.False(t, strings.HasSuffix(c, " "))
	}

	// no words lost or split
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(chunks, " ")))
}

func TestSplitChunksHardSplitsOverlongWord(t *testing.T) {
	word := strings.Repeat("a", maxChunkLen*2+10)
	chunks := splitChunks("short "+word+" tail", maxChunkLen)

	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), maxChunkLen)
	}
	assert.Equal(t, word, extractRun(chunks))
}

// extractRun reassembles the hard-split "a" run across chunks.
func extractRun(chunks []string) string {
	var sb strings.Builder
	for _, c := range chunks {
		for _, f := range strings.Fields(c) {
			if strings.HasPrefix(f, "a") {
				sb.WriteString(f)
			}
		}
	}
	return sb.String()
}

func TestSplitChunksKeepsRunesIntact(t *testing.T) {
	// Japanese has no spaces, so the whole text is one overlong "word"
	// and every cut must land on a rune boundary
	text := strings.Repeat("こんにちは", 30)
	chunks := splitChunks(text, maxChunkLen)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len(c), maxChunkLen)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitChunksCollapsesWhitespace(t *testing.T) {
	chunks := splitChunks("hello   \n\t world", maxChunkLen)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestIsSupportedLang(t *testing.T) {
	assert.True(t, IsSupportedLang("en"))
	assert.True(t, IsSupportedLang("vi"))
	assert.False(t, IsSupportedLang("klingon"))
	assert.False(t, IsSupportedLang(""))
}

func TestSupportedLangsIsACopy(t *testing.T) {
	langs := SupportedLangs()
	langs["xx"] = "Made Up"
	assert.False(t, IsSupportedLang("xx"))
}

func TestSynthesizeRejectsBadInput(t *testing.T) {
	c := NewClient()

	_, _, err := c.Synthesize(context.Background(), "   ", "en")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, _, err = c.Synthesize(context.Background(), "hello", "klingon")
	assert.Error(t, err)
}
