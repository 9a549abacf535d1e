package content

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/domain/content"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "first", preview("  first\nsecond", 10))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
	assert.Equal(t, "éééé…", preview(strings.Repeat("é", 8), 5))
}

func TestPrintDraft(t *testing.T) {
	var out bytes.Buffer
	printDraft(&out, &content.Draft{Platform: connection.PlatformTwitter, Content: "hello #go", CharCount: 9})

	assert.Contains(t, out.String(), "hello #go")
	assert.Contains(t, out.String(), "9/280 characters")
}

func TestPrintPublished(t *testing.T) {
	var out bytes.Buffer
	printPublished(&out, &content.Published{Platform: connection.PlatformTwitter, PostID: "123", URL: "https://twitter.com/i/status/123"})
	assert.Contains(t, out.String(), "https://twitter.com/i/status/123")

	out.Reset()
	printPublished(&out, &content.Published{Platform: connection.PlatformTwitter, PostID: "123"})
	assert.Contains(t, out.String(), "id 123")
}

func TestPrintHistory(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printHistory(&out, nil))
	assert.Equal(t, "No posts yet\n", out.String())

	out.Reset()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, printHistory(&out, []content.HistoryItem{
		{Platform: connection.PlatformTwitter, Status: "posted", GeneratedContent: "a post", CreatedAt: &created},
		{Platform: connection.PlatformGitHub, Status: "draft", GeneratedContent: "no date"},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "posted")
	assert.Contains(t, lines[2], "-")
}
