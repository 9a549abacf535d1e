// Package content models AI-generated posts and the user's publishing history.
package content

import (
	"time"

	"github.com/mataroo/mataroo/internal/domain/connection"
)

// Per-platform body limits enforced before publishing.
var maxPostLength = map[connection.Platform]int{
	connection.PlatformTwitter: 280,
}

// MaxLength returns the body limit for p, or 0 when the platform has none.
func MaxLength(p connection.Platform) int {
	return maxPostLength[p]
}

// Draft is a generated post awaiting review.
type Draft struct {
	Platform     connection.Platform `json:"platform"`
	Prompt       string              `json:"prompt"`
	Content      string              `json:"content"`
	Hashtags     []string            `json:"hashtags"`
	FinalContent string              `json:"final_content"`
	CharCount    int                 `json:"char_count"`
}

// Body is what gets published: the final composition when present.
func (d Draft) Body() string {
	if d.FinalContent != "" {
		return d.FinalContent
	}
	return d.Content
}

// FitsPlatform reports whether the body is within the platform's limit.
func (d Draft) FitsPlatform() bool {
	limit := MaxLength(d.Platform)
	return limit == 0 || len([]rune(d.Body())) <= limit
}

// Published is the outcome of a successful publish.
type Published struct {
	Platform connection.Platform `json:"platform"`
	PostID   string              `json:"post_id"`
	URL      string              `json:"url"`
}

// HistoryItem is one previously generated (and usually published) post.
type HistoryItem struct {
	ID               string              `json:"id"`
	Platform         connection.Platform `json:"platform"`
	UserPrompt       string              `json:"user_prompt"`
	GeneratedContent string              `json:"generated_content"`
	Hashtags         []string            `json:"hashtags"`
	PlatformPostID   string              `json:"platform_post_id,omitempty"`
	PlatformPostURL  string              `json:"platform_post_url,omitempty"`
	Status           string              `json:"status"`
	CreatedAt        *time.Time          `json:"created_at,omitempty"`
}
