package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mataroo/mataroo/internal/domain/connection"
)

func TestDraft_Body(t *testing.T) {
	assert.Equal(t, "final", Draft{Content: "raw", FinalContent: "final"}.Body())
	assert.Equal(t, "raw", Draft{Content: "raw"}.Body())
}

func TestDraft_FitsPlatform(t *testing.T) {
	long := strings.Repeat("é", 281)

	assert.False(t, Draft{Platform: connection.PlatformTwitter, Content: long}.FitsPlatform())
	assert.True(t, Draft{Platform: connection.PlatformTwitter, Content: long[:len(long)-2]}.FitsPlatform())
	assert.True(t, Draft{Platform: connection.PlatformGitHub, Content: long}.FitsPlatform())
}
