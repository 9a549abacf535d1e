package connection

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Platform is the natural key of a Connection.
type Platform string

const (
	PlatformTwitter Platform = "twitter"
	PlatformGitHub  Platform = "github"
)

// SupportedPlatforms lists the platforms the backend can link, in display order.
var SupportedPlatforms = []Platform{PlatformGitHub, PlatformTwitter}

var displayNames = map[Platform]string{
	PlatformTwitter: "Twitter",
	PlatformGitHub:  "GitHub",
}

func (p Platform) String() string {
	return string(p)
}

func (p Platform) IsSupported() bool {
	_, ok := displayNames[p]
	return ok
}

// DisplayName is the human label; unknown platforms are title-cased.
func (p Platform) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	// casers are stateful, so one per call
	return cases.Title(language.English).String(string(p))
}

// ParsePlatform normalizes user input and rejects unsupported platforms.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
	}
	return p, nil
}
