package connection

import (
	"errors"
	"time"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrNotConnected        = errors.New("platform not connected")
)

// Connection links the user's account to one third-party identity.
// At most one exists per platform; the backend enforces uniqueness.
type Connection struct {
	Platform         Platform   `json:"platform"`
	PlatformUsername *string    `json:"platform_username,omitempty"`
	IsActive         bool       `json:"is_active"`
	ConnectedAt      *time.Time `json:"connected_at,omitempty"`
}

// Username returns the display handle or an empty string.
func (c Connection) Username() string {
	if c.PlatformUsername == nil {
		return ""
	}
	return *c.PlatformUsername
}

// List is the set of linked accounts keyed by platform.
type List []Connection

// Find returns the entry for platform, if any.
func (l List) Find(p Platform) (Connection, bool) {
	for _, c := range l {
		if c.Platform == p {
			return c, true
		}
	}
	return Connection{}, false
}

// IsConnected is true iff an active entry for p exists. A nil or empty
// list (not yet loaded) is never connected.
func (l List) IsConnected(p Platform) bool {
	c, ok := l.Find(p)
	return ok && c.IsActive
}

// Without returns a copy of the list with the platform's entry removed.
// The receiver is not modified.
func (l List) Without(p Platform) List {
	out := make(List, 0, len(l))
	for _, c := range l {
		if c.Platform != p {
			out = append(out, c)
		}
	}
	return out
}

// Status summarises connected flags for every supported platform.
func (l List) Status() map[Platform]bool {
	status := make(map[Platform]bool, len(SupportedPlatforms))
	for _, p := range SupportedPlatforms {
		status[p] = l.IsConnected(p)
	}
	return status
}
