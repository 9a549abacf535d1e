package checkout

import (
	"html/template"
	"sync"
)

// Script tracks the gateway's loader script for one page lifetime. Load is
// idempotent and Unload removes the script only if it is still present.
type Script struct {
	src    string
	mu     sync.Mutex
	loaded bool
}

func NewScript(src string) *Script {
	return &Script{src: src}
}

func (s *Script) Src() string {
	return s.src
}

// Load injects the script unless it already is. It reports whether this
// call did the injection.
func (s *Script) Load() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return false
	}
	s.loaded = true
	return true
}

// Unload removes the script. It reports whether anything was removed.
func (s *Script) Unload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false
	}
	s.loaded = false
	return true
}

func (s *Script) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Tag renders the script element, or nothing when unloaded.
func (s *Script) Tag() template.HTML {
	if !s.Loaded() {
		return ""
	}
	return template.HTML(`<script src="` + template.HTMLEscapeString(s.src) + `"></script>`)
}
