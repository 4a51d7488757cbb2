// Package navigation provides ports.Navigator implementations.
package navigation

import (
	"sync"
)

// maxNavigations bounds the recorded Navigate calls of a long-running process.
const maxNavigations = 32

// History tracks the location the client is looking at and any navigation
// requested from outside a page (a forced logout). The web console consumes
// the pending target on the next request and answers with a redirect.
type History struct {
	mu      sync.Mutex
	current string
	pending string
	visits  []string
}

func NewHistory() *History {
	return &History{}
}

// Visit records the location the client is currently on.
func (h *History) Visit(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = path
}

// Navigate schedules a move to path.
func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = path
	h.visits = append(h.visits, path)
	if n := len(h.visits); n > maxNavigations {
		h.visits = append(h.visits[:0], h.visits[n-maxNavigations:]...)
	}
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// TakePending returns and clears the scheduled navigation.
func (h *History) TakePending() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == "" {
		return "", false
	}
	p := h.pending
	h.pending = ""
	h.current = p
	return p, true
}

// Navigations lists the most recent Navigate calls, oldest first.
func (h *History) Navigations() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.visits...)
}

// Func adapts a plain function to ports.Navigator; Current always reports "".
type Func func(path string)

func (f Func) Navigate(path string) { f(path) }
func (f Func) Current() string      { return "" }
