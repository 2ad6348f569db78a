package resolve

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/pumldock/pumldock/pkg/observability"
)

// ErrNotManaged reports an operation on a diagram path that was never
// registered for the current pass. The resolver leaves references to
// unmanaged paths verbatim.
var ErrNotManaged = errors.New("diagram not managed")

// State tracks a registered diagram through resolution.
type State int

const (
	// StateUnknown marks paths that were never registered.
	StateUnknown State = iota
	// StatePending marks registered paths whose resolution has not started.
	StatePending
	// StateResolving marks paths a goroutine is currently computing.
	StateResolving
	// StateResolved is terminal; the entry is available.
	StateResolved
)

// Entry is the resolved form of one diagram file.
type Entry struct {
	Path    string // canonical absolute source path
	Text    string // reference-substituted, include-expanded source
	Encoded string // URL-safe encoding of Text
	URL     string // render URL (shortened when shortening is enabled)
}

// Encoder finalizes expanded diagram text into its encoded form and render
// URL. Implementations may call remote services (link shortening), so the
// context is honored.
type Encoder interface {
	EncodeDiagram(ctx context.Context, text string) (encoded, url string, err error)
}

// Cache holds one slot per registered diagram and guarantees each path is
// finalized at most once per pass. Safe for concurrent use.
type Cache struct {
	encoder Encoder

	mu    sync.Mutex
	slots map[string]*slot
}

// slot guards a single diagram's resolution. done is closed exactly once,
// after entry or err is recorded.
type slot struct {
	text     string
	state    State
	entry    *Entry
	err      error
	finished bool
	done     chan struct{}
}

func (s *slot) result() (*Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entry, nil
}

// NewCache creates an empty Cache that finalizes entries with enc.
func NewCache(enc Encoder) *Cache {
	return &Cache{encoder: enc, slots: make(map[string]*slot)}
}

// Register adds a diagram in the pending state, keyed by its canonical
// absolute path and holding its raw on-disk text. Registering a path again
// updates the text only while the slot is still pending.
func (c *Cache) Register(path, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[path]; ok {
		if s.state == StatePending {
			s.text = text
		}
		return
	}
	c.slots[path] = &slot{text: text, state: StatePending, done: make(chan struct{})}
}

// Paths returns every registered path in sorted order.
func (c *Cache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	paths := make([]string, 0, len(c.slots))
	for p := range c.slots {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Len returns the number of registered paths.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// Get returns the entry and state for path. The entry is non-nil only in
// StateResolved.
func (c *Cache) Get(path string) (*Entry, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[path]
	if !ok {
		return nil, StateUnknown
	}
	return s.entry, s.state
}

// Entries returns every resolved entry keyed by path.
func (c *Cache) Entries() map[string]*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make(map[string]*Entry, len(c.slots))
	for p, s := range c.slots {
		if s.state == StateResolved {
			entries[p] = s.entry
		}
	}
	return entries
}

// ResolvedURLs returns the render URL of every resolved entry keyed by path.
func (c *Cache) ResolvedURLs() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	urls := make(map[string]string, len(c.slots))
	for p, s := range c.slots {
		if s.state == StateResolved {
			urls[p] = s.entry.URL
		}
	}
	return urls
}

// Resolve finalizes path with its fully substituted and expanded text: the
// text is encoded, the render URL built, and the entry stored. Waiters are
// woken with the result. Resolving an unregistered path returns
// ErrNotManaged; a path that already finished returns its recorded result
// unchanged.
func (c *Cache) Resolve(ctx context.Context, path, text string) (*Entry, error) {
	c.mu.Lock()
	s, ok := c.slots[path]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", path, ErrNotManaged)
	}
	if s.finished {
		defer c.mu.Unlock()
		return s.result()
	}
	if s.state == StatePending {
		s.state = StateResolving
	}
	c.mu.Unlock()

	encoded, url, err := c.encoder.EncodeDiagram(ctx, text)
	if err != nil {
		return c.complete(s, nil, err)
	}
	entry, err := c.complete(s, &Entry{Path: path, Text: text, Encoded: encoded, URL: url}, nil)
	if err == nil {
		observability.Cache().OnResolve(ctx, path, len(entry.Text))
	}
	return entry, err
}

// complete records a terminal result exactly once and wakes waiters. If the
// slot already finished, the previously recorded result wins; either way the
// slot's terminal result is returned.
func (c *Cache) complete(s *slot, entry *Entry, err error) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !s.finished {
		s.finished = true
		s.entry, s.err = entry, err
		if err == nil {
			s.state = StateResolved
		}
		close(s.done)
	}
	return s.result()
}

type outcome int

const (
	outcomeClaimed outcome = iota // caller owns the computation
	outcomeWait                   // another goroutine is computing
	outcomeDone                   // terminal result recorded
	outcomeUnknown                // path never registered
)

// acquire classifies path for a resolving goroutine. Exactly one caller per
// slot observes outcomeClaimed.
func (c *Cache) acquire(path string) (outcome, *slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[path]
	if !ok {
		return outcomeUnknown, nil
	}
	if s.finished {
		return outcomeDone, s
	}
	if s.state == StatePending {
		s.state = StateResolving
		return outcomeClaimed, s
	}
	return outcomeWait, s
}
