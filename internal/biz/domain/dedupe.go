package domain

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"
)

// Window is a sliding-window duplicate cache. A key seen again within
// the window is suppressed; entries older than the window are pruned
// opportunistically on the next insert, there is no background sweep.
type Window struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

// NewWindow creates a duplicate window with the given ttl.
func NewWindow(ttl time.Duration) *Window {
	return &Window{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Seen records the key and reports whether it was already recorded
// within the window. On a hit the stored timestamp is not advanced, so
// a steady stream of repeats stays anchored to the first occurrence.
func (w *Window) Seen(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if last, ok := w.seen[key]; ok && now.Sub(last) < w.ttl {
		return true
	}

	for k, ts := range w.seen {
		if now.Sub(ts) >= w.ttl {
			delete(w.seen, k)
		}
	}
	w.seen[key] = now
	return false
}

// Len returns the number of live entries, for tests and diagnostics.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

// HashMessage derives the duplicate-detection hash for a message from
// its content and embed text. The digest only needs to be deterministic
// and order-sensitive, not cryptographically strong.
func HashMessage(content, embedText string) string {
	sum := md5.Sum([]byte(content + embedText))
	return hex.EncodeToString(sum[:])
}

// DedupeKey builds the classification-layer duplicate key: the same
// content from two different authors is two distinct events.
func DedupeKey(authorID, content, embedText string) string {
	return authorID + "-" + HashMessage(content, embedText)
}
