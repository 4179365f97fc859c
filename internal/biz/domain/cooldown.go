package domain

import (
	"sync"
	"time"
)

// CooldownGate guards a delayed broadcast action per channel. The
// trigger path can race with itself for the same channel, so the
// cooldown timestamp is committed under a channel-scoped lock and,
// critically, before the visible delay starts: concurrent triggers
// arriving during the delay see the committed timestamp and drop out.
type CooldownGate struct {
	mu       sync.Mutex
	channels map[int64]*cooldownState

	sleep func(time.Duration) // replaced in tests
	now   func() time.Time
}

type cooldownState struct {
	mu          sync.Mutex
	lastTrigger time.Time
}

// NewCooldownGate creates an empty gate. Per-channel state is created
// lazily on first trigger and lives for the process lifetime.
func NewCooldownGate() *CooldownGate {
	return &CooldownGate{
		channels: make(map[int64]*cooldownState),
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

func (g *CooldownGate) state(channelID int64) *cooldownState {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.channels[channelID]
	if !ok {
		st = &cooldownState{}
		g.channels[channelID] = st
	}
	return st
}

func (st *cooldownState) cooling(now time.Time, cooldown time.Duration) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return now.Sub(st.lastTrigger) < cooldown
}

// TryBroadcast runs action after delay unless the channel is still
// cooling down. A cheap check first avoids lock contention on the
// common "still cooling down" path; the re-check before commit closes
// the race between near-simultaneous triggers. Returns whether the
// action ran.
func (g *CooldownGate) TryBroadcast(channelID int64, delay, cooldown time.Duration, action func()) bool {
	st := g.state(channelID)

	if st.cooling(g.now(), cooldown) {
		return false
	}

	st.mu.Lock()
	now := g.now()
	if now.Sub(st.lastTrigger) < cooldown {
		st.mu.Unlock()
		return false
	}
	// Commit before the delay so racing triggers are rejected.
	st.lastTrigger = now
	st.mu.Unlock()

	g.sleep(delay)
	action()
	return true
}
