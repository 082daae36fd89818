// Package session holds the output that is visible to the user across
// overlapping requests.
package session

import (
	"sync"
	"time"

	"github.com/zombar/easyread/internal/models"
)

// Ticket identifies one invocation. Later invocations get larger tickets.
type Ticket uint64

// Output is a published result
type Output struct {
	models.Result
	Ticket      Ticket    `json:"ticket"`
	PublishedAt time.Time `json:"published_at"`
}

// Slot is a last-writer-wins output slot. An invocation takes a ticket when
// it starts and publishes with it when it finishes; a completion whose
// ticket is older than the one already published is discarded, so a slow
// earlier request never overwrites the result of a later one.
type Slot struct {
	mu        sync.Mutex
	next      Ticket
	published Ticket
	latest    *Output
	now       func() time.Time
}

// NewSlot creates an empty slot
func NewSlot() *Slot {
	return &Slot{now: time.Now}
}

// Begin returns the ticket of a new invocation
func (s *Slot) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

// Publish stores result unless a newer invocation already published.
// It reports whether result became the visible output.
func (s *Slot) Publish(ticket Ticket, result models.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.published {
		return false
	}
	s.published = ticket
	s.latest = &Output{Result: result, Ticket: ticket, PublishedAt: s.now()}
	return true
}

// Latest returns the visible output, if any
func (s *Slot) Latest() (Output, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return Output{}, false
	}
	return *s.latest, true
}
