// Package local holds the bookkeeping shared by backends whose OS service
// has no scheduler or history of its own: a timer based schedule and a
// registry of shown notifications.
package local

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ezchuang/gotoast/platform"
)

// ErrNotScheduled is returned when removing a notification the scheduler
// does not hold.
var ErrNotScheduled = errors.New("notification is not scheduled")

// Scheduler delivers scheduled notifications at their delivery time.
type Scheduler struct {
	deliver func(*platform.ScheduledNotification)

	mu      sync.Mutex
	pending map[*platform.ScheduledNotification]*time.Timer
}

// NewScheduler returns a scheduler calling deliver from a timer goroutine.
func NewScheduler(deliver func(*platform.ScheduledNotification)) *Scheduler {
	return &Scheduler{
		deliver: deliver,
		pending: make(map[*platform.ScheduledNotification]*time.Timer),
	}
}

// Add arms a timer for n. Delivery times in the past fire right away.
func (s *Scheduler) Add(n *platform.ScheduledNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.pending[n]; ok {
		old.Stop()
	}
	s.pending[n] = time.AfterFunc(time.Until(n.DeliveryTime), func() {
		s.mu.Lock()
		_, ok := s.pending[n]
		delete(s.pending, n)
		s.mu.Unlock()
		if ok {
			s.deliver(n)
		}
	})
}

// List returns the pending notifications ordered by delivery time.
func (s *Scheduler) List() []*platform.ScheduledNotification {
	s.mu.Lock()
	out := make([]*platform.ScheduledNotification, 0, len(s.pending))
	for n := range s.pending {
		out = append(out, n)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].DeliveryTime.Before(out[j].DeliveryTime)
	})
	return out
}

// Remove cancels n. Notifications are matched by identity, as returned
// from List.
func (s *Scheduler) Remove(n *platform.ScheduledNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.pending[n]
	if !ok {
		return ErrNotScheduled
	}
	timer.Stop()
	delete(s.pending, n)
	return nil
}

// Stop cancels everything still pending.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n, timer := range s.pending {
		timer.Stop()
		delete(s.pending, n)
	}
}
