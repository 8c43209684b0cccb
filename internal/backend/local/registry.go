package local

import (
	"maps"
	"sync"

	"github.com/ezchuang/gotoast/platform"
)

// Shown is a notification currently on screen or in the notification list.
type Shown struct {
	Notification *platform.Notification
	// Values is the merged adaptable data applied so far.
	Values   map[string]string
	Sequence uint32
	// ID is the backend's own handle, if it has one.
	ID uint32
}

type key struct {
	tag, group string
}

// Registry tracks shown notifications by tag and group.
type Registry struct {
	mu    sync.Mutex
	shown map[key]*Shown
}

func NewRegistry() *Registry {
	return &Registry{shown: make(map[key]*Shown)}
}

// Put records n, replacing any notification with the same tag and group.
func (r *Registry) Put(n *platform.Notification, id uint32) *Shown {
	s := &Shown{Notification: n, ID: id, Values: map[string]string{}}
	if n.Data != nil {
		maps.Copy(s.Values, n.Data.Values)
		s.Sequence = n.Data.SequenceNumber
	}

	r.mu.Lock()
	r.shown[key{n.Tag, n.Group}] = s
	r.mu.Unlock()
	return s
}

// Apply merges data into the notification identified by tag and group.
// Data not newer than the last applied sequence number is rejected, except
// that zero always applies.
func (r *Registry) Apply(data *platform.NotificationData, tag, group string) (Shown, platform.UpdateResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shown[key{tag, group}]
	if !ok {
		return Shown{}, platform.UpdateNotificationNotFound
	}
	if data.SequenceNumber != 0 && data.SequenceNumber <= s.Sequence {
		return r.snapshot(s), platform.UpdateFailed
	}
	s.Sequence = data.SequenceNumber
	maps.Copy(s.Values, data.Values)
	return r.snapshot(s), platform.UpdateSucceeded
}

// Get returns a copy of the entry for tag and group.
func (r *Registry) Get(tag, group string) (Shown, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shown[key{tag, group}]
	if !ok {
		return Shown{}, false
	}
	return r.snapshot(s), true
}

// ByID finds the entry with the given backend handle.
func (r *Registry) ByID(id uint32) (Shown, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.shown {
		if s.ID == id {
			return r.snapshot(s), true
		}
	}
	return Shown{}, false
}

// Remove forgets the entry for tag and group and returns it.
func (r *Registry) Remove(tag, group string) (Shown, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{tag, group}
	s, ok := r.shown[k]
	if !ok {
		return Shown{}, false
	}
	delete(r.shown, k)
	return *s, true
}

// RemoveID forgets the entry with the given backend handle.
func (r *Registry) RemoveID(id uint32) (Shown, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, s := range r.shown {
		if s.ID == id {
			delete(r.shown, k)
			return *s, true
		}
	}
	return Shown{}, false
}

// RemoveGroup forgets every entry in group.
func (r *Registry) RemoveGroup(group string) []Shown {
	return r.removeIf(func(k key) bool { return k.group == group })
}

// Clear forgets everything.
func (r *Registry) Clear() []Shown {
	return r.removeIf(func(key) bool { return true })
}

// All returns copies of every entry.
func (r *Registry) All() []Shown {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Shown, 0, len(r.shown))
	for _, s := range r.shown {
		out = append(out, r.snapshot(s))
	}
	return out
}

func (r *Registry) removeIf(match func(key) bool) []Shown {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Shown
	for k, s := range r.shown {
		if match(k) {
			out = append(out, *s)
			delete(r.shown, k)
		}
	}
	return out
}

func (r *Registry) snapshot(s *Shown) Shown {
	c := *s
	c.Values = maps.Clone(s.Values)
	return c
}
