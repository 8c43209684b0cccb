// Package memory is an in-process notification backend. It renders nothing;
// it records what would be shown and lets callers raise the events a user
// would. The CLI uses it for dry runs and tests use it as the OS.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/internal/backend/local"
	"github.com/ezchuang/gotoast/platform"
)

// ErrNotShown is returned when raising an event on a toast that is not
// being shown.
var ErrNotShown = errors.New("notification is not shown")

// Platform holds one Notifier per application identity.
type Platform struct {
	mu        sync.Mutex
	notifiers map[string]*Notifier
	nextID    atomic.Uint32
}

var _ platform.Platform = (*Platform)(nil)

func New() *Platform {
	return &Platform{notifiers: make(map[string]*Notifier)}
}

// CreateNotifier returns the notifier of appID, creating it once.
func (p *Platform) CreateNotifier(appID string) (platform.Notifier, error) {
	return p.Notifier(appID), nil
}

// Notifier returns the concrete notifier of appID for inspection.
func (p *Platform) Notifier(appID string) *Notifier {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n, ok := p.notifiers[appID]; ok {
		return n
	}
	n := &Notifier{
		appID:    appID,
		platform: p,
		shown:    local.NewRegistry(),
	}
	n.schedule = local.NewScheduler(n.deliver)
	p.notifiers[appID] = n
	return n
}

func (p *Platform) History() platform.History {
	return history{p}
}

func (p *Platform) lookup(appID string) (*Notifier, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.notifiers[appID]
	return n, ok
}

// Notifier records the toasts of one application identity.
type Notifier struct {
	appID    string
	platform *Platform
	shown    *local.Registry
	schedule *local.Scheduler

	mu        sync.Mutex
	delivered []*platform.ScheduledNotification
	showErr   error
}

var _ platform.Notifier = (*Notifier)(nil)

func (n *Notifier) Show(_ context.Context, notification *platform.Notification) error {
	n.mu.Lock()
	err := n.showErr
	n.showErr = nil
	n.mu.Unlock()
	if err != nil {
		return err
	}

	if notification.Document == nil {
		return fmt.Errorf("show %s: notification has no document", notification.Tag)
	}
	n.shown.Put(notification, n.platform.nextID.Add(1))
	return nil
}

func (n *Notifier) Update(_ context.Context, data *platform.NotificationData, tag, group string) (platform.UpdateResult, error) {
	_, result := n.shown.Apply(data, tag, group)
	return result, nil
}

func (n *Notifier) AddToSchedule(_ context.Context, s *platform.ScheduledNotification) error {
	n.schedule.Add(s)
	return nil
}

func (n *Notifier) ScheduledNotifications(context.Context) ([]*platform.ScheduledNotification, error) {
	return n.schedule.List(), nil
}

func (n *Notifier) RemoveFromSchedule(_ context.Context, s *platform.ScheduledNotification) error {
	if err := n.schedule.Remove(s); err != nil {
		return fmt.Errorf("remove %s from schedule: %w", s.Tag, err)
	}
	return nil
}

// FailNextShow makes the next Show return err.
func (n *Notifier) FailNextShow(err error) {
	n.mu.Lock()
	n.showErr = err
	n.mu.Unlock()
}

// Shown lists the toasts currently shown, oldest first.
func (n *Notifier) Shown() []local.Shown {
	all := n.shown.All()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Lookup returns the shown toast with tag and group.
func (n *Notifier) Lookup(tag, group string) (local.Shown, bool) {
	return n.shown.Get(tag, group)
}

// Rendered resolves the shown toast against the data applied so far.
func (n *Notifier) Rendered(tag, group string) (document.Rendered, bool) {
	s, ok := n.shown.Get(tag, group)
	if !ok {
		return document.Rendered{}, false
	}
	return s.Notification.Document.Render(s.Values), true
}

// Delivered lists the scheduled toasts whose delivery time has passed.
func (n *Notifier) Delivered() []*platform.ScheduledNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*platform.ScheduledNotification(nil), n.delivered...)
}

// Activate clicks the toast. Activation removes it.
func (n *Notifier) Activate(tag, group, arguments string, inputs map[string]any) error {
	s, ok := n.shown.Remove(tag, group)
	if !ok {
		return fmt.Errorf("activate %s: %w", tag, ErrNotShown)
	}
	if fn := s.Notification.Activated; fn != nil {
		fn(platform.Activation{Args: arguments, Input: inputs})
	}
	return nil
}

// Dismiss dismisses the toast. A timed out toast stays in the history.
func (n *Notifier) Dismiss(tag, group string, reason int32) error {
	var (
		s  local.Shown
		ok bool
	)
	if reason == platform.ReasonTimedOut {
		s, ok = n.shown.Get(tag, group)
	} else {
		s, ok = n.shown.Remove(tag, group)
	}
	if !ok {
		return fmt.Errorf("dismiss %s: %w", tag, ErrNotShown)
	}
	if fn := s.Notification.Dismissed; fn != nil {
		fn(platform.Dismissal(reason))
	}
	return nil
}

// Fail reports a platform failure for the toast and removes it.
func (n *Notifier) Fail(tag, group string, code int32) error {
	s, ok := n.shown.Remove(tag, group)
	if !ok {
		return fmt.Errorf("fail %s: %w", tag, ErrNotShown)
	}
	if fn := s.Notification.Failed; fn != nil {
		fn(platform.Failure(code))
	}
	return nil
}

// Close stops pending schedules.
func (n *Notifier) Close() {
	n.schedule.Stop()
}

func (n *Notifier) deliver(s *platform.ScheduledNotification) {
	n.mu.Lock()
	n.delivered = append(n.delivered, s)
	n.mu.Unlock()

	n.shown.Put(&platform.Notification{
		Document:       s.Document,
		Tag:            s.Tag,
		Group:          s.Group,
		ExpirationTime: s.ExpirationTime,
		SuppressPopup:  s.SuppressPopup,
	}, n.platform.nextID.Add(1))
}

type history struct {
	p *Platform
}

func (h history) Clear(_ context.Context, appID string) error {
	if n, ok := h.p.lookup(appID); ok {
		n.shown.Clear()
	}
	return nil
}

func (h history) RemoveGroupedTag(_ context.Context, tag, group, appID string) error {
	if n, ok := h.p.lookup(appID); ok {
		n.shown.Remove(tag, group)
	}
	return nil
}

func (h history) RemoveGroup(_ context.Context, group, appID string) error {
	if n, ok := h.p.lookup(appID); ok {
		n.shown.RemoveGroup(group)
	}
	return nil
}
