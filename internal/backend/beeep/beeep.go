// Package beeep delivers toasts through gen2brain/beeep, the portable
// fallback for systems without a richer backend. Only the title, body and
// icon survive; actions and inputs are dropped and no events are raised
// except failures.
package beeep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/ezchuang/gotoast/internal/backend/local"
	"github.com/ezchuang/gotoast/platform"
)

// Sender shows one notification. Alerts also play a sound.
type Sender interface {
	Notify(title, body, icon string) error
	Alert(title, body, icon string) error
}

type desktopSender struct {
	appName string
}

// beeep keeps the application name in a package variable.
var appNameMu sync.Mutex

func (s desktopSender) Notify(title, body, icon string) error {
	appNameMu.Lock()
	defer appNameMu.Unlock()
	beeep.AppName = s.appName
	return beeep.Notify(title, body, icon)
}

func (s desktopSender) Alert(title, body, icon string) error {
	appNameMu.Lock()
	defer appNameMu.Unlock()
	beeep.AppName = s.appName
	return beeep.Alert(title, body, icon)
}

// Option configures the platform.
type Option func(*Platform)

// WithSender replaces beeep, mostly for tests.
func WithSender(newSender func(appID string) Sender) Option {
	return func(p *Platform) {
		p.newSender = newSender
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Platform) {
		p.logger = l
	}
}

type Platform struct {
	newSender func(appID string) Sender
	logger    *slog.Logger

	mu        sync.Mutex
	notifiers map[string]*Notifier
}

var _ platform.Platform = (*Platform)(nil)

func New(opts ...Option) *Platform {
	p := &Platform{
		newSender: func(appID string) Sender { return desktopSender{appName: appID} },
		logger:    slog.Default(),
		notifiers: make(map[string]*Notifier),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "beeep")
	return p
}

func (p *Platform) CreateNotifier(appID string) (platform.Notifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n, ok := p.notifiers[appID]; ok {
		return n, nil
	}
	n := &Notifier{
		sender: p.newSender(appID),
		logger: p.logger.With("app_id", appID),
		shown:  local.NewRegistry(),
	}
	n.schedule = local.NewScheduler(n.deliver)
	p.notifiers[appID] = n
	return n, nil
}

func (p *Platform) History() platform.History {
	return history{p}
}

func (p *Platform) notifier(appID string) (*Notifier, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.notifiers[appID]
	return n, ok
}

type Notifier struct {
	sender   Sender
	logger   *slog.Logger
	shown    *local.Registry
	schedule *local.Scheduler
}

var _ platform.Notifier = (*Notifier)(nil)

func (n *Notifier) Show(_ context.Context, notification *platform.Notification) error {
	var values map[string]string
	if notification.Data != nil {
		values = notification.Data.Values
	}
	if err := n.send(notification, values); err != nil {
		return err
	}
	n.shown.Put(notification, 0)
	return nil
}

// Update shows the toast again with the new data; beeep cannot replace a
// notification in place.
func (n *Notifier) Update(_ context.Context, data *platform.NotificationData, tag, group string) (platform.UpdateResult, error) {
	s, result := n.shown.Apply(data, tag, group)
	if result != platform.UpdateSucceeded {
		return result, nil
	}
	if s.Notification.SuppressPopup {
		return result, nil
	}
	if err := n.send(s.Notification, s.Values); err != nil {
		return platform.UpdateFailed, err
	}
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

func (n *Notifier) deliver(s *platform.ScheduledNotification) {
	err := n.Show(context.Background(), &platform.Notification{
		Document:       s.Document,
		Tag:            s.Tag,
		Group:          s.Group,
		ExpirationTime: s.ExpirationTime,
		SuppressPopup:  s.SuppressPopup,
	})
	if err != nil {
		n.logger.Error("deliver scheduled toast", "tag", s.Tag, "error", err)
	}
}

func (n *Notifier) send(notification *platform.Notification, values map[string]string) error {
	if notification.SuppressPopup {
		return nil
	}
	r := notification.Document.Render(values)
	title, body := local.Summary(r)
	icon := local.Icon(r)

	var err error
	if local.Urgent(r) && !r.Audio.Silent {
		err = n.sender.Alert(title, body, icon)
	} else {
		err = n.sender.Notify(title, body, icon)
	}
	if err != nil {
		return fmt.Errorf("beeep notify: %w", err)
	}
	if len(r.Actions) > 0 || len(r.Inputs) > 0 {
		n.logger.Debug("actions and inputs are not shown by beeep", "tag", notification.Tag)
	}
	return nil
}

// history only forgets toasts; beeep cannot retract a shown notification.
type history struct {
	p *Platform
}

func (h history) Clear(_ context.Context, appID string) error {
	if n, ok := h.p.notifier(appID); ok {
		n.shown.Clear()
	}
	return nil
}

func (h history) RemoveGroupedTag(_ context.Context, tag, group, appID string) error {
	if n, ok := h.p.notifier(appID); ok {
		n.shown.Remove(tag, group)
	}
	return nil
}

func (h history) RemoveGroup(_ context.Context, group, appID string) error {
	if n, ok := h.p.notifier(appID); ok {
		n.shown.RemoveGroup(group)
	}
	return nil
}
