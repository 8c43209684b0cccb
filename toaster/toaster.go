// Package toaster sends toast.Toast values to the OS notification service.
//
// Two toasters exist. Basic uses the legacy template and the display name as
// application identity; it warns about interactive content but still sends
// it. Interactable uses the generic template and needs an application
// identity (AUMID) for buttons and inputs to reach the callbacks.
package toaster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/platform"
	"github.com/ezchuang/gotoast/toast"
)

// ErrToastNotFound is returned by Unschedule when the toast is not scheduled.
var ErrToastNotFound = toast.ErrToastNotFound

// Toaster is implemented by Basic and Interactable.
type Toaster interface {
	// AppID is the identity toasts are sent under.
	AppID() string
	// BuildDocument builds the XML for t. Dynamic documents bind their text
	// and progress to adaptable data so Update can change them later.
	BuildDocument(t *toast.Toast, dynamic bool) *document.Document
	Show(ctx context.Context, t *toast.Toast) error
	// Update pushes the current text and progress of t to a shown toast and
	// reports whether the platform applied it.
	Update(ctx context.Context, t *toast.Toast) (bool, error)
	Schedule(ctx context.Context, t *toast.Toast, at time.Time) error
	Unschedule(ctx context.Context, t *toast.Toast) error
	Clear(ctx context.Context) error
	ClearScheduled(ctx context.Context) error
	Remove(ctx context.Context, t *toast.Toast) error
	RemoveGroup(ctx context.Context, group string) error
}

// Option configures a toaster.
type Option func(*options)

type options struct {
	platform platform.Platform
	logger   *slog.Logger
	aumid    string
}

// WithPlatform sends toasts through p instead of the default backend.
func WithPlatform(p platform.Platform) Option {
	return func(o *options) {
		o.platform = p
	}
}

// WithLogger sets the logger receiving warnings about unsupported content.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithAUMID sets the registered application identity of an Interactable
// toaster. Basic toasters ignore it.
func WithAUMID(aumid string) Option {
	return func(o *options) {
		o.aumid = aumid
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.platform == nil {
		o.platform = DefaultPlatform(o.logger)
	}
	return o
}

// base holds what both toasters share. build is the variant's document
// builder.
type base struct {
	appText  string
	appID    string
	platform platform.Platform
	notifier platform.Notifier
	logger   *slog.Logger
	build    func(t *toast.Toast, dynamic bool) *document.Document
}

func newBase(appText, appID string, o options) (base, error) {
	notifier, err := o.platform.CreateNotifier(appID)
	if err != nil {
		return base{}, fmt.Errorf("create notifier for %s: %w", appID, err)
	}
	return base{
		appText:  appText,
		appID:    appID,
		platform: o.platform,
		notifier: notifier,
		logger:   o.logger.With("component", "toaster", "app_id", appID),
	}, nil
}

func (b *base) AppID() string {
	return b.appID
}

// setup applies the parts of the document common to both toasters. Audio
// goes after the duration so looping audio always ends up long.
func (b *base) setup(t *toast.Toast) *document.Document {
	d := document.New(t)
	for _, img := range t.Images {
		d.AddImage(img)
	}
	if t.Duration != toast.DurationDefault {
		d.SetDuration(t.Duration)
	}
	if !t.Timestamp.IsZero() {
		d.SetCustomTimestamp(t.Timestamp)
	}
	if t.Audio != nil {
		d.SetAudioAttributes(t.Audio)
	}
	if t.AttributionText != "" {
		d.SetAttributionText(t.AttributionText)
	}
	if t.Scenario != toast.ScenarioDefault {
		d.SetScenario(t.Scenario)
	}
	if t.LaunchAction != "" {
		d.SetLaunch(t.LaunchAction, true)
	} else {
		d.SetLaunch(t.Tag, false)
	}
	return d
}

// setupInteractive adds inputs, actions and the progress bar.
func setupInteractive(d *document.Document, t *toast.Toast, dynamic bool) {
	for _, in := range t.Inputs {
		d.AddInput(in)
	}
	for _, a := range t.Actions {
		d.AddAction(a)
	}
	if t.ProgressBar != nil {
		if dynamic {
			d.AddProgressBar()
		} else {
			d.AddStaticProgressBar(t.ProgressBar)
		}
	}
}

func (b *base) Show(ctx context.Context, t *toast.Toast) error {
	n := &platform.Notification{
		Document:       b.build(t, true),
		Tag:            t.Tag,
		Group:          groupOf(t),
		ExpirationTime: t.ExpirationTime,
		SuppressPopup:  t.SuppressPopup,
		Data:           buildAdaptableData(t),
	}
	attachCallbacks(n, t)

	if err := b.notifier.Show(ctx, n); err != nil {
		return fmt.Errorf("show toast %s: %w", t.Tag, err)
	}
	b.logger.Debug("toast shown", "tag", t.Tag, "group", n.Group)
	return nil
}

func (b *base) Update(ctx context.Context, t *toast.Toast) (bool, error) {
	data := buildAdaptableData(t)
	result, err := b.notifier.Update(ctx, data, t.Tag, groupOf(t))
	if err != nil {
		return false, fmt.Errorf("update toast %s: %w", t.Tag, err)
	}
	if result != platform.UpdateSucceeded {
		b.logger.Debug("toast update rejected", "tag", t.Tag, "result", result.String())
	}
	return result == platform.UpdateSucceeded, nil
}

func (b *base) Schedule(ctx context.Context, t *toast.Toast, at time.Time) error {
	n := &platform.ScheduledNotification{
		Document:       b.build(t, false),
		Tag:            t.Tag,
		Group:          groupOf(t),
		ExpirationTime: t.ExpirationTime,
		SuppressPopup:  t.SuppressPopup,
		DeliveryTime:   at,
	}
	if err := b.notifier.AddToSchedule(ctx, n); err != nil {
		return fmt.Errorf("schedule toast %s: %w", t.Tag, err)
	}
	b.logger.Debug("toast scheduled", "tag", t.Tag, "at", at)
	return nil
}

func (b *base) Unschedule(ctx context.Context, t *toast.Toast) error {
	scheduled, err := b.notifier.ScheduledNotifications(ctx)
	if err != nil {
		return fmt.Errorf("list scheduled toasts: %w", err)
	}
	for _, n := range scheduled {
		if n.Tag != t.Tag {
			continue
		}
		if err := b.notifier.RemoveFromSchedule(ctx, n); err != nil {
			return fmt.Errorf("unschedule toast %s: %w", t.Tag, err)
		}
		return nil
	}
	return fmt.Errorf("unschedule toast %s: %w", t.Tag, ErrToastNotFound)
}

// Clear removes the toasts this toaster put in the action center.
func (b *base) Clear(ctx context.Context) error {
	if err := b.platform.History().Clear(ctx, b.appID); err != nil {
		return fmt.Errorf("clear toasts: %w", err)
	}
	return nil
}

func (b *base) ClearScheduled(ctx context.Context) error {
	scheduled, err := b.notifier.ScheduledNotifications(ctx)
	if err != nil {
		return fmt.Errorf("list scheduled toasts: %w", err)
	}
	for _, n := range scheduled {
		if err := b.notifier.RemoveFromSchedule(ctx, n); err != nil {
			return fmt.Errorf("unschedule toast %s: %w", n.Tag, err)
		}
	}
	return nil
}

func (b *base) Remove(ctx context.Context, t *toast.Toast) error {
	if err := b.platform.History().RemoveGroupedTag(ctx, t.Tag, groupOf(t), b.appID); err != nil {
		return fmt.Errorf("remove toast %s: %w", t.Tag, err)
	}
	return nil
}

func (b *base) RemoveGroup(ctx context.Context, group string) error {
	if err := b.platform.History().RemoveGroup(ctx, group, b.appID); err != nil {
		return fmt.Errorf("remove toast group %s: %w", group, err)
	}
	return nil
}

// groupOf falls back to the tag; some platform operations need a non-empty group.
func groupOf(t *toast.Toast) string {
	if t.Group != "" {
		return t.Group
	}
	return t.Tag
}
