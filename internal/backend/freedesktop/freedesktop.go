// Package freedesktop delivers toasts to the freedesktop notification server over
// the session bus. Buttons map to notification actions, a text input maps
// to the inline reply some servers offer, and the server's signals are
// translated back into activation and dismissal events.
package freedesktop

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/internal/backend/local"
	"github.com/ezchuang/gotoast/platform"
	"github.com/ezchuang/gotoast/toast"
)

const (
	notifyDest      = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyInterface = "org.freedesktop.Notifications"

	signalActionInvoked = notifyInterface + ".ActionInvoked"
	signalClosed        = notifyInterface + ".NotificationClosed"
	signalReplied       = notifyInterface + ".NotificationReplied"

	actionDefault = "default"
	actionReply   = "inline-reply"
	actionPrefix  = "action-"
)

// Close reasons of the NotificationClosed signal.
const (
	closedExpired   uint32 = 1
	closedDismissed uint32 = 2
	closedByCall    uint32 = 3
)

// Expire timeouts in milliseconds.
const (
	timeoutDefault int32 = -1
	timeoutNever   int32 = 0
	timeoutShort   int32 = 7000
	timeoutLong    int32 = 25000
)

type busObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

type Option func(*Platform)

func WithLogger(l *slog.Logger) Option {
	return func(p *Platform) {
		p.logger = l
	}
}

// Platform talks to the notification server. Notification ids are unique
// per server, so one signal stream serves every notifier.
type Platform struct {
	conn    *dbus.Conn
	obj     busObject
	signals chan *dbus.Signal
	logger  *slog.Logger

	mu        sync.Mutex
	notifiers map[string]*Notifier
}

var _ platform.Platform = (*Platform)(nil)

// New connects to the session bus and starts listening for the server's
// signals.
func New(opts ...Option) (*Platform, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notifyPath),
		dbus.WithMatchInterface(notifyInterface),
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe to notification signals: %w", err)
	}

	p := newPlatform(conn.Object(notifyDest, notifyPath), opts...)
	p.conn = conn
	p.signals = make(chan *dbus.Signal, 16)
	conn.Signal(p.signals)
	go p.listen(p.signals)
	return p, nil
}

func newPlatform(obj busObject, opts ...Option) *Platform {
	p := &Platform{
		obj:       obj,
		logger:    slog.Default(),
		notifiers: make(map[string]*Notifier),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "dbus")
	return p
}

// Close stops listening. The shared session connection stays open.
func (p *Platform) Close() {
	if p.conn != nil {
		p.conn.RemoveSignal(p.signals)
		close(p.signals)
		p.conn = nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.notifiers {
		n.schedule.Stop()
	}
}

func (p *Platform) CreateNotifier(appID string) (platform.Notifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n, ok := p.notifiers[appID]; ok {
		return n, nil
	}
	n := &Notifier{
		appID:  appID,
		obj:    p.obj,
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

func (p *Platform) all() []*Notifier {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Notifier, 0, len(p.notifiers))
	for _, n := range p.notifiers {
		out = append(out, n)
	}
	return out
}

func (p *Platform) listen(signals <-chan *dbus.Signal) {
	for sig := range signals {
		p.handleSignal(sig)
	}
}

func (p *Platform) handleSignal(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}

	for _, n := range p.all() {
		s, ok := n.shown.ByID(id)
		if !ok {
			continue
		}
		switch sig.Name {
		case signalActionInvoked:
			key, _ := sig.Body[1].(string)
			n.shown.RemoveID(id)
			n.invoked(s, key)
		case signalReplied:
			text, _ := sig.Body[1].(string)
			n.shown.RemoveID(id)
			n.replied(s, text)
		case signalClosed:
			reason, _ := sig.Body[1].(uint32)
			n.shown.RemoveID(id)
			if fn := s.Notification.Dismissed; fn != nil {
				fn(platform.Dismissal(dismissalReason(reason)))
			}
		}
		return
	}
}

func dismissalReason(reason uint32) int32 {
	switch reason {
	case closedExpired:
		return platform.ReasonTimedOut
	case closedByCall:
		return platform.ReasonApplicationHidden
	default:
		return platform.ReasonUserCanceled
	}
}

// Notifier shows toasts of one application identity.
type Notifier struct {
	appID    string
	obj      busObject
	logger   *slog.Logger
	shown    *local.Registry
	schedule *local.Scheduler
}

var _ platform.Notifier = (*Notifier)(nil)

func (n *Notifier) Show(ctx context.Context, notification *platform.Notification) error {
	var values map[string]string
	if notification.Data != nil {
		values = notification.Data.Values
	}
	id, err := n.notify(ctx, notification, values, 0)
	if err != nil {
		return err
	}
	n.shown.Put(notification, id)
	return nil
}

// Update replaces the notification on screen with the new data.
func (n *Notifier) Update(ctx context.Context, data *platform.NotificationData, tag, group string) (platform.UpdateResult, error) {
	s, result := n.shown.Apply(data, tag, group)
	if result != platform.UpdateSucceeded {
		return result, nil
	}
	if _, err := n.notify(ctx, s.Notification, s.Values, s.ID); err != nil {
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

// notify calls Notify(app_name, replaces_id, app_icon, summary, body,
// actions, hints, expire_timeout) and returns the server's id.
func (n *Notifier) notify(ctx context.Context, notification *platform.Notification, values map[string]string, replaces uint32) (uint32, error) {
	r := notification.Document.Render(values)
	summary, body := local.Summary(r)

	call := n.obj.CallWithContext(ctx, notifyInterface+".Notify", 0,
		n.appID,
		replaces,
		local.Icon(r),
		summary,
		body,
		actions(r),
		hints(r, notification.SuppressPopup),
		timeout(r),
	)
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("dbus notify: %w", err)
	}
	return id, nil
}

func (n *Notifier) close(s local.Shown) {
	call := n.obj.CallWithContext(context.Background(), notifyInterface+".CloseNotification", 0, s.ID)
	if call.Err != nil {
		n.logger.Warn("close notification", "tag", s.Notification.Tag, "id", s.ID, "error", call.Err)
	}
}

func (n *Notifier) invoked(s local.Shown, key string) {
	r := s.Notification.Document.Render(s.Values)

	if key == actionDefault {
		n.activate(s, r.Launch, map[string]any{})
		return
	}
	i, err := strconv.Atoi(strings.TrimPrefix(key, actionPrefix))
	if err != nil || i < 0 || i >= len(r.Actions) {
		n.logger.Warn("unknown action invoked", "tag", s.Notification.Tag, "key", key)
		return
	}

	a := r.Actions[i]
	if a.ActivationType == "system" {
		if a.Arguments == string(toast.SystemSnooze) {
			n.logger.Debug("snooze is not supported, dismissing", "tag", s.Notification.Tag)
		}
		if fn := s.Notification.Dismissed; fn != nil {
			fn(platform.Dismissal(platform.ReasonUserCanceled))
		}
		return
	}
	n.activate(s, a.Arguments, map[string]any{})
}

func (n *Notifier) replied(s local.Shown, text string) {
	r := s.Notification.Document.Render(s.Values)
	in, ok := replyInput(r)
	if !ok {
		return
	}
	args := r.Launch
	for _, a := range r.Actions {
		if a.InputID == in.ID {
			args = a.Arguments
			break
		}
	}
	n.activate(s, args, map[string]any{in.ID: text})
}

func (n *Notifier) activate(s local.Shown, args string, inputs map[string]any) {
	if fn := s.Notification.Activated; fn != nil {
		fn(platform.Activation{Args: args, Input: inputs})
	}
}

// actions lists key/label pairs. Context menu entries are skipped, the
// server has nowhere to put them.
func actions(r document.Rendered) []string {
	out := []string{actionDefault, ""}
	if in, ok := replyInput(r); ok {
		label := in.Title
		if label == "" {
			label = "Reply"
		}
		out = append(out, actionReply, label)
	}
	for i, a := range r.Actions {
		if a.ContextMenu {
			continue
		}
		label := a.Content
		if label == "" {
			label = a.Arguments
		}
		out = append(out, actionPrefix+strconv.Itoa(i), label)
	}
	return out
}

func replyInput(r document.Rendered) (document.RenderedInput, bool) {
	for _, in := range r.Inputs {
		if in.Type == "text" {
			return in, true
		}
	}
	return document.RenderedInput{}, false
}

func hints(r document.Rendered, suppressPopup bool) map[string]dbus.Variant {
	urgency := byte(1)
	switch {
	case local.Urgent(r):
		urgency = 2
	case suppressPopup:
		urgency = 0
	}
	h := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency),
	}

	switch {
	case r.Audio.Silent:
		h["suppress-sound"] = dbus.MakeVariant(true)
	case strings.HasPrefix(r.Audio.Src, "file:"):
		h["sound-file"] = dbus.MakeVariant(local.FilePath(r.Audio.Src))
	case r.Audio.Src != "":
		h["sound-name"] = dbus.MakeVariant(soundName(r.Audio.Src))
	}

	for _, img := range r.Images {
		if img.Placement == string(toast.PlacementHero) {
			h["image-path"] = dbus.MakeVariant(local.FilePath(img.Src))
			break
		}
	}
	if in, ok := replyInput(r); ok && in.Placeholder != "" {
		h["x-kde-reply-placeholder-text"] = dbus.MakeVariant(in.Placeholder)
	}
	if r.Progress != nil {
		if v, err := strconv.ParseFloat(r.Progress.Value, 64); err == nil {
			h["value"] = dbus.MakeVariant(int32(math.Round(v * 100)))
		}
	}
	return h
}

// soundName maps Windows sound events to freedesktop sound theme names.
func soundName(src string) string {
	event := strings.TrimPrefix(src, "ms-winsoundevent:Notification.")
	switch {
	case strings.HasPrefix(event, "Looping.Alarm"):
		return "alarm-clock-elapsed"
	case strings.HasPrefix(event, "Looping.Call"):
		return "phone-incoming-call"
	case event == string(toast.AudioMail):
		return "message-new-email"
	case event == string(toast.AudioIM), event == string(toast.AudioSMS):
		return "message-new-instant"
	case event == string(toast.AudioReminder):
		return "alarm-clock-elapsed"
	default:
		return "dialog-information"
	}
}

func timeout(r document.Rendered) int32 {
	switch toast.Scenario(r.Scenario) {
	case toast.ScenarioAlarm, toast.ScenarioReminder, toast.ScenarioIncomingCall:
		return timeoutNever
	}
	switch toast.Duration(r.Duration) {
	case toast.DurationShort:
		return timeoutShort
	case toast.DurationLong:
		return timeoutLong
	default:
		return timeoutDefault
	}
}

type history struct {
	p *Platform
}

func (h history) Clear(_ context.Context, appID string) error {
	if n, ok := h.p.notifier(appID); ok {
		for _, s := range n.shown.Clear() {
			n.close(s)
		}
	}
	return nil
}

func (h history) RemoveGroupedTag(_ context.Context, tag, group, appID string) error {
	if n, ok := h.p.notifier(appID); ok {
		if s, ok := n.shown.Remove(tag, group); ok {
			n.close(s)
		}
	}
	return nil
}

func (h history) RemoveGroup(_ context.Context, group, appID string) error {
	if n, ok := h.p.notifier(appID); ok {
		for _, s := range n.shown.RemoveGroup(group) {
			n.close(s)
		}
	}
	return nil
}
