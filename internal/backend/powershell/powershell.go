// Package powershell delivers toasts through the Windows Runtime toast API,
// driven by PowerShell scripts. Each platform call is one script run;
// toasts with callbacks keep their script alive to relay the events.
package powershell

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/platform"
)

const (
	DefaultExecutable    = "powershell.exe"
	DefaultListenTimeout = 10 * time.Minute
)

type Option func(*Platform)

// WithExecutable sets the PowerShell binary used by the default runner.
func WithExecutable(path string) Option {
	return func(p *Platform) {
		p.runner = ExecRunner{Executable: path}
	}
}

func WithRunner(r Runner) Option {
	return func(p *Platform) {
		p.runner = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Platform) {
		p.logger = l
	}
}

// WithListenTimeout bounds how long a toast with callbacks is watched for
// events.
func WithListenTimeout(d time.Duration) Option {
	return func(p *Platform) {
		p.listen = d
	}
}

type Platform struct {
	runner Runner
	logger *slog.Logger
	listen time.Duration
}

var _ platform.Platform = (*Platform)(nil)

func New(opts ...Option) *Platform {
	p := &Platform{
		runner: ExecRunner{Executable: DefaultExecutable},
		logger: slog.Default(),
		listen: DefaultListenTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "powershell")
	return p
}

func (p *Platform) CreateNotifier(appID string) (platform.Notifier, error) {
	return &Notifier{appID: appID, p: p, logger: p.logger.With("app_id", appID)}, nil
}

func (p *Platform) History() platform.History {
	return history{p}
}

func (p *Platform) run(ctx context.Context, name string, data scriptData) ([]byte, error) {
	script, err := render(name, data)
	if err != nil {
		return nil, fmt.Errorf("render %s script: %w", name, err)
	}
	out, err := p.runner.Run(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("run %s script: %w", name, err)
	}
	return out, nil
}

type Notifier struct {
	appID  string
	p      *Platform
	logger *slog.Logger
}

var _ platform.Notifier = (*Notifier)(nil)

// event is one line written by the show script.
type event struct {
	Event      string            `json:"event"`
	Arguments  string            `json:"arguments"`
	Inputs     map[string]string `json:"inputs"`
	InputError string            `json:"inputError"`
	Reason     int32             `json:"reason"`
	Code       int32             `json:"code"`
}

const eventShown = "shown"

func (n *Notifier) Show(ctx context.Context, notification *platform.Notification) error {
	xml, err := notification.Document.XML()
	if err != nil {
		return fmt.Errorf("serialize toast: %w", err)
	}
	data := scriptData{
		AppID:         n.appID,
		XML:           xml,
		Tag:           notification.Tag,
		Group:         notification.Group,
		SuppressPopup: notification.SuppressPopup,
		Expiration:    formatTime(notification.ExpirationTime),
	}
	if d := notification.Data; d != nil {
		data.Data = &dataValues{SequenceNumber: d.SequenceNumber, Values: d.Values}
	}

	listen := notification.Activated != nil || notification.Dismissed != nil || notification.Failed != nil
	if !listen {
		out, err := n.p.run(ctx, "show", data)
		if err != nil {
			return err
		}
		if !bytes.Contains(out, []byte(eventShown)) {
			return fmt.Errorf("show script ended without showing the toast")
		}
		return nil
	}

	data.ListenSeconds = int(n.p.listen.Seconds())
	return n.startListening(data, notification)
}

// startListening runs the show script in the background and returns once
// the toast is shown. Events are relayed from a goroutine until the
// script exits.
func (n *Notifier) startListening(data scriptData, notification *platform.Notification) error {
	script, err := render("show", data)
	if err != nil {
		return fmt.Errorf("render show script: %w", err)
	}
	out, err := n.p.runner.Start(script)
	if err != nil {
		return fmt.Errorf("run show script: %w", err)
	}

	lines := bufio.NewScanner(out)
	shown := false
	for lines.Scan() {
		var ev event
		if json.Unmarshal(lines.Bytes(), &ev) == nil && ev.Event == eventShown {
			shown = true
			break
		}
	}
	if !shown {
		err := out.Close()
		return fmt.Errorf("show script ended without showing the toast: %v", err)
	}

	go func() {
		defer out.Close()
		for lines.Scan() {
			var ev event
			if err := json.Unmarshal(lines.Bytes(), &ev); err != nil {
				n.logger.Debug("ignoring script output", "line", lines.Text())
				continue
			}
			n.dispatch(ev, notification)
		}
	}()
	return nil
}

func (n *Notifier) dispatch(ev event, notification *platform.Notification) {
	switch ev.Event {
	case "activated":
		if fn := notification.Activated; fn != nil {
			a := platform.Activation{Args: ev.Arguments}
			if ev.InputError != "" {
				a.InputErr = fmt.Errorf("read user input: %s", ev.InputError)
			} else {
				a.Input = make(map[string]any, len(ev.Inputs))
				for k, v := range ev.Inputs {
					a.Input[k] = v
				}
			}
			fn(a)
		}
	case "dismissed":
		if fn := notification.Dismissed; fn != nil {
			fn(platform.Dismissal(ev.Reason))
		}
	case "failed":
		if fn := notification.Failed; fn != nil {
			fn(platform.Failure(ev.Code))
		}
	default:
		n.logger.Debug("unknown toast event", "event", ev.Event, "tag", notification.Tag)
	}
}

func (n *Notifier) Update(ctx context.Context, data *platform.NotificationData, tag, group string) (platform.UpdateResult, error) {
	out, err := n.p.run(ctx, "update", scriptData{
		AppID: n.appID,
		Tag:   tag,
		Group: group,
		Data:  &dataValues{SequenceNumber: data.SequenceNumber, Values: data.Values},
	})
	if err != nil {
		return platform.UpdateFailed, err
	}
	return parseUpdateResult(string(bytes.TrimSpace(out))), nil
}

func parseUpdateResult(s string) platform.UpdateResult {
	switch s {
	case platform.UpdateSucceeded.String():
		return platform.UpdateSucceeded
	case platform.UpdateNotificationNotFound.String():
		return platform.UpdateNotificationNotFound
	default:
		return platform.UpdateFailed
	}
}

func (n *Notifier) AddToSchedule(ctx context.Context, s *platform.ScheduledNotification) error {
	xml, err := s.Document.XML()
	if err != nil {
		return fmt.Errorf("serialize toast: %w", err)
	}
	_, err = n.p.run(ctx, "schedule", scriptData{
		AppID:         n.appID,
		XML:           xml,
		Tag:           s.Tag,
		Group:         s.Group,
		SuppressPopup: s.SuppressPopup,
		Expiration:    formatTime(s.ExpirationTime),
		Delivery:      formatTime(s.DeliveryTime),
	})
	return err
}

type scheduled struct {
	Tag           string `json:"tag"`
	Group         string `json:"group"`
	Delivery      string `json:"delivery"`
	Expiration    string `json:"expiration"`
	SuppressPopup bool   `json:"suppressPopup"`
	XML           string `json:"xml"`
}

func (n *Notifier) ScheduledNotifications(ctx context.Context) ([]*platform.ScheduledNotification, error) {
	out, err := n.p.run(ctx, "list", scriptData{AppID: n.appID})
	if err != nil {
		return nil, err
	}
	return parseScheduled(bytes.NewReader(out))
}

func parseScheduled(r io.Reader) ([]*platform.ScheduledNotification, error) {
	var list []*platform.ScheduledNotification
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 64*1024), 1024*1024)
	for lines.Scan() {
		line := bytes.TrimSpace(lines.Bytes())
		if len(line) == 0 {
			continue
		}
		var s scheduled
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("decode scheduled toast: %w", err)
		}
		doc, err := document.Parse(s.XML)
		if err != nil {
			return nil, err
		}
		n := &platform.ScheduledNotification{
			Document:      doc,
			Tag:           s.Tag,
			Group:         s.Group,
			SuppressPopup: s.SuppressPopup,
		}
		if n.DeliveryTime, err = time.Parse(time.RFC3339, s.Delivery); err != nil {
			return nil, fmt.Errorf("decode delivery time of %s: %w", s.Tag, err)
		}
		if s.Expiration != "" {
			if n.ExpirationTime, err = time.Parse(time.RFC3339, s.Expiration); err != nil {
				return nil, fmt.Errorf("decode expiration time of %s: %w", s.Tag, err)
			}
		}
		list = append(list, n)
	}
	return list, lines.Err()
}

func (n *Notifier) RemoveFromSchedule(ctx context.Context, s *platform.ScheduledNotification) error {
	out, err := n.p.run(ctx, "unschedule", scriptData{AppID: n.appID, Tag: s.Tag, Group: s.Group})
	if err != nil {
		return err
	}
	if removed, _ := strconv.Atoi(strings.TrimSpace(string(out))); removed == 0 {
		n.logger.Debug("no scheduled toast matched", "tag", s.Tag, "group", s.Group)
	}
	return nil
}

type history struct {
	p *Platform
}

func (h history) Clear(ctx context.Context, appID string) error {
	_, err := h.p.run(ctx, "clear", scriptData{AppID: appID})
	return err
}

func (h history) RemoveGroupedTag(ctx context.Context, tag, group, appID string) error {
	_, err := h.p.run(ctx, "remove", scriptData{AppID: appID, Tag: tag, Group: group})
	return err
}

func (h history) RemoveGroup(ctx context.Context, group, appID string) error {
	_, err := h.p.run(ctx, "removeGroup", scriptData{AppID: appID, Group: group})
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
