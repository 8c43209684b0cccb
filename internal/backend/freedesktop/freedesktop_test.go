package freedesktop

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/platform"
	"github.com/ezchuang/gotoast/toast"
)

type busCall struct {
	method string
	args   []interface{}
}

type fakeBus struct {
	mu     sync.Mutex
	calls  []busCall
	nextID uint32
	err    error
}

func (b *fakeBus) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, busCall{method: method, args: args})
	if b.err != nil {
		return &dbus.Call{Err: b.err}
	}
	if method == notifyInterface+".Notify" {
		b.nextID++
		return &dbus.Call{Body: []interface{}{b.nextID}}
	}
	return &dbus.Call{}
}

func (b *fakeBus) last() busCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func newTestNotifier(t *testing.T) (*Platform, *Notifier, *fakeBus) {
	t.Helper()
	bus := &fakeBus{}
	p := newPlatform(bus)
	n, err := p.CreateNotifier("app")
	require.NoError(t, err)
	return p, n.(*Notifier), bus
}

func interactiveNotification() *platform.Notification {
	tst := toast.New(toast.WithText("Message", "Hi there"))
	d := document.New(tst)
	d.SetTextField(0)
	d.SetTextField(1)
	d.SetLaunch("open-chat", false)
	d.SetScenario(toast.ScenarioReminder)
	d.SetAudioAttributes(toast.NewAudio(toast.AudioIM))
	reply := &toast.TextBox{ID: "reply", Caption: "Reply", Placeholder: "Type a reply"}
	d.AddInput(reply)
	d.AddAction(&toast.Button{Content: "Send", Arguments: "send", RelatedInput: reply})
	d.AddAction(&toast.Button{Content: "Mute", Arguments: "mute", InContextMenu: true})
	d.AddAction(&toast.SystemButton{Action: toast.SystemDismiss})
	return &platform.Notification{
		Document: d,
		Tag:      "t",
		Group:    "g",
		Data: &platform.NotificationData{
			SequenceNumber: 1,
			Values:         map[string]string{"text1": "Message", "text2": "Hi there"},
		},
	}
}

func TestShow_CallsNotify(t *testing.T) {
	_, n, bus := newTestNotifier(t)

	require.NoError(t, n.Show(context.Background(), interactiveNotification()))

	call := bus.last()
	assert.Equal(t, notifyInterface+".Notify", call.method)
	require.Len(t, call.args, 8)
	assert.Equal(t, "app", call.args[0])
	assert.Equal(t, uint32(0), call.args[1])
	assert.Equal(t, "Message", call.args[3])
	assert.Equal(t, "Hi there", call.args[4])
	assert.Equal(t, []string{
		"default", "",
		"inline-reply", "Reply",
		"action-0", "Send",
		"action-2", "dismiss",
	}, call.args[5])

	h := call.args[6].(map[string]dbus.Variant)
	assert.Equal(t, byte(1), h["urgency"].Value())
	assert.Equal(t, "message-new-instant", h["sound-name"].Value())
	assert.Equal(t, "Type a reply", h["x-kde-reply-placeholder-text"].Value())
	assert.Equal(t, timeoutNever, call.args[7])
}

func TestShow_ErrorOnlyReturned(t *testing.T) {
	_, n, bus := newTestNotifier(t)
	bus.err = errors.New("no server")

	shown := interactiveNotification()
	var failed bool
	shown.Failed = func(platform.FailedEventArgs) { failed = true }

	assert.ErrorContains(t, n.Show(context.Background(), shown), "no server")
	assert.False(t, failed)

	result, err := n.Update(context.Background(), &platform.NotificationData{SequenceNumber: 2}, shown.Tag, shown.Group)
	require.NoError(t, err)
	assert.Equal(t, platform.UpdateNotificationNotFound, result)
}

func TestUpdate_ReplacesID(t *testing.T) {
	_, n, bus := newTestNotifier(t)
	require.NoError(t, n.Show(context.Background(), interactiveNotification()))

	res, err := n.Update(context.Background(), &platform.NotificationData{
		SequenceNumber: 2,
		Values:         map[string]string{"text2": "Updated"},
	}, "t", "g")
	require.NoError(t, err)
	assert.Equal(t, platform.UpdateSucceeded, res)

	call := bus.last()
	assert.Equal(t, uint32(1), call.args[1], "replaces the shown id")
	assert.Equal(t, "Updated", call.args[4])

	res, err = n.Update(context.Background(), &platform.NotificationData{SequenceNumber: 3}, "t", "other")
	require.NoError(t, err)
	assert.Equal(t, platform.UpdateNotificationNotFound, res)
}

func TestSignals(t *testing.T) {
	tests := []struct {
		name       string
		signal     *dbus.Signal
		wantArgs   string
		wantInputs map[string]any
		wantReason int32
	}{
		{
			name:       "body click",
			signal:     &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(1), "default"}},
			wantArgs:   "open-chat",
			wantInputs: map[string]any{},
			wantReason: -1,
		},
		{
			name:       "button",
			signal:     &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(1), "action-0"}},
			wantArgs:   "send",
			wantInputs: map[string]any{},
			wantReason: -1,
		},
		{
			name:       "inline reply",
			signal:     &dbus.Signal{Name: signalReplied, Body: []interface{}{uint32(1), "hello"}},
			wantArgs:   "send",
			wantInputs: map[string]any{"reply": "hello"},
			wantReason: -1,
		},
		{
			name:       "system dismiss",
			signal:     &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(1), "action-2"}},
			wantReason: platform.ReasonUserCanceled,
		},
		{
			name:       "expired",
			signal:     &dbus.Signal{Name: signalClosed, Body: []interface{}{uint32(1), closedExpired}},
			wantReason: platform.ReasonTimedOut,
		},
		{
			name:       "closed by call",
			signal:     &dbus.Signal{Name: signalClosed, Body: []interface{}{uint32(1), closedByCall}},
			wantReason: platform.ReasonApplicationHidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, n, _ := newTestNotifier(t)

			var (
				activated platform.ActivatedEventArgs
				reason    int32 = -1
			)
			shown := interactiveNotification()
			shown.Activated = func(e platform.ActivatedEventArgs) { activated = e }
			shown.Dismissed = func(e platform.DismissedEventArgs) { reason = e.Reason() }
			require.NoError(t, n.Show(context.Background(), shown))

			p.handleSignal(tt.signal)

			assert.Equal(t, tt.wantReason, reason)
			if tt.wantArgs != "" {
				require.NotNil(t, activated)
				assert.Equal(t, tt.wantArgs, activated.Arguments())
				inputs, err := activated.UserInput()
				require.NoError(t, err)
				assert.Equal(t, tt.wantInputs, inputs)
			} else {
				assert.Nil(t, activated)
			}

			_, ok := n.shown.Get("t", "g")
			assert.False(t, ok, "signals end the notification")
		})
	}
}

func TestSignals_UnknownID(t *testing.T) {
	p, n, _ := newTestNotifier(t)
	require.NoError(t, n.Show(context.Background(), interactiveNotification()))

	p.handleSignal(&dbus.Signal{Name: signalClosed, Body: []interface{}{uint32(99), closedDismissed}})
	p.handleSignal(&dbus.Signal{Name: signalClosed, Body: []interface{}{"bad"}})

	_, ok := n.shown.Get("t", "g")
	assert.True(t, ok)
}

func TestHistory_ClosesNotifications(t *testing.T) {
	p, n, bus := newTestNotifier(t)
	require.NoError(t, n.Show(context.Background(), interactiveNotification()))

	require.NoError(t, p.History().RemoveGroup(context.Background(), "g", "app"))

	call := bus.last()
	assert.Equal(t, notifyInterface+".CloseNotification", call.method)
	assert.Equal(t, []interface{}{uint32(1)}, call.args)
}

func TestTimeoutAndHints(t *testing.T) {
	assert.Equal(t, timeoutLong, timeout(document.Rendered{Duration: "long"}))
	assert.Equal(t, timeoutShort, timeout(document.Rendered{Duration: "short"}))
	assert.Equal(t, timeoutDefault, timeout(document.Rendered{}))
	assert.Equal(t, timeoutNever, timeout(document.Rendered{Scenario: "incomingCall"}))

	h := hints(document.Rendered{
		Scenario: "urgent",
		Audio:    document.RenderedAudio{Silent: true},
		Progress: &document.RenderedProgress{Value: "0.42"},
		Images:   []document.RenderedImage{{Src: "file:///tmp/hero.png", Placement: "hero"}},
	}, false)
	assert.Equal(t, byte(2), h["urgency"].Value())
	assert.Equal(t, true, h["suppress-sound"].Value())
	assert.Equal(t, int32(42), h["value"].Value())
	assert.Equal(t, "/tmp/hero.png", h["image-path"].Value())

	assert.Equal(t, byte(0), hints(document.Rendered{}, true)["urgency"].Value())
	assert.Equal(t, "alarm-clock-elapsed", soundName("ms-winsoundevent:Notification.Looping.Alarm3"))
	assert.Equal(t, "dialog-information", soundName("ms-winsoundevent:Notification.Default"))
}
