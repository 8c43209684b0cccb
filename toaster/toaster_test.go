package toaster

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ezchuang/gotoast/internal/backend/memory"
	"github.com/ezchuang/gotoast/platform"
	"github.com/ezchuang/gotoast/toast"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestNewBase_CreateNotifierError(t *testing.T) {
	p := &MockPlatform{}
	p.On("CreateNotifier", "app").Return(nil, errors.New("no service"))

	_, err := NewBasic("app", WithPlatform(p))
	assert.ErrorContains(t, err, "no service")
}

func TestShow_SendsNotification(t *testing.T) {
	m := newMocks(DefaultAUMID)
	it, err := NewInteractable("app", WithPlatform(m.platform))
	require.NoError(t, err)

	exp := time.Now().Add(time.Hour)
	tst := toast.New(
		toast.WithText("Hello"),
		toast.WithExpiration(exp),
		toast.WithSuppressPopup(true),
		toast.WithOnActivated(func(toast.Activated) {}),
	)

	var sent *platform.Notification
	m.notifier.On("Show", mock.Anything, mock.AnythingOfType("*platform.Notification")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*platform.Notification) }).
		Return(nil)

	require.NoError(t, it.Show(context.Background(), tst))
	m.notifier.AssertExpectations(t)

	require.NotNil(t, sent)
	assert.Equal(t, tst.Tag, sent.Tag)
	assert.Equal(t, tst.Tag, sent.Group, "group falls back to the tag")
	assert.Equal(t, exp, sent.ExpirationTime)
	assert.True(t, sent.SuppressPopup)
	assert.NotNil(t, sent.Activated)
	assert.Nil(t, sent.Dismissed)
	require.NotNil(t, sent.Data)
	assert.EqualValues(t, 1, sent.Data.SequenceNumber)
	assert.Equal(t, "Hello", sent.Data.Values["text1"])

	xml, err := sent.Document.XML()
	require.NoError(t, err)
	assert.Contains(t, xml, "{text1}")
}

func TestShow_WrapsError(t *testing.T) {
	m := newMocks("app")
	b, err := NewBasic("app", WithPlatform(m.platform))
	require.NoError(t, err)

	boom := errors.New("boom")
	m.notifier.On("Show", mock.Anything, mock.Anything).Return(boom)

	tst := toast.New(toast.WithText("x"))
	err = b.Show(context.Background(), tst)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, tst.Tag)
}

func TestUpdate(t *testing.T) {
	m := newMocks("app")
	b, err := NewBasic("app", WithPlatform(m.platform))
	require.NoError(t, err)

	tst := toast.New(toast.WithText("x"), toast.WithGroup("downloads"))
	tst.Updates = 4

	m.notifier.On("Update", mock.Anything, mock.MatchedBy(func(d *platform.NotificationData) bool {
		return d.SequenceNumber == 5
	}), tst.Tag, "downloads").Return(platform.UpdateSucceeded, nil).Once()
	m.notifier.On("Update", mock.Anything, mock.Anything, tst.Tag, "downloads").
		Return(platform.UpdateNotificationNotFound, nil).Once()

	ok, err := b.Update(context.Background(), tst)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Update(context.Background(), tst)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 6, tst.Updates)
	m.notifier.AssertExpectations(t)
}

func TestSchedule_StaticDocument(t *testing.T) {
	m := newMocks("app")
	b, err := NewBasic("app", WithPlatform(m.platform))
	require.NoError(t, err)

	at := time.Now().Add(time.Minute)
	tst := toast.New(toast.WithText("Later"))

	var sent *platform.ScheduledNotification
	m.notifier.On("AddToSchedule", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*platform.ScheduledNotification) }).
		Return(nil)

	require.NoError(t, b.Schedule(context.Background(), tst, at))
	require.NotNil(t, sent)
	assert.Equal(t, at, sent.DeliveryTime)
	assert.Equal(t, tst.Tag, sent.Tag)

	xml, err := sent.Document.XML()
	require.NoError(t, err)
	assert.Contains(t, xml, ">Later</text>")
	assert.NotContains(t, xml, "{text1}")
	assert.Zero(t, tst.Updates, "scheduling does not build adaptable data")
}

func TestUnschedule(t *testing.T) {
	m := newMocks("app")
	b, err := NewBasic("app", WithPlatform(m.platform))
	require.NoError(t, err)

	tst := toast.New()
	other := &platform.ScheduledNotification{Tag: "other"}
	mine := &platform.ScheduledNotification{Tag: tst.Tag}
	m.notifier.On("ScheduledNotifications", mock.Anything).
		Return([]*platform.ScheduledNotification{other, mine}, nil).Once()
	m.notifier.On("RemoveFromSchedule", mock.Anything, mine).Return(nil).Once()

	require.NoError(t, b.Unschedule(context.Background(), tst))

	m.notifier.On("ScheduledNotifications", mock.Anything).
		Return([]*platform.ScheduledNotification{other}, nil).Once()
	err = b.Unschedule(context.Background(), tst)
	assert.ErrorIs(t, err, ErrToastNotFound)
	assert.ErrorIs(t, err, toast.ErrToastNotFound)

	m.notifier.AssertExpectations(t)
	m.notifier.AssertNotCalled(t, "RemoveFromSchedule", mock.Anything, other)
}

func TestClearScheduled(t *testing.T) {
	m := newMocks("app")
	b, err := NewBasic("app", WithPlatform(m.platform))
	require.NoError(t, err)

	a := &platform.ScheduledNotification{Tag: "a"}
	c := &platform.ScheduledNotification{Tag: "c"}
	m.notifier.On("ScheduledNotifications", mock.Anything).
		Return([]*platform.ScheduledNotification{a, c}, nil)
	m.notifier.On("RemoveFromSchedule", mock.Anything, a).Return(nil)
	m.notifier.On("RemoveFromSchedule", mock.Anything, c).Return(errors.New("gone"))

	err = b.ClearScheduled(context.Background())
	assert.ErrorContains(t, err, "gone")
	m.notifier.AssertNumberOfCalls(t, "RemoveFromSchedule", 2)
}

func TestHistoryOperations(t *testing.T) {
	m := newMocks(DefaultAUMID)
	it, err := NewInteractable("app", WithPlatform(m.platform))
	require.NoError(t, err)
	ctx := context.Background()

	tst := toast.New(toast.WithGroup("g"))
	m.history.On("Clear", ctx, DefaultAUMID).Return(nil)
	m.history.On("RemoveGroupedTag", ctx, tst.Tag, "g", DefaultAUMID).Return(nil)
	m.history.On("RemoveGroup", ctx, "g", DefaultAUMID).Return(errors.New("denied"))

	require.NoError(t, it.Clear(ctx))
	require.NoError(t, it.Remove(ctx, tst))
	assert.ErrorContains(t, it.RemoveGroup(ctx, "g"), "denied")
	m.history.AssertExpectations(t)
}

func TestWithMemoryPlatform(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	it, err := NewInteractable("app", WithPlatform(p), WithAUMID("Example.App"))
	require.NoError(t, err)
	assert.Equal(t, "Example.App", it.AppID())

	var got toast.Activated
	tst := toast.New(
		toast.WithText("Download", "report.pdf"),
		toast.WithProgressBar(&toast.ProgressBar{Status: "Downloading", Progress: toast.Percent(0.1)}),
		toast.WithOnActivated(func(a toast.Activated) { got = a }),
	)
	require.NoError(t, it.Show(ctx, tst))

	n := p.Notifier("Example.App")
	r, ok := n.Rendered(tst.Tag, tst.Tag)
	require.True(t, ok)
	assert.Equal(t, "10%", r.Progress.Override)

	tst.ProgressBar.Progress = toast.Percent(0.75)
	tst.SetText(1, "report.pdf (almost)")
	updated, err := it.Update(ctx, tst)
	require.NoError(t, err)
	assert.True(t, updated)

	r, _ = n.Rendered(tst.Tag, tst.Tag)
	assert.Equal(t, "75%", r.Progress.Override)
	assert.Equal(t, "report.pdf (almost)", r.Body())

	require.NoError(t, n.Activate(tst.Tag, tst.Tag, tst.Tag, map[string]any{"n": 3}))
	assert.Equal(t, tst.Tag, got.Arguments)
	assert.Equal(t, map[string]string{"n": "3"}, got.Inputs)

	updated, err = it.Update(ctx, tst)
	require.NoError(t, err)
	assert.False(t, updated, "activated toasts are gone")
}

func TestWithMemoryPlatform_Unschedule(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	b, err := NewBasic("app", WithPlatform(p))
	require.NoError(t, err)
	defer p.Notifier("app").Close()

	tst := toast.New(toast.WithText("Later"))
	require.NoError(t, b.Schedule(ctx, tst, time.Now().Add(time.Hour)))
	require.NoError(t, b.Unschedule(ctx, tst))
	assert.ErrorIs(t, b.Unschedule(ctx, tst), ErrToastNotFound)

	require.NoError(t, b.Schedule(ctx, tst, time.Now().Add(time.Hour)))
	require.NoError(t, b.Schedule(ctx, tst.Clone(), time.Now().Add(2*time.Hour)))
	require.NoError(t, b.ClearScheduled(ctx))
	list, err := p.Notifier("app").ScheduledNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
