package beeep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/platform"
	"github.com/ezchuang/gotoast/toast"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Notify(title, body, icon string) error {
	return m.Called(title, body, icon).Error(0)
}

func (m *mockSender) Alert(title, body, icon string) error {
	return m.Called(title, body, icon).Error(0)
}

func newTestPlatform(s *mockSender) *Platform {
	return New(WithSender(func(string) Sender { return s }))
}

func notification(scenario toast.Scenario, texts ...string) *platform.Notification {
	tst := toast.New(toast.WithText(texts...), toast.WithScenario(scenario))
	d := document.New(tst)
	values := map[string]string{}
	for i, text := range texts {
		d.SetTextField(i)
		values[document.TextKey(i)] = text
	}
	if scenario != toast.ScenarioDefault {
		d.SetScenario(scenario)
	}
	return &platform.Notification{
		Document: d,
		Tag:      tst.Tag,
		Group:    tst.Tag,
		Data:     &platform.NotificationData{SequenceNumber: 1, Values: values},
	}
}

func TestShow_NotifyAndAlert(t *testing.T) {
	s := new(mockSender)
	s.On("Notify", "Title", "Body", "").Return(nil).Once()
	s.On("Alert", "Wake up", "", "").Return(nil).Once()

	n, err := newTestPlatform(s).CreateNotifier("app")
	require.NoError(t, err)

	require.NoError(t, n.Show(context.Background(), notification(toast.ScenarioDefault, "Title", "Body")))
	require.NoError(t, n.Show(context.Background(), notification(toast.ScenarioAlarm, "Wake up")))
	s.AssertExpectations(t)
}

func TestShow_FailureOnlyReturned(t *testing.T) {
	s := new(mockSender)
	s.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("no daemon"))

	n, _ := newTestPlatform(s).CreateNotifier("app")
	shown := notification(toast.ScenarioDefault, "Title")
	var failed bool
	shown.Failed = func(platform.FailedEventArgs) { failed = true }

	err := n.Show(context.Background(), shown)
	assert.ErrorContains(t, err, "no daemon")
	assert.False(t, failed)
}

func TestUpdate_Resends(t *testing.T) {
	s := new(mockSender)
	s.On("Notify", "Title", "", "").Return(nil).Once()
	s.On("Notify", "Changed", "", "").Return(nil).Once()

	n, _ := newTestPlatform(s).CreateNotifier("app")
	shown := notification(toast.ScenarioDefault, "Title")
	require.NoError(t, n.Show(context.Background(), shown))

	res, err := n.Update(context.Background(), &platform.NotificationData{
		SequenceNumber: 2,
		Values:         map[string]string{"text1": "Changed"},
	}, shown.Tag, shown.Group)
	require.NoError(t, err)
	assert.Equal(t, platform.UpdateSucceeded, res)

	res, err = n.Update(context.Background(), &platform.NotificationData{SequenceNumber: 3}, "other", "other")
	require.NoError(t, err)
	assert.Equal(t, platform.UpdateNotificationNotFound, res)
	s.AssertExpectations(t)
}

func TestSchedule_Delivers(t *testing.T) {
	delivered := make(chan struct{}, 1)
	s := new(mockSender)
	s.On("Notify", "Later", "", "").Return(nil).Run(func(mock.Arguments) { delivered <- struct{}{} })

	p := newTestPlatform(s)
	n, _ := p.CreateNotifier("app")

	tst := toast.New(toast.WithText("Later"))
	d := document.New(tst)
	d.SetTextFieldStatic(0, "Later")
	require.NoError(t, n.AddToSchedule(context.Background(), &platform.ScheduledNotification{
		Document: d, Tag: tst.Tag, Group: tst.Tag, DeliveryTime: time.Now(),
	}))

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled toast was not delivered")
	}
}

func TestHistory_ForgetsToasts(t *testing.T) {
	s := new(mockSender)
	s.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	p := newTestPlatform(s)
	n, _ := p.CreateNotifier("app")
	shown := notification(toast.ScenarioDefault, "Title")
	require.NoError(t, n.Show(context.Background(), shown))

	require.NoError(t, p.History().Clear(context.Background(), "app"))

	res, err := n.Update(context.Background(), &platform.NotificationData{SequenceNumber: 2}, shown.Tag, shown.Group)
	require.NoError(t, err)
	assert.Equal(t, platform.UpdateNotificationNotFound, res)
}
