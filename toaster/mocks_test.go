package toaster

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ezchuang/gotoast/platform"
)

// MockPlatform is a mock implementation of platform.Platform
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) CreateNotifier(appID string) (platform.Notifier, error) {
	args := m.Called(appID)
	n, _ := args.Get(0).(platform.Notifier)
	return n, args.Error(1)
}

func (m *MockPlatform) History() platform.History {
	return m.Called().Get(0).(platform.History)
}

// MockNotifier is a mock implementation of platform.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Show(ctx context.Context, n *platform.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotifier) Update(ctx context.Context, data *platform.NotificationData, tag, group string) (platform.UpdateResult, error) {
	args := m.Called(ctx, data, tag, group)
	return args.Get(0).(platform.UpdateResult), args.Error(1)
}

func (m *MockNotifier) AddToSchedule(ctx context.Context, n *platform.ScheduledNotification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotifier) ScheduledNotifications(ctx context.Context) ([]*platform.ScheduledNotification, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*platform.ScheduledNotification)
	return list, args.Error(1)
}

func (m *MockNotifier) RemoveFromSchedule(ctx context.Context, n *platform.ScheduledNotification) error {
	return m.Called(ctx, n).Error(0)
}

// MockHistory is a mock implementation of platform.History
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Clear(ctx context.Context, appID string) error {
	return m.Called(ctx, appID).Error(0)
}

func (m *MockHistory) RemoveGroupedTag(ctx context.Context, tag, group, appID string) error {
	return m.Called(ctx, tag, group, appID).Error(0)
}

func (m *MockHistory) RemoveGroup(ctx context.Context, group, appID string) error {
	return m.Called(ctx, group, appID).Error(0)
}

type mocks struct {
	platform *MockPlatform
	notifier *MockNotifier
	history  *MockHistory
}

func newMocks(appID string) mocks {
	m := mocks{
		platform: &MockPlatform{},
		notifier: &MockNotifier{},
		history:  &MockHistory{},
	}
	m.platform.On("CreateNotifier", appID).Return(m.notifier, nil)
	m.platform.On("History").Return(m.history).Maybe()
	return m
}
