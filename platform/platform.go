// Package platform is the contract between toasters and the operating
// system's notification service. Backends implement it; toasters only ever
// talk to these interfaces.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/ezchuang/gotoast/document"
)

// ErrUnsupported is returned by backends for operations the OS lacks.
var ErrUnsupported = errors.New("operation not supported by this platform")

// Platform creates notifiers and exposes the notification history.
type Platform interface {
	// CreateNotifier returns a notifier bound to an application identity.
	CreateNotifier(appID string) (Notifier, error)
	History() History
}

// Notifier shows, updates and schedules toasts for one application identity.
type Notifier interface {
	Show(ctx context.Context, n *Notification) error
	// Update applies adaptable data to the toast identified by tag and group.
	Update(ctx context.Context, data *NotificationData, tag, group string) (UpdateResult, error)
	AddToSchedule(ctx context.Context, n *ScheduledNotification) error
	ScheduledNotifications(ctx context.Context) ([]*ScheduledNotification, error)
	RemoveFromSchedule(ctx context.Context, n *ScheduledNotification) error
}

// History manages toasts already delivered to the action center.
type History interface {
	Clear(ctx context.Context, appID string) error
	RemoveGroupedTag(ctx context.Context, tag, group, appID string) error
	RemoveGroup(ctx context.Context, group, appID string) error
}

// NotificationData is the adaptable payload that replaces {key} bindings.
// The platform drops data whose SequenceNumber is not newer than the last.
type NotificationData struct {
	SequenceNumber uint32
	Values         map[string]string
}

// UpdateResult is the platform's answer to an adaptable data update.
type UpdateResult int

const (
	UpdateSucceeded UpdateResult = iota
	UpdateFailed
	UpdateNotificationNotFound
)

func (r UpdateResult) String() string {
	switch r {
	case UpdateSucceeded:
		return "Succeeded"
	case UpdateFailed:
		return "Failed"
	case UpdateNotificationNotFound:
		return "NotificationNotFound"
	default:
		return "Unknown"
	}
}

// Notification is a toast ready to be shown now. The callbacks are set by
// the toaster and invoked by the backend from any goroutine.
type Notification struct {
	Document       *document.Document
	Tag            string
	Group          string
	ExpirationTime time.Time
	SuppressPopup  bool
	Data           *NotificationData

	Activated func(ActivatedEventArgs)
	Dismissed func(DismissedEventArgs)
	Failed    func(FailedEventArgs)
}

// ScheduledNotification is a toast the OS shows at DeliveryTime. It cannot
// receive adaptable data or raise callbacks.
type ScheduledNotification struct {
	Document       *document.Document
	Tag            string
	Group          string
	ExpirationTime time.Time
	SuppressPopup  bool
	DeliveryTime   time.Time
}

// ActivatedEventArgs is the raw activation event of a backend.
type ActivatedEventArgs interface {
	Arguments() string
	// UserInput returns the input values keyed by input id. Values are
	// usually strings but backends are free to box them.
	UserInput() (map[string]any, error)
}

// DismissedEventArgs is the raw dismissal event of a backend, using the
// WinRT ToastDismissalReason numbering.
type DismissedEventArgs interface {
	Reason() int32
}

// FailedEventArgs is the raw failure event of a backend.
type FailedEventArgs interface {
	ErrorCode() int32
}

// Dismissal reasons as numbered by WinRT.
const (
	ReasonUserCanceled      int32 = 0
	ReasonApplicationHidden int32 = 1
	ReasonTimedOut          int32 = 2
)
