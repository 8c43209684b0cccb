package toaster

import (
	"fmt"

	"github.com/ezchuang/gotoast/platform"
	"github.com/ezchuang/gotoast/toast"
)

// attachCallbacks registers adapters for the callbacks set on t. The
// callbacks are captured now; the adapters run on platform goroutines and
// never touch t.
func attachCallbacks(n *platform.Notification, t *toast.Toast) {
	if fn := t.OnActivated; fn != nil {
		n.Activated = func(raw platform.ActivatedEventArgs) {
			fn(activatedFromPlatform(raw))
		}
	}
	if fn := t.OnDismissed; fn != nil {
		n.Dismissed = func(raw platform.DismissedEventArgs) {
			fn(toast.Dismissed{Reason: dismissalReason(raw.Reason())})
		}
	}
	if fn := t.OnFailed; fn != nil {
		n.Failed = func(raw platform.FailedEventArgs) {
			fn(toast.Failed{ErrorCode: raw.ErrorCode()})
		}
	}
}

// activatedFromPlatform copies the raw event into plain data. Inputs stay
// nil when the platform cannot read them.
func activatedFromPlatform(raw platform.ActivatedEventArgs) toast.Activated {
	ev := toast.Activated{Arguments: raw.Arguments()}

	input, err := raw.UserInput()
	if err != nil || input == nil {
		return ev
	}
	ev.Inputs = make(map[string]string, len(input))
	for k, v := range input {
		if s, ok := v.(string); ok {
			ev.Inputs[k] = s
			continue
		}
		ev.Inputs[k] = fmt.Sprint(v)
	}
	return ev
}

func dismissalReason(reason int32) toast.DismissalReason {
	switch reason {
	case platform.ReasonApplicationHidden:
		return toast.DismissedByApplication
	case platform.ReasonTimedOut:
		return toast.DismissedTimedOut
	default:
		return toast.DismissedByUser
	}
}
