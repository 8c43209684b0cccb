package toast

// Activated is delivered when the user clicks the toast or one of its buttons.
type Activated struct {
	Arguments string
	// Inputs maps input ids to what the user entered. It is nil when the
	// platform could not provide the values.
	Inputs map[string]string
}

// DismissalReason says why a toast left the screen.
type DismissalReason int

const (
	DismissedByUser DismissalReason = iota
	DismissedByApplication
	DismissedTimedOut
)

func (r DismissalReason) String() string {
	switch r {
	case DismissedByUser:
		return "user_canceled"
	case DismissedByApplication:
		return "application_hidden"
	case DismissedTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Dismissed is delivered when the toast is closed without activation.
type Dismissed struct {
	Reason DismissalReason
}

// Failed is delivered when the OS could not display the toast.
type Failed struct {
	ErrorCode int32
}
