package platform

// Activation is a ready-made ActivatedEventArgs for backends.
type Activation struct {
	Args     string
	Input    map[string]any
	InputErr error
}

func (a Activation) Arguments() string { return a.Args }

func (a Activation) UserInput() (map[string]any, error) {
	return a.Input, a.InputErr
}

// Dismissal is a ready-made DismissedEventArgs holding the reason.
type Dismissal int32

func (d Dismissal) Reason() int32 { return int32(d) }

// Failure is a ready-made FailedEventArgs holding the error code.
type Failure int32

func (f Failure) ErrorCode() int32 { return int32(f) }
