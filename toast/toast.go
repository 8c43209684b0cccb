// Package toast holds the content model of a toast notification: the text,
// images, inputs, buttons and audio of a single notification, independent of
// how or whether it is displayed.
package toast

import (
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/copystructure"
)

// MaxActionsAndInputs is the platform limit on buttons and inputs combined.
const MaxActionsAndInputs = 5

func init() {
	// Image keeps its URI unexported; it is immutable so the copy can share it.
	copystructure.Copiers[reflect.TypeOf(Image{})] = func(v interface{}) (interface{}, error) {
		return v, nil
	}
}

// Toast is the description of one notification. Two toasts are the same
// notification iff their tags are equal.
type Toast struct {
	// TextFields are positional; an empty string leaves the slot unset.
	TextFields []string
	Images     []DisplayImage
	Inputs     []Input
	Actions    []Action

	Audio           *Audio
	ProgressBar     *ProgressBar
	Scenario        Scenario
	Duration        Duration
	Group           string
	Timestamp       time.Time
	ExpirationTime  time.Time
	SuppressPopup   bool
	AttributionText string
	LaunchAction    string

	// Tag is generated by New and regenerated by Clone.
	Tag string
	// Updates counts the adaptable payloads pushed for this toast.
	Updates uint32

	// Callbacks are invoked by the platform on its own goroutines.
	OnActivated func(Activated)
	OnDismissed func(Dismissed)
	OnFailed    func(Failed)
}

// New creates a toast with a fresh tag.
func New(opts ...Option) *Toast {
	t := &Toast{Tag: uuid.NewString()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Equal reports whether both toasts are the same notification.
func (t *Toast) Equal(other *Toast) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Tag == other.Tag
}

// AddAction appends a button. Once buttons and inputs reach
// MaxActionsAndInputs the action is dropped with a warning.
func (t *Toast) AddAction(a Action) {
	if isNil(a) {
		warn("nil action ignored", "tag", t.Tag)
		return
	}
	if len(t.Actions)+len(t.Inputs) >= MaxActionsAndInputs {
		warn("action dropped, the toast already has the maximum of five actions and inputs",
			"action", a.Label(), "tag", t.Tag)
		return
	}
	t.Actions = append(t.Actions, a)
}

// AddInput appends an input field, sharing the limit with AddAction.
func (t *Toast) AddInput(in Input) {
	if isNil(in) {
		warn("nil input ignored", "tag", t.Tag)
		return
	}
	if len(t.Actions)+len(t.Inputs) >= MaxActionsAndInputs {
		warn("input dropped, the toast already has the maximum of five actions and inputs",
			"input", in.InputID(), "tag", t.Tag)
		return
	}
	t.Inputs = append(t.Inputs, in)
}

// AddImage appends an image. Images are never dropped; toasters warn about
// the ones they cannot show.
func (t *Toast) AddImage(img DisplayImage) {
	t.Images = append(t.Images, img)
}

// SetText sets the text slot at index, growing TextFields as needed.
func (t *Toast) SetText(index int, value string) {
	for len(t.TextFields) <= index {
		t.TextFields = append(t.TextFields, "")
	}
	t.TextFields[index] = value
}

// SetLaunchAction sets the protocol opened when the toast body is clicked.
func (t *Toast) SetLaunchAction(launch string) {
	if launch != "" {
		if u, err := url.Parse(launch); err != nil || u.Scheme == "" {
			warn("launch action does not look like a protocol URI", "launch", launch)
		}
	}
	t.LaunchAction = launch
}

// isNil also catches typed nil pointers such as (*Button)(nil).
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Clone returns a deep copy of the toast under a new tag, so the copy is a
// separate notification rather than an update of the original.
func (t *Toast) Clone() *Toast {
	dup := copystructure.Must(copystructure.Copy(t)).(*Toast)
	dup.Tag = uuid.NewString()
	return dup
}
