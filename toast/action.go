package toast

// Action is a button on the toast. It is implemented by *Button and
// *SystemButton.
type Action interface {
	Label() string
	isAction()
}

// Button is a custom button. Arguments are delivered back through the
// activated callback; Launch, when set, opens a protocol URI instead.
type Button struct {
	Content       string
	Arguments     string
	Image         *Image
	RelatedInput  Input
	InContextMenu bool
	Tooltip       string
	Launch        string
	Colour        ButtonColour
}

func (b *Button) Label() string { return b.Content }
func (*Button) isAction()       {}

// SystemAction is handled by the OS without reaching the application.
type SystemAction string

const (
	SystemSnooze  SystemAction = "snooze"
	SystemDismiss SystemAction = "dismiss"
)

// SystemButton snoozes or dismisses the toast. RelatedInput, when set on a
// snooze button, holds the snooze intervals in minutes as selection ids.
type SystemButton struct {
	Action       SystemAction
	Content      string
	RelatedInput *SelectionBox
	Image        *Image
	Tooltip      string
	Colour       ButtonColour
}

func (b *SystemButton) Label() string {
	if b.Content != "" {
		return b.Content
	}
	return string(b.Action)
}

func (*SystemButton) isAction() {}
