package toast

// Input is a field the user can fill in on the toast. It is implemented by
// *TextBox and *SelectionBox.
type Input interface {
	InputID() string
	InputCaption() string
	isInput()
}

// TextBox is a free text input.
type TextBox struct {
	ID          string
	Caption     string
	Placeholder string
}

func (t *TextBox) InputID() string      { return t.ID }
func (t *TextBox) InputCaption() string { return t.Caption }
func (*TextBox) isInput()               {}

// Selection is one entry of a SelectionBox.
type Selection struct {
	ID      string
	Content string
}

// SelectionBox is a drop-down list. Default must be one of Selections; nil
// leaves the box empty.
type SelectionBox struct {
	ID         string
	Caption    string
	Selections []Selection
	Default    *Selection
}

func (s *SelectionBox) InputID() string      { return s.ID }
func (s *SelectionBox) InputCaption() string { return s.Caption }
func (*SelectionBox) isInput()               {}
