package toaster

import (
	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/toast"
)

// DefaultAUMID is the identity of the Command Prompt, used when no AUMID of
// our own is registered.
const DefaultAUMID = `{1AC14E77-02E7-4E5D-B744-2EB1AE5198B7}\cmd.exe`

// Interactable supports buttons, inputs, progress bars and hero images.
type Interactable struct {
	base
	defaultAUMID bool
}

var _ Toaster = (*Interactable)(nil)

// NewInteractable creates a full featured toaster. Without WithAUMID it
// borrows DefaultAUMID and shows appText as attribution, since the OS would
// otherwise display the borrowed application's name.
func NewInteractable(appText string, opts ...Option) (*Interactable, error) {
	o := newOptions(opts)
	aumid, isDefault := o.aumid, false
	if aumid == "" {
		aumid, isDefault = DefaultAUMID, true
	}

	b, err := newBase(appText, aumid, o)
	if err != nil {
		return nil, err
	}
	t := &Interactable{base: b, defaultAUMID: isDefault}
	t.build = t.BuildDocument
	return t, nil
}

// BuildDocument builds the generic template. Unset text slots stay empty.
func (it *Interactable) BuildDocument(t *toast.Toast, dynamic bool) *document.Document {
	d := it.setup(t)
	for i, text := range t.TextFields {
		if text == "" {
			continue
		}
		if dynamic {
			d.SetTextField(i)
		} else {
			d.SetTextFieldStatic(i, text)
		}
	}

	d.SetTemplate(document.TemplateGeneric)
	d.SetAttribute(d.ToastElement(), "useButtonStyle", "true")

	if it.defaultAUMID && t.AttributionText == "" {
		d.SetAttributionText(it.appText)
	}

	setupInteractive(d, t, dynamic)
	return d
}
