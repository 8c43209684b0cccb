package toaster

import (
	"context"
	"time"

	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/toast"
)

// MaxBasicImages is how many images the legacy template can show.
const MaxBasicImages = 2

// Basic shows toasts under the display name, without a registered identity.
type Basic struct {
	base
}

var _ Toaster = (*Basic)(nil)

// NewBasic creates a toaster that uses appText as its application identity.
func NewBasic(appText string, opts ...Option) (*Basic, error) {
	b, err := newBase(appText, appText, newOptions(opts))
	if err != nil {
		return nil, err
	}
	t := &Basic{base: b}
	t.build = t.BuildDocument
	return t, nil
}

// BuildDocument builds the legacy template. Unset text slots are written
// empty. Interactive content is still built; the OS decides what renders.
func (b *Basic) BuildDocument(t *toast.Toast, dynamic bool) *document.Document {
	d := b.setup(t)
	for i, text := range t.TextFields {
		if dynamic {
			d.SetTextField(i)
		} else {
			d.SetTextFieldStatic(i, text)
		}
	}
	d.SetTemplate(document.TemplateImageAndText)
	setupInteractive(d, t, dynamic)
	return d
}

func (b *Basic) Show(ctx context.Context, t *toast.Toast) error {
	b.warnUnsupported(t)
	return b.base.Show(ctx, t)
}

func (b *Basic) Schedule(ctx context.Context, t *toast.Toast, at time.Time) error {
	b.warnUnsupported(t)
	return b.base.Schedule(ctx, t, at)
}

func (b *Basic) warnUnsupported(t *toast.Toast) {
	unsupported := func(feature string) {
		b.logger.Warn(feature+" are not supported by the basic toaster, use an interactable toaster instead",
			"tag", t.Tag)
	}

	if len(t.Inputs) > 0 {
		unsupported("input fields")
	}
	if len(t.Actions) > 0 {
		unsupported("actions")
	}
	if len(t.Images) > MaxBasicImages {
		unsupported("more than two images")
	}
	if t.ProgressBar != nil {
		unsupported("progress bars")
	}
	for _, img := range t.Images {
		if img.Placement == toast.PlacementHero {
			unsupported("hero placements")
			break
		}
	}
}
