package toast

import "time"

// Option configures a Toast in New.
type Option func(*Toast)

func WithText(fields ...string) Option {
	return func(t *Toast) {
		t.TextFields = append([]string(nil), fields...)
	}
}

func WithAudio(a *Audio) Option {
	return func(t *Toast) {
		t.Audio = a
	}
}

func WithDuration(d Duration) Option {
	return func(t *Toast) {
		t.Duration = d
	}
}

func WithScenario(s Scenario) Option {
	return func(t *Toast) {
		t.Scenario = s
	}
}

func WithProgressBar(p *ProgressBar) Option {
	return func(t *Toast) {
		t.ProgressBar = p
	}
}

func WithGroup(group string) Option {
	return func(t *Toast) {
		t.Group = group
	}
}

func WithTimestamp(ts time.Time) Option {
	return func(t *Toast) {
		t.Timestamp = ts
	}
}

func WithExpiration(exp time.Time) Option {
	return func(t *Toast) {
		t.ExpirationTime = exp
	}
}

func WithSuppressPopup(suppress bool) Option {
	return func(t *Toast) {
		t.SuppressPopup = suppress
	}
}

func WithAttribution(text string) Option {
	return func(t *Toast) {
		t.AttributionText = text
	}
}

// WithLaunchAction goes through SetLaunchAction so bad protocols are warned about.
func WithLaunchAction(launch string) Option {
	return func(t *Toast) {
		t.SetLaunchAction(launch)
	}
}

// WithActions adds buttons through AddAction, so the five item limit applies.
func WithActions(actions ...Action) Option {
	return func(t *Toast) {
		for _, a := range actions {
			t.AddAction(a)
		}
	}
}

// WithInputs adds inputs through AddInput, so the five item limit applies.
func WithInputs(inputs ...Input) Option {
	return func(t *Toast) {
		for _, in := range inputs {
			t.AddInput(in)
		}
	}
}

func WithImages(images ...DisplayImage) Option {
	return func(t *Toast) {
		for _, img := range images {
			t.AddImage(img)
		}
	}
}

func WithOnActivated(fn func(Activated)) Option {
	return func(t *Toast) {
		t.OnActivated = fn
	}
}

func WithOnDismissed(fn func(Dismissed)) Option {
	return func(t *Toast) {
		t.OnDismissed = fn
	}
}

func WithOnFailed(fn func(Failed)) Option {
	return func(t *Toast) {
		t.OnFailed = fn
	}
}
