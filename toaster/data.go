package toaster

import (
	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/platform"
	"github.com/ezchuang/gotoast/toast"
)

// buildAdaptableData bumps t.Updates and returns the current text and
// progress values keyed for the {key} bindings of a dynamic document.
func buildAdaptableData(t *toast.Toast) *platform.NotificationData {
	t.Updates++
	data := &platform.NotificationData{
		SequenceNumber: t.Updates,
		Values:         make(map[string]string),
	}

	for i, text := range t.TextFields {
		if text != "" {
			data.Values[document.TextKey(i)] = text
		}
	}

	if bar := t.ProgressBar; bar != nil {
		data.Values[document.KeyStatus] = bar.Status
		data.Values[document.KeyProgress] = document.ProgressValue(bar)
		data.Values[document.KeyProgressOverride] = document.ProgressOverride(bar)
		data.Values[document.KeyCaption] = bar.Caption
	}

	return data
}
