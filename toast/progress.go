package toast

// ProgressBar is a bar that can be moved with live updates.
type ProgressBar struct {
	// Status is shown under the bar, e.g. "Downloading...".
	Status  string
	Caption string
	// Progress is in [0,1]. Nil renders an indeterminate bar.
	Progress *float64
	// Override replaces the default percentage string.
	Override string
}

// Percent returns a pointer to p for ProgressBar.Progress.
func Percent(p float64) *float64 {
	return &p
}
