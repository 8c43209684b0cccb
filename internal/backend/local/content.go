package local

import (
	"net/url"
	"strings"

	"github.com/ezchuang/gotoast/document"
	"github.com/ezchuang/gotoast/toast"
)

// Summary flattens a rendered toast into the title and body understood by
// plain notification services.
func Summary(r document.Rendered) (title, body string) {
	lines := []string{}
	if b := r.Body(); b != "" {
		lines = append(lines, b)
	}
	if p := r.Progress; p != nil {
		line := p.Status
		if p.Title != "" {
			line = p.Title + ": " + line
		}
		switch {
		case p.Override != "":
			line += " " + p.Override
		case p.Value == document.Indeterminate:
			line += " ..."
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	if r.Attribution != "" {
		lines = append(lines, r.Attribution)
	}
	return r.Title(), strings.Join(lines, "\n")
}

// Icon picks the image to use as notification icon: the app logo when
// there is one, else the first image.
func Icon(r document.Rendered) string {
	for _, img := range r.Images {
		if img.Placement == string(toast.PlacementAppLogo) {
			return FilePath(img.Src)
		}
	}
	if len(r.Images) > 0 {
		return FilePath(r.Images[0].Src)
	}
	return ""
}

// Urgent reports whether the scenario asks for attention.
func Urgent(r document.Rendered) bool {
	switch toast.Scenario(r.Scenario) {
	case toast.ScenarioAlarm, toast.ScenarioIncomingCall, toast.ScenarioImportant:
		return true
	}
	return false
}

// FilePath converts a file URI back to a local path. Other URIs are
// returned as is.
func FilePath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	p := u.Path
	// file:///C:/dir on Windows
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return p
}
