package document

import (
	"regexp"
	"strconv"

	"github.com/beevik/etree"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Rendered is a flat, binding-resolved view of a document for platforms
// that cannot consume toast XML directly.
type Rendered struct {
	Texts       []string
	Attribution string
	Images      []RenderedImage
	Inputs      []RenderedInput
	Actions     []RenderedAction
	Progress    *RenderedProgress
	Audio       RenderedAudio
	Duration    string
	Scenario    string
	Launch      string
}

type RenderedImage struct {
	Src       string
	Alt       string
	Placement string
}

type RenderedInput struct {
	ID          string
	Type        string
	Title       string
	Placeholder string
}

type RenderedAction struct {
	Content        string
	Arguments      string
	ActivationType string
	InputID        string
	ContextMenu    bool
}

type RenderedProgress struct {
	Status   string
	Value    string
	Override string
	Title    string
}

type RenderedAudio struct {
	Src    string
	Loop   bool
	Silent bool
}

// Title is the first non-empty text, the headline of the toast.
func (r Rendered) Title() string {
	for _, t := range r.Texts {
		if t != "" {
			return t
		}
	}
	return ""
}

// Body joins the texts after the title with newlines.
func (r Rendered) Body() string {
	body := ""
	seenTitle := false
	for _, t := range r.Texts {
		if t == "" {
			continue
		}
		if !seenTitle {
			seenTitle = true
			continue
		}
		if body != "" {
			body += "\n"
		}
		body += t
	}
	return body
}

// Render resolves {key} placeholders against values and flattens the
// document. Unknown keys resolve to the empty string, as on the platform.
func (d *Document) Render(values map[string]string) Rendered {
	return RenderTree(d.tree, values)
}

// RenderTree is Render for a tree that was not built by this package, e.g.
// one parsed back from a stored scheduled notification.
func RenderTree(tree *etree.Document, values map[string]string) Rendered {
	resolve := func(s string) string {
		return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
			return values[m[1:len(m)-1]]
		})
	}

	var r Rendered
	root := tree.Root()
	if root == nil {
		return r
	}

	r.Duration = root.SelectAttrValue("duration", "")
	r.Scenario = root.SelectAttrValue("scenario", "")
	r.Launch = root.SelectAttrValue("launch", "")

	if binding := root.FindElement("./visual/binding"); binding != nil {
		for _, el := range binding.ChildElements() {
			switch el.Tag {
			case "text":
				if el.SelectAttrValue("placement", "") == "attribution" {
					r.Attribution = resolve(el.Text())
					continue
				}
				r.Texts = append(r.Texts, resolve(el.Text()))
			case "image":
				r.Images = append(r.Images, RenderedImage{
					Src:       el.SelectAttrValue("src", ""),
					Alt:       el.SelectAttrValue("alt", ""),
					Placement: el.SelectAttrValue("placement", ""),
				})
			case "progress":
				r.Progress = &RenderedProgress{
					Status:   resolve(el.SelectAttrValue("status", "")),
					Value:    resolve(el.SelectAttrValue("value", "")),
					Override: resolve(el.SelectAttrValue("valueStringOverride", "")),
					Title:    resolve(el.SelectAttrValue("title", "")),
				}
			}
		}
	}

	if audio := root.SelectElement("audio"); audio != nil {
		r.Audio.Src = audio.SelectAttrValue("src", "")
		r.Audio.Loop, _ = strconv.ParseBool(audio.SelectAttrValue("loop", "false"))
		r.Audio.Silent, _ = strconv.ParseBool(audio.SelectAttrValue("silent", "false"))
	}

	if actions := root.SelectElement("actions"); actions != nil {
		for _, el := range actions.SelectElements("input") {
			r.Inputs = append(r.Inputs, RenderedInput{
				ID:          el.SelectAttrValue("id", ""),
				Type:        el.SelectAttrValue("type", ""),
				Title:       el.SelectAttrValue("title", ""),
				Placeholder: el.SelectAttrValue("placeHolderContent", ""),
			})
		}
		for _, el := range actions.SelectElements("action") {
			r.Actions = append(r.Actions, RenderedAction{
				Content:        el.SelectAttrValue("content", ""),
				Arguments:      el.SelectAttrValue("arguments", ""),
				ActivationType: el.SelectAttrValue("activationType", ""),
				InputID:        el.SelectAttrValue("hint-inputId", ""),
				ContextMenu:    el.SelectAttrValue("placement", "") == "contextMenu",
			})
		}
	}

	return r
}
