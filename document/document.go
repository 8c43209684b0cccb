// Package document builds the toast XML consumed by the Windows
// notification platform from a toast.Toast.
//
// The builder is order sensitive but cannot fail: every element it needs is
// either created up front by New (text slots, the image placeholder) or
// created lazily on first use (audio, actions, progress).
package document

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/ezchuang/gotoast/toast"
)

const (
	// TemplateGeneric is the adaptive template that supports every feature.
	TemplateGeneric = "ToastGeneric"
	// TemplateImageAndText is the legacy template used by basic toasters.
	TemplateImageAndText = "ToastImageAndText04"

	timestampLayout = "2006-01-02T15:04:05Z"
)

// Adaptable data keys written as {key} placeholders in dynamic mode.
const (
	KeyStatus           = "status"
	KeyProgress         = "progress"
	KeyProgressOverride = "progress_override"
	KeyCaption          = "caption"

	// Indeterminate is the progress value of a bar without a known position.
	Indeterminate = "indeterminate"
)

// TextKey is the adaptable data key of the text slot at the zero-based index.
func TextKey(index int) string {
	return "text" + strconv.Itoa(index+1)
}

// Placeholder is the data binding token for key.
func Placeholder(key string) string {
	return "{" + key + "}"
}

// Document is a toast XML tree under construction.
type Document struct {
	tree    *etree.Document
	toast   *etree.Element
	binding *etree.Element
	texts   []*etree.Element
	actions *etree.Element

	images int
	inputs int
}

// New creates the toast/visual/binding skeleton for t with one text element
// per text slot and, when t has images, a single image placeholder. These
// are created up front because the platform relies on their order and ids.
func New(t *toast.Toast) *Document {
	tree := etree.NewDocument()
	root := tree.CreateElement("toast")
	binding := root.CreateElement("visual").CreateElement("binding")

	d := &Document{
		tree:    tree,
		toast:   root,
		binding: binding,
	}

	for i := range t.TextFields {
		text := binding.CreateElement("text")
		text.CreateAttr("id", strconv.Itoa(i+1))
		d.texts = append(d.texts, text)
	}

	if len(t.Images) > 0 {
		img := binding.CreateElement("image")
		img.CreateAttr("id", "1")
		img.CreateAttr("src", "")
	}

	return d
}

// Tree exposes the underlying XML tree.
func (d *Document) Tree() *etree.Document {
	return d.tree
}

// ToastElement returns the root <toast> element.
func (d *Document) ToastElement() *etree.Element {
	return d.toast
}

// Binding returns the <binding> element holding the visual content.
func (d *Document) Binding() *etree.Element {
	return d.binding
}

// ElementByTag returns the first element with the given tag anywhere in the
// document, or nil.
func (d *Document) ElementByTag(tag string) *etree.Element {
	if d.toast.Tag == tag {
		return d.toast
	}
	return d.toast.FindElement(".//" + tag)
}

// InputCount is the number of inputs added so far.
func (d *Document) InputCount() int {
	return d.inputs
}

// XML serializes the document.
func (d *Document) XML() (string, error) {
	return d.tree.WriteToString()
}

// SetAttribute sets name on node, replacing any previous value.
func (d *Document) SetAttribute(node *etree.Element, name, value string) {
	node.CreateAttr(name, value)
}

// SetNodeText appends a text child to node.
func (d *Document) SetNodeText(node *etree.Element, value string) {
	node.CreateText(value)
}

// SetTextField writes the binding placeholder of slot index, so the text can
// be replaced later through adaptable data.
func (d *Document) SetTextField(index int) {
	d.SetNodeText(d.texts[index], Placeholder(TextKey(index)))
}

// SetTextFieldStatic writes value literally into slot index. Used for
// scheduled toasts, which never receive adaptable data.
func (d *Document) SetTextFieldStatic(index int, value string) {
	d.SetNodeText(d.texts[index], value)
}

// SetTemplate sets the binding template.
func (d *Document) SetTemplate(template string) {
	d.SetAttribute(d.binding, "template", template)
}

// SetLaunch sets what clicking the toast body does. Protocol launches open
// the URI; otherwise launch is handed back as activation arguments.
func (d *Document) SetLaunch(launch string, protocol bool) {
	d.SetAttribute(d.toast, "launch", launch)
	if protocol {
		d.SetAttribute(d.toast, "activationType", "protocol")
	}
}

// SetDuration sets the toast duration. The default duration removes the
// attribute.
func (d *Document) SetDuration(duration toast.Duration) {
	if duration == toast.DurationDefault {
		d.toast.RemoveAttr("duration")
		return
	}
	d.SetAttribute(d.toast, "duration", string(duration))
}

// SetScenario sets the toast scenario.
func (d *Document) SetScenario(scenario toast.Scenario) {
	d.SetAttribute(d.toast, "scenario", string(scenario))
}

// SetCustomTimestamp replaces the time the OS shows for the toast.
func (d *Document) SetCustomTimestamp(ts time.Time) {
	d.SetAttribute(d.toast, "displayTimestamp", ts.UTC().Format(timestampLayout))
}

// SetAttributionText adds a line of text under the other text elements.
func (d *Document) SetAttributionText(text string) {
	node := d.binding.CreateElement("text")
	d.SetAttribute(node, "placement", "attribution")
	d.SetNodeText(node, text)
}

// SetAudioAttributes configures the <audio> element. Silent audio ignores
// the source and looping flags. Looping audio forces a long duration since
// the platform cuts it off otherwise.
func (d *Document) SetAudioAttributes(audio *toast.Audio) {
	node := d.toast.SelectElement("audio")
	if node == nil {
		node = d.toast.CreateElement("audio")
	}

	if audio.Silent {
		d.SetAttribute(node, "silent", formatBool(true))
		return
	}

	d.SetAttribute(node, "src", audio.URI())
	if audio.Looping {
		d.SetAttribute(node, "loop", formatBool(true))
		d.SetDuration(toast.DurationLong)
	}
}

// AddImage fills the image placeholder on the first call. Later calls clone
// the placeholder under a new id; the platform only positions images
// reliably when they derive from the existing element.
func (d *Document) AddImage(img toast.DisplayImage) {
	first := d.binding.SelectElement("image")
	if first == nil {
		first = d.binding.CreateElement("image")
		d.SetAttribute(first, "id", "1")
	}

	node := first
	if d.images > 0 {
		node = first.Copy()
		for _, key := range []string{"alt", "placement", "hint-crop"} {
			node.RemoveAttr(key)
		}
		d.SetAttribute(node, "id", strconv.Itoa(d.images+1))
		d.binding.AddChild(node)
	}
	d.images++

	d.SetAttribute(node, "src", img.Image.URI())
	if img.AltText != "" {
		d.SetAttribute(node, "alt", img.AltText)
	}
	if img.Placement != toast.PlacementInline {
		d.SetAttribute(node, "placement", string(img.Placement))
	}
	if img.CircleCrop && img.Placement == toast.PlacementAppLogo {
		d.SetAttribute(node, "hint-crop", "circle")
	}
}

// AddInput adds an <input> to the actions container. Inputs are kept ahead
// of the actions as the schema requires.
func (d *Document) AddInput(in toast.Input) {
	d.inputs++
	actions, _ := d.actionsElement()

	node := etree.NewElement("input")
	d.SetAttribute(node, "id", in.InputID())
	d.SetAttribute(node, "title", in.InputCaption())

	switch in := in.(type) {
	case *toast.TextBox:
		d.SetAttribute(node, "type", "text")
		d.SetAttribute(node, "placeHolderContent", in.Placeholder)
	case *toast.SelectionBox:
		d.SetAttribute(node, "type", "selection")
		if in.Default != nil {
			d.SetAttribute(node, "defaultInput", in.Default.ID)
		}
		for _, sel := range in.Selections {
			child := node.CreateElement("selection")
			d.SetAttribute(child, "id", sel.ID)
			d.SetAttribute(child, "content", sel.Content)
		}
	}

	actions.InsertChildAt(firstActionIndex(actions), node)
}

// AddAction adds an <action>. The first action switches the binding to the
// generic template.
func (d *Document) AddAction(action toast.Action) {
	actions, created := d.actionsElement()
	if created {
		d.SetTemplate(TemplateGeneric)
	}

	node := actions.CreateElement("action")

	switch a := action.(type) {
	case *toast.Button:
		d.SetAttribute(node, "content", a.Content)
		if a.Launch != "" {
			d.SetAttribute(node, "activationType", "protocol")
			d.SetAttribute(node, "arguments", a.Launch)
		} else {
			d.SetAttribute(node, "activationType", "background")
			d.SetAttribute(node, "arguments", a.Arguments)
		}
		if a.InContextMenu {
			d.SetAttribute(node, "placement", "contextMenu")
		}
		if a.RelatedInput != nil {
			d.SetAttribute(node, "hint-inputId", a.RelatedInput.InputID())
		}
		d.setActionHints(node, a.Image, a.Tooltip, a.Colour)
	case *toast.SystemButton:
		d.SetAttribute(node, "content", a.Content)
		d.SetAttribute(node, "activationType", "system")
		d.SetAttribute(node, "arguments", string(systemArguments(a.Action)))
		if a.RelatedInput != nil {
			d.SetAttribute(node, "hint-inputId", a.RelatedInput.ID)
		}
		d.setActionHints(node, a.Image, a.Tooltip, a.Colour)
	}
}

func (d *Document) setActionHints(node *etree.Element, img *toast.Image, tooltip string, colour toast.ButtonColour) {
	if img != nil && !img.IsZero() {
		d.SetAttribute(node, "imageUri", img.URI())
	}
	if tooltip != "" {
		d.SetAttribute(node, "hint-toolTip", tooltip)
	}
	if colour != toast.ColourDefault {
		d.SetAttribute(node, "hint-buttonStyle", string(colour))
		d.SetAttribute(d.toast, "useButtonStyle", formatBool(true))
	}
}

// AddProgressBar adds a progress bar bound to adaptable data.
func (d *Document) AddProgressBar() {
	node := d.binding.CreateElement("progress")
	d.SetAttribute(node, "status", Placeholder(KeyStatus))
	d.SetAttribute(node, "value", Placeholder(KeyProgress))
	d.SetAttribute(node, "valueStringOverride", Placeholder(KeyProgressOverride))
	d.SetAttribute(node, "title", Placeholder(KeyCaption))
}

// AddStaticProgressBar adds a progress bar with literal values.
func (d *Document) AddStaticProgressBar(bar *toast.ProgressBar) {
	node := d.binding.CreateElement("progress")
	d.SetAttribute(node, "status", bar.Status)
	d.SetAttribute(node, "value", ProgressValue(bar))
	if override := ProgressOverride(bar); override != "" {
		d.SetAttribute(node, "valueStringOverride", override)
	}
	if bar.Caption != "" {
		d.SetAttribute(node, "title", bar.Caption)
	}
}

// ProgressValue renders the bar position, or Indeterminate.
func ProgressValue(bar *toast.ProgressBar) string {
	if bar.Progress == nil {
		return Indeterminate
	}
	return strconv.FormatFloat(*bar.Progress, 'f', -1, 64)
}

// ProgressOverride is the explicit override or, for a known position, the
// percentage string the OS would show by default.
func ProgressOverride(bar *toast.ProgressBar) string {
	if bar.Override != "" || bar.Progress == nil {
		return bar.Override
	}
	return fmt.Sprintf("%d%%", int(math.RoundToEven(*bar.Progress*100)))
}

// actionsElement returns the <actions> container, creating it on first use.
func (d *Document) actionsElement() (*etree.Element, bool) {
	if d.actions != nil {
		return d.actions, false
	}
	d.actions = d.toast.CreateElement("actions")
	return d.actions, true
}

func firstActionIndex(actions *etree.Element) int {
	for i, tok := range actions.Child {
		if el, ok := tok.(*etree.Element); ok && el.Tag == "action" {
			return i
		}
	}
	return len(actions.Child)
}

func systemArguments(action toast.SystemAction) toast.SystemAction {
	if action == toast.SystemSnooze {
		return toast.SystemSnooze
	}
	return toast.SystemDismiss
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

// Parse reads a toast document back, e.g. one listed by the platform's
// scheduler. The result accepts the same builder calls as New.
func Parse(xml string) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromString(xml); err != nil {
		return nil, fmt.Errorf("parse toast xml: %w", err)
	}
	root := tree.Root()
	if root == nil || root.Tag != "toast" {
		return nil, fmt.Errorf("parse toast xml: root element is not <toast>")
	}

	d := &Document{tree: tree, toast: root}
	d.binding = root.FindElement("./visual/binding")
	if d.binding == nil {
		d.binding = root.CreateElement("visual").CreateElement("binding")
	}
	for _, text := range d.binding.SelectElements("text") {
		if text.SelectAttr("placement") == nil {
			d.texts = append(d.texts, text)
		}
	}
	d.images = len(d.binding.SelectElements("image"))
	d.actions = root.SelectElement("actions")
	if d.actions != nil {
		d.inputs = len(d.actions.SelectElements("input"))
	}
	return d, nil
}
