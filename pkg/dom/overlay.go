package dom

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Overlay markup attributes.
const (
	OverlayClass = "titlepanel-overlay"
	AttrOverlay  = "data-titlepanel-overlay"
	AttrChoice   = "data-titlepanel-choice"
)

// Overlay choices reported back by a host.
const (
	ChoiceConfirm = "confirm"
	ChoiceCancel  = "cancel"
	ChoiceClose   = "close"
	ChoiceSubmit  = "submit"
)

// OverlayButton is one choice of an overlay.
type OverlayButton struct {
	Choice string
	Label  string
}

// Overlay describes a modal box drawn over the host page.
type Overlay struct {
	ID          string
	Title       string
	Body        string
	ShowBar     bool
	Percent     int
	Credentials bool
	Buttons     []OverlayButton
}

// BuildOverlay returns the overlay element.
func BuildOverlay(o Overlay) *html.Node {
	box := element(atom.Div,
		html.Attribute{Key: "class", Val: OverlayClass},
		html.Attribute{Key: AttrOverlay, Val: o.ID},
		html.Attribute{Key: "role", Val: "dialog"},
	)

	title := element(atom.H3)
	title.AppendChild(&html.Node{Type: html.TextNode, Data: o.Title})
	box.AppendChild(title)

	body := element(atom.P, html.Attribute{Key: "class", Val: OverlayClass + "-body"})
	body.AppendChild(&html.Node{Type: html.TextNode, Data: o.Body})
	box.AppendChild(body)

	if o.ShowBar {
		pct := min(max(o.Percent, 0), 100)
		bar := element(atom.Div, html.Attribute{Key: "class", Val: OverlayClass + "-bar"})
		bar.AppendChild(element(atom.Div,
			html.Attribute{Key: "class", Val: OverlayClass + "-fill"},
			html.Attribute{Key: "style", Val: fmt.Sprintf("width: %d%%", pct)},
		))
		box.AppendChild(bar)
	}

	if o.Credentials {
		box.AppendChild(element(atom.Input,
			html.Attribute{Key: "name", Val: "username"},
			html.Attribute{Key: "type", Val: "text"},
			html.Attribute{Key: "placeholder", Val: "Username"},
		))
		box.AppendChild(element(atom.Input,
			html.Attribute{Key: "name", Val: "password"},
			html.Attribute{Key: "type", Val: "password"},
			html.Attribute{Key: "placeholder", Val: "Password"},
		))
	}

	for _, b := range o.Buttons {
		btn := element(atom.A,
			html.Attribute{Key: "class", Val: ButtonClass},
			html.Attribute{Key: "href", Val: "#"},
			html.Attribute{Key: AttrChoice, Val: b.Choice},
		)
		btn.AppendChild(&html.Node{Type: html.TextNode, Data: b.Label})
		box.AppendChild(btn)
	}
	return box
}

// OverlayHTML renders BuildOverlay to markup.
func OverlayHTML(o Overlay) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, BuildOverlay(o)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
