package dom

import (
	"bytes"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/entrhq/titlepanel/pkg/panel"
)

// Attributes and classes of the injected markup.
const (
	ContainerClass = "titlepanel"
	ButtonClass    = "titlepanel-btn"
	DisabledClass  = "titlepanel-disabled"
	AttrItem       = "data-titlepanel-item"
	AttrAction     = "data-titlepanel-action"
)

// ContainerSelector matches the injected container.
var ContainerSelector = MustCompile("div." + ContainerClass)

// BuildControls returns the container element for view.
func BuildControls(itemID int, view panel.View) *html.Node {
	container := element(atom.Div,
		html.Attribute{Key: "class", Val: ContainerClass},
		html.Attribute{Key: AttrItem, Val: strconv.Itoa(itemID)},
		html.Attribute{Key: "data-titlepanel-mode", Val: string(view.Mode)},
	)
	for _, c := range view.Controls {
		container.AppendChild(buildControl(c))
	}
	return container
}

func buildControl(c panel.Control) *html.Node {
	class := ButtonClass
	if !c.Enabled() {
		class += " " + DisabledClass
	}

	var n *html.Node
	if c.Action == "" {
		n = element(atom.Span, html.Attribute{Key: "class", Val: class})
	} else {
		n = element(atom.A,
			html.Attribute{Key: "class", Val: class},
			html.Attribute{Key: "href", Val: "#"},
			html.Attribute{Key: AttrAction, Val: string(c.Action)},
		)
	}
	if c.Disabled || c.Action == "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "aria-disabled", Val: "true"})
	}
	if c.Tooltip != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "title", Val: c.Tooltip})
	}

	label := element(atom.Span)
	label.AppendChild(&html.Node{Type: html.TextNode, Data: c.Label})
	n.AppendChild(label)
	return n
}

// ControlsHTML renders BuildControls to markup.
func ControlsHTML(itemID int, view panel.View) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, BuildControls(itemID, view)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

// textContent concatenates the text under n.
func textContent(n *html.Node) string {
	var buf bytes.Buffer
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		return true
	})
	return buf.String()
}
