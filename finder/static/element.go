package static

import (
	"github.com/antchfx/htmlquery"
	"gitlab.com/tablefinder/tablek"
	"golang.org/x/net/html"
)

// Element of a static Document
type Element struct {
	node *html.Node
}

// Node backing this element
func (e *Element) Node() *html.Node {
	return e.node
}

// Text content with whitespace collapsed
func (e *Element) Text() (string, error) {
	return tablek.VisibleText(htmlquery.InnerText(e.node)), nil
}

// HTML of the element including itself
func (e *Element) HTML() (string, error) {
	return htmlquery.OutputHTML(e.node, true), nil
}
