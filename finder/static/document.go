package static

import (
	"context"
	"io"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/tablefinder/tablek"
	"golang.org/x/net/html"
)

// Document is a parsed html page. css and sizzle locators are evaluated with cascadia, which
// covers the jQuery extensions it knows (:contains, :has), xpath locators with antchfx/xpath.
type Document struct {
	root *html.Node
	doc  *goquery.Document
}

// NewDocument parses html from r
func NewDocument(r io.Reader) (*Document, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html")
	}
	return &Document{root: root, doc: goquery.NewDocumentFromNode(root)}, nil
}

// LoadFile parses the html file at path
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewDocument(f)
}

// Find elements matching locator in document order
func (d *Document) Find(ctx context.Context, locator string, firstOnly, required bool) ([]tablek.Element, error) {
	var nodes []*html.Node
	var err error

	engine, expression := tablek.SplitStrategy(locator)
	switch engine {
	case tablek.XPath:
		nodes, err = d.findXPath(expression)
	default:
		nodes, err = d.findCSS(expression)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s locator %q", engine, expression)
	}

	log.Ctx(ctx).Debug().Str("locator", locator).Int("count", len(nodes)).Msg("searched document")
	if len(nodes) == 0 {
		if required {
			return nil, errors.Wrap(tablek.ErrElementNotFound, locator)
		}
		return make([]tablek.Element, 0), nil
	}

	if firstOnly {
		nodes = nodes[:1]
	}

	elements := make([]tablek.Element, len(nodes))
	for i, node := range nodes {
		elements[i] = &Element{node: node}
	}
	return elements, nil
}

func (d *Document) findCSS(expression string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(expression)
	if err != nil {
		return nil, err
	}
	return d.doc.FindMatcher(sel).Nodes, nil
}

func (d *Document) findXPath(expression string) ([]*html.Node, error) {
	expr, err := xpath.Compile(expression)
	if err != nil {
		return nil, err
	}
	if steps, ok := locationSteps(expression); ok && needsStepwise(steps) {
		return evaluateSteps(d.root, steps)
	}
	return htmlquery.QuerySelectorAll(d.root, expr), nil
}
