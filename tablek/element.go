package tablek

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// revive:exported
var (
	ErrElementNotFound     = errors.New("element not found")
	ErrConfigurationDefect = errors.New("locator suffix table is incomplete")
)

// Element found in a DOM
type Element interface {
	// Text is the visible text of the element, possibly empty
	Text() (string, error)
	// HTML is the outer html of the element
	HTML() (string, error)
}

// ElementFinder queries a DOM with a strategy prefixed locator. When firstOnly is set at most one
// element is returned. When required is set and nothing matched, ErrElementNotFound is returned.
type ElementFinder interface {
	Find(ctx context.Context, locator string, firstOnly, required bool) ([]Element, error)
}

// Content filter applied to found elements
type Content struct {
	text string
	set  bool
}

// NoContent matches any element
var NoContent = Content{}

// Contains matches elements with non-empty text containing text
func Contains(text string) Content {
	return Content{text: text, set: true}
}

// Text of the filter, and whether one is set
func (c Content) Text() (string, bool) {
	return c.text, c.set
}

func (c Content) String() string {
	if !c.set {
		return "<any>"
	}
	return c.text
}

// Matches reports whether text satisfies the filter. Empty text never satisfies a set filter.
func (c Content) Matches(text string) bool {
	if !c.set {
		return true
	}
	return text != "" && strings.Contains(text, c.text)
}

// VisibleText collapses runs of whitespace the way rendered text reads
func VisibleText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
