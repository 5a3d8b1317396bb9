package tablek

import "strings"

// Engine is the selector engine a locator is evaluated with
type Engine int8

// revive:disable:var-naming
const (
	CSS Engine = iota + 1
	Sizzle
	XPath
)

var engineMap = map[Engine]string{
	CSS:    "css",
	Sizzle: "sizzle",
	XPath:  "xpath",
}

func (e Engine) String() string {
	if s, ok := engineMap[e]; ok {
		return s
	}
	return ""
}

// Strategy prefixes understood by every ElementFinder
const (
	PrefixCSS    = "css="
	PrefixXPath  = "xpath="
	PrefixJQuery = "jquery="
	PrefixSizzle = "sizzle="
)

// SplitStrategy separates a prefixed locator into its engine and expression.
// Locators without a prefix are treated as xpath when they start with / or (
// and as css otherwise.
func SplitStrategy(locator string) (Engine, string) {
	switch {
	case strings.HasPrefix(locator, PrefixXPath):
		return XPath, locator[len(PrefixXPath):]
	case strings.HasPrefix(locator, PrefixJQuery):
		return Sizzle, locator[len(PrefixJQuery):]
	case strings.HasPrefix(locator, PrefixSizzle):
		return Sizzle, locator[len(PrefixSizzle):]
	case strings.HasPrefix(locator, PrefixCSS):
		return CSS, locator[len(PrefixCSS):]
	case strings.HasPrefix(locator, "/"), strings.HasPrefix(locator, "("):
		return XPath, locator
	}
	return CSS, locator
}

// Intent is the structural part of a table a lookup targets
type Intent int8

const (
	// Default the table itself
	Default Intent = iota + 1
	// InTable any element inside the table
	InTable
	// Header cells
	Header
	// Footer cells
	Footer
	// Row counted from the top
	Row
	// LastRow counted from the bottom
	LastRow
	// Col counted from the left
	Col
	// LastCol counted from the right
	LastCol
)

var intentMap = map[Intent]string{
	Default: "default",
	InTable: "content",
	Header:  "header",
	Footer:  "footer",
	Row:     "row",
	LastRow: "last-row",
	Col:     "col",
	LastCol: "last-col",
}

func (i Intent) String() string {
	if s, ok := intentMap[i]; ok {
		return s
	}
	return ""
}

// Indexed intents take a positional argument
func (i Intent) Indexed() bool {
	switch i {
	case Row, LastRow, Col, LastCol:
		return true
	}
	return false
}

// Engines every resolver must support
func Engines() []Engine {
	return []Engine{CSS, Sizzle, XPath}
}

// Intents every resolver must support
func Intents() []Intent {
	return []Intent{Default, InTable, Header, Footer, Row, LastRow, Col, LastCol}
}
