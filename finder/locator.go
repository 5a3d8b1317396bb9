package finder

import (
	"strings"

	"gitlab.com/tablefinder/tablek"
)

// TableLocator is a raw table locator classified by its strategy prefix
type TableLocator struct {
	Engine tablek.Engine
	Base   string // still carries the strategy prefix, candidates are built from it
}

// ParseTableLocator never fails, anything without a known prefix is taken as the id of a table
func ParseTableLocator(raw string) TableLocator {
	switch {
	case strings.HasPrefix(raw, tablek.PrefixXPath):
		return TableLocator{Engine: tablek.XPath, Base: raw}
	case strings.HasPrefix(raw, tablek.PrefixJQuery), strings.HasPrefix(raw, tablek.PrefixSizzle):
		return TableLocator{Engine: tablek.Sizzle, Base: raw}
	case strings.HasPrefix(raw, tablek.PrefixCSS):
		return TableLocator{Engine: tablek.CSS, Base: raw}
	}
	return TableLocator{Engine: tablek.CSS, Base: tablek.PrefixCSS + "table#" + raw}
}

// Expression is the base with its strategy prefix removed
func (l TableLocator) Expression() string {
	_, expression := tablek.SplitStrategy(l.Base)
	return expression
}

func (l TableLocator) String() string {
	return l.Base
}
