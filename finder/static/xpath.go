package static

import (
	"sort"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// antchfx/xpath numbers a positional predicate that follows a filter predicate across every
// node at the same depth rather than per parent, so //tr/*[self::td][2] yields one cell for
// the whole document. Location paths with such steps are evaluated one step at a time, each
// step once per context node, which restores per parent positions.

// locationSteps splits a location path into its steps. An empty step stands for the
// descendant-or-self::node() of an abbreviated //. ok is false for anything that is not a
// plain location path: unions, parenthesized expressions or a trailing /.
func locationSteps(expression string) ([]string, bool) {
	var (
		current  strings.Builder
		brackets int
		parens   int
		quote    rune
	)
	segments := make([]string, 0)

	for _, c := range expression {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			brackets++
		case c == ']':
			brackets--
		case c == '(':
			parens++
		case c == ')':
			parens--
		case brackets == 0 && parens == 0 && c == '|':
			return nil, false
		case brackets == 0 && parens == 0 && c == '/':
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(c)
	}
	if quote != 0 || brackets != 0 || parens != 0 {
		return nil, false
	}
	segments = append(segments, strings.TrimSpace(current.String()))

	// a leading / starts from the document, as every step here does
	if segments[0] == "" {
		segments = segments[1:]
	}
	if len(segments) == 0 || segments[len(segments)-1] == "" {
		return nil, false
	}
	for _, step := range segments {
		if strings.HasPrefix(step, "(") {
			return nil, false
		}
	}
	return segments, true
}

// predicateCount of a single step, counting only top level [ ] groups
func predicateCount(step string) int {
	var (
		count int
		depth int
		quote rune
	)
	for _, c := range step {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			if depth == 0 {
				count++
			}
			depth++
		case c == ']':
			depth--
		}
	}
	return count
}

// needsStepwise reports whether some step stacks predicates, the shape antchfx mis-numbers
func needsStepwise(steps []string) bool {
	for _, step := range steps {
		if predicateCount(step) > 1 {
			return true
		}
	}
	return false
}

// evaluateSteps runs steps from root, one context node at a time, and returns the result in
// document order without duplicates
func evaluateSteps(root *html.Node, steps []string) ([]*html.Node, error) {
	order := documentOrder(root)
	context := []*html.Node{root}

	for _, step := range steps {
		next := make([]*html.Node, 0)
		seen := make(map[*html.Node]struct{})
		add := func(n *html.Node) {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				next = append(next, n)
			}
		}

		if step == "" {
			for _, n := range context {
				walk(n, add)
			}
		} else {
			expr, err := xpath.Compile(step)
			if err != nil {
				return nil, err
			}
			for _, n := range context {
				for _, found := range htmlquery.QuerySelectorAll(n, expr) {
					add(found)
				}
			}
		}

		sort.SliceStable(next, func(i, j int) bool {
			return order[next[i]] < order[next[j]]
		})
		context = next
	}
	return context, nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func documentOrder(root *html.Node) map[*html.Node]int {
	order := make(map[*html.Node]int)
	walk(root, func(n *html.Node) {
		order[n] = len(order)
	})
	return order
}
