package mock

import "fmt"

// Element with canned text
type Element struct {
	Value  string
	Markup string
	Err    error // returned from Text and HTML when set
}

// MakeElements one per text, in order
func MakeElements(texts ...string) []*Element {
	elements := make([]*Element, len(texts))
	for i, text := range texts {
		elements[i] = &Element{Value: text}
	}
	return elements
}

func (e *Element) Text() (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Value, nil
}

func (e *Element) HTML() (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	if e.Markup != "" {
		return e.Markup, nil
	}
	return fmt.Sprintf("<td>%s</td>", e.Value), nil
}
