package browser

import (
	"github.com/pkg/errors"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/tablefinder/tablek"
)

// rendered text as the user sees it, text nodes have no innerText
const innerTextFunction = `function() {
	if (typeof this.innerText === 'string') { return this.innerText; }
	return this.textContent || '';
}`

// Element is a node in a live tab, only valid until the document is replaced
type Element struct {
	tab    *Tab
	nodeID int
}

func newElement(tab *Tab, nodeID int) *Element {
	return &Element{tab: tab, nodeID: nodeID}
}

// NodeID chrome assigned to this element
func (e *Element) NodeID() int {
	return e.nodeID
}

// HTML is the outer html as chrome serializes it
func (e *Element) HTML() (string, error) {
	outer, err := e.tab.t.DOM.GetOuterHTMLWithParams(&gcdapi.DOMGetOuterHTMLParams{NodeId: e.nodeID})
	if err != nil {
		return "", errors.Wrapf(err, "outer html of node %d", e.nodeID)
	}
	return outer, nil
}

// Text is the rendered innerText of the element with whitespace collapsed, so hidden
// content and script or style bodies are left out
func (e *Element) Text() (string, error) {
	obj, err := e.tab.t.DOM.ResolveNodeWithParams(&gcdapi.DOMResolveNodeParams{NodeId: e.nodeID, ObjectGroup: "tablefinder"})
	if err != nil {
		return "", errors.Wrapf(err, "resolving node %d", e.nodeID)
	}
	if obj == nil || obj.ObjectId == "" {
		return "", &ElementNotFoundErr{Message: "no object for node"}
	}
	defer e.tab.t.Runtime.ReleaseObject(obj.ObjectId)

	params := &gcdapi.RuntimeCallFunctionOnParams{
		FunctionDeclaration: innerTextFunction,
		ObjectId:            obj.ObjectId,
		Silent:              true,
		ReturnByValue:       true,
	}
	r, exp, err := e.tab.t.Runtime.CallFunctionOnWithParams(params)
	if err != nil {
		return "", errors.Wrapf(err, "reading text of node %d", e.nodeID)
	}
	if exp != nil {
		return "", &ScriptEvaluationErr{Message: "reading text failed", ExceptionText: exp.Text, ExceptionDetails: exp}
	}

	text, _ := r.Value.(string)
	return tablek.VisibleText(text), nil
}
