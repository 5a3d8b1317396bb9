package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/tablefinder/tablek"
)

const matchAttribute = "data-tablefinder-match"

// TabOption configures a Tab before its events are subscribed
type TabOption func(*Tab)

// WithNavigationTimeout bounds the wait for Page.loadEventFired
func WithNavigationTimeout(timeout time.Duration) TabOption {
	return func(t *Tab) {
		if timeout > 0 {
			t.navigationTimeout = timeout
		}
	}
}

// WithStableAfter sets how long the DOM must be quiet to be considered stable
func WithStableAfter(stableAfter time.Duration) TabOption {
	return func(t *Tab) {
		if stableAfter > 0 {
			t.stableAfter = stableAfter
		}
	}
}

// WithDisconnectedHandler is called once when the tab crashes or is detached
func WithDisconnectedHandler(handlerFn TabDisconnectedHandler) TabOption {
	return func(t *Tab) {
		t.disconnectedHandler = handlerFn
	}
}

// Tab is a chromium browser tab we query tables in
type Tab struct {
	g                     *gcd.Gcd
	t                     *gcd.ChromeTarget
	id                    int64
	searchLock            sync.Mutex             // one DOM search at a time, sizzle marks are page global
	topNodeID             atomic.Value           // the nodeID of the current top level #document
	docStale              int32                  // set by DOM.documentUpdated, nodeIDs must be refetched
	isNavigatingFlag      atomic.Value           // are we currently navigating (between Page.Navigate -> page.loadEventFired)
	navigationCh          chan struct{}          // for receiving navigation complete messages while isNavigating is true
	crashedCh             chan string            // the chrome tab crashed with a reason
	crashed               atomic.Value           // reason the tab went away
	exitCh                chan struct{}          // for when we close the tab
	shutdown              int32                  // have we already shut down
	disconnectedHandler   TabDisconnectedHandler // called with reason the chrome tab was disconnected from the debugger service
	navigationTimeout     time.Duration          // amount of time to wait before failing navigation
	stabilityTimeout      time.Duration          // amount of time to give up waiting for stability
	stableAfter           time.Duration          // amount of time of no activity to consider the DOM stable
	lastNodeChangeTimeVal atomic.Value           // timestamp of when the last node change occurred
}

// NewTab instruments target so it can be searched
func NewTab(ctx context.Context, gcdBrowser *gcd.Gcd, target *gcd.ChromeTarget, opts ...TabOption) *Tab {
	t := &Tab{
		g:                 gcdBrowser,
		t:                 target,
		id:                tablek.GetTabID(),
		navigationCh:      make(chan struct{}, 1),
		crashedCh:         make(chan string, 1),
		exitCh:            make(chan struct{}),
		navigationTimeout: 45 * time.Second,
		stabilityTimeout:  5 * time.Second,
		stableAfter:       300 * time.Millisecond,
	}
	t.disconnectedHandler = t.defaultDisconnectedHandler
	t.setTopNodeID(-1)
	t.lastNodeChangeTimeVal.Store(time.Now())

	for _, opt := range opts {
		opt(t)
	}

	t.subscribeBrowserEvents(ctx)
	return t
}

func (t *Tab) defaultDisconnectedHandler(tab *Tab, reason string) {
	log.Debug().Int64("tab_id", tab.id).Msgf("tab %s", reason)
}

// ID of this tab
func (t *Tab) ID() int64 {
	return t.id
}

// Close the exit channel, safe to call more than once
func (t *Tab) Close() {
	if atomic.CompareAndSwapInt32(&t.shutdown, 0, 1) {
		close(t.exitCh)
	}
}

// SetNavigationTimeout to wait for navigations before giving up, default is 45 seconds
func (t *Tab) SetNavigationTimeout(timeout time.Duration) {
	t.navigationTimeout = timeout
}

// SetStabilityTimeout to wait for the DOM to settle, default is 5 seconds.
func (t *Tab) SetStabilityTimeout(timeout time.Duration) {
	t.stabilityTimeout = timeout
}

// SetStabilityTime to wait for no node changes before we consider the DOM stable.
// The default stableAfter is 300 ms.
func (t *Tab) SetStabilityTime(stableAfter time.Duration) {
	t.stableAfter = stableAfter
}

func (t *Tab) setIsNavigating(set bool) {
	t.isNavigatingFlag.Store(set)
}

// IsNavigating answers if we currently navigating
func (t *Tab) IsNavigating() bool {
	if flag, ok := t.isNavigatingFlag.Load().(bool); ok {
		return flag
	}
	return false
}

func (t *Tab) setTopNodeID(nodeID int) {
	t.topNodeID.Store(nodeID)
}

// GetTopNodeID returns the current top node ID of this Tab, -1 before the document was fetched
func (t *Tab) GetTopNodeID() int {
	if topNodeID, ok := t.topNodeID.Load().(int); ok {
		return topNodeID
	}
	return -1
}

func (t *Tab) crashReason() (string, bool) {
	reason, ok := t.crashed.Load().(string)
	return reason, ok
}

// Navigate to url and wait for the page to load and settle
func (t *Tab) Navigate(ctx context.Context, url string) error {
	if reason, crashed := t.crashReason(); crashed {
		return errors.Wrap(ErrTabCrashed, reason)
	}

	// drop a stale load event from a previous page
	select {
	case <-t.navigationCh:
	default:
	}

	t.setIsNavigating(true)
	defer t.setIsNavigating(false)

	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return err
	}

	if errText != "" {
		return errors.Wrap(ErrNavigating, errText)
	}

	log.Ctx(ctx).Debug().Str("url", url).Msg("navigated, waiting for load")
	return t.WaitReady(ctx)
}

// WaitReady waits for the page to load and the DOM to be stable. A DOM that never settles
// is logged and tolerated.
func (t *Tab) WaitReady(ctx context.Context) error {
	navTimer := time.NewTimer(t.navigationTimeout)
	defer navTimer.Stop()

	select {
	case <-navTimer.C:
		return ErrNavigationTimedOut
	case <-ctx.Done():
		return ctx.Err()
	case <-t.exitCh:
		return ErrTabClosing
	case reason := <-t.crashedCh:
		return errors.Wrap(ErrTabCrashed, reason)
	case <-t.navigationCh:
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	stableTimer := time.NewTimer(t.stabilityTimeout)
	defer stableTimer.Stop()

	for {
		select {
		case reason := <-t.crashedCh:
			return errors.Wrap(ErrTabCrashed, reason)
		case <-ctx.Done():
			return ctx.Err()
		case <-t.exitCh:
			return ErrTabClosing
		case <-stableTimer.C:
			log.Ctx(ctx).Warn().Dur("timeout", t.stabilityTimeout).Msg("stability timed out, continuing")
			return nil
		case <-ticker.C:
			if changeTime, ok := t.lastNodeChangeTimeVal.Load().(time.Time); ok {
				if time.Since(changeTime) >= t.stableAfter {
					log.Ctx(ctx).Debug().Msg("stable")
					return nil
				}
			}
		}
	}
}

// EvaluateScript in the global context, exceptions are returned as *ScriptEvaluationErr
func (t *Tab) EvaluateScript(scriptSource string) (*gcdapi.RuntimeRemoteObject, error) {
	params := &gcdapi.RuntimeEvaluateParams{
		Expression:            scriptSource,
		ObjectGroup:           "tablefinder",
		IncludeCommandLineAPI: false,
		Silent:                true,
		ReturnByValue:         true,
		GeneratePreview:       false,
		UserGesture:           false,
		AwaitPromise:          false,
		ThrowOnSideEffect:     false,
		Timeout:               1000,
	}
	r, exp, err := t.t.Runtime.EvaluateWithParams(params)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		return nil, &ScriptEvaluationErr{Message: "script failed", ExceptionText: exp.Text, ExceptionDetails: exp}
	}
	return r, nil
}

// document returns the top node ID, refetching it when chrome told us it changed. Never call
// from an event handler, GetDocument there deadlocks the event loop.
func (t *Tab) document() (int, error) {
	if atomic.CompareAndSwapInt32(&t.docStale, 1, 0) || t.GetTopNodeID() == -1 {
		doc, err := t.t.DOM.GetDocument(-1, false)
		if err != nil {
			return -1, errors.Wrap(err, "failed to get document")
		}
		t.setTopNodeID(doc.NodeId)
	}

	nodeID := t.GetTopNodeID()
	if nodeID == -1 {
		return -1, &ElementNotFoundErr{Message: "top document node ID not found"}
	}
	return nodeID, nil
}

// Find elements matching a strategy prefixed locator in the current page
func (t *Tab) Find(ctx context.Context, locator string, firstOnly, required bool) ([]tablek.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reason, crashed := t.crashReason(); crashed {
		return nil, errors.Wrap(ErrTabCrashed, reason)
	}

	t.searchLock.Lock()
	defer t.searchLock.Unlock()

	docID, err := t.document()
	if err != nil {
		return nil, err
	}

	var nodeIDs []int
	engine, expr := tablek.SplitStrategy(locator)
	switch engine {
	case tablek.XPath:
		nodeIDs, err = t.performSearch(expr)
	case tablek.Sizzle:
		nodeIDs, err = t.sizzleSearch(ctx, docID, expr)
	default:
		nodeIDs, err = t.t.DOM.QuerySelectorAll(docID, expr)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s query %s failed", engine, expr)
	}

	if firstOnly && len(nodeIDs) > 1 {
		nodeIDs = nodeIDs[:1]
	}
	if required && len(nodeIDs) == 0 {
		return nil, errors.Wrap(tablek.ErrElementNotFound, locator)
	}

	elements := make([]tablek.Element, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		elements = append(elements, newElement(t, nodeID))
	}
	log.Ctx(ctx).Debug().Str("locator", locator).Int("found", len(elements)).Msg("find")
	return elements, nil
}

// performSearch runs chrome's own search, which evaluates xpath and css queries
func (t *Tab) performSearch(query string) ([]int, error) {
	params := &gcdapi.DOMPerformSearchParams{Query: query, IncludeUserAgentShadowDOM: false}
	id, count, err := t.t.DOM.PerformSearchWithParams(params)
	if err != nil {
		return nil, err
	}
	defer t.t.DOM.DiscardSearchResults(id)

	if count == 0 {
		return nil, nil
	}
	return t.t.DOM.GetSearchResultsWithParams(&gcdapi.DOMGetSearchResultsParams{SearchId: id, FromIndex: 0, ToIndex: count})
}

// sizzleSearch lets the page's jQuery evaluate expr and marks what it matched, so the marked
// nodes can be looked up by attribute. Pages without jQuery fall back to performSearch.
func (t *Tab) sizzleSearch(ctx context.Context, docID int, expr string) ([]int, error) {
	quoted, err := json.Marshal(expr)
	if err != nil {
		return nil, err
	}

	mark := fmt.Sprintf(`(function(sel) {
	if (typeof window.jQuery !== 'function') { return -1; }
	var found = window.jQuery(sel);
	found.attr('%s', '');
	return found.length;
})(%s)`, matchAttribute, quoted)

	r, err := t.EvaluateScript(mark)
	if err != nil {
		return nil, err
	}

	count, _ := r.Value.(float64)
	if count < 0 {
		log.Ctx(ctx).Debug().Str("expr", expr).Msg("page has no jQuery, falling back to DOM search")
		return t.performSearch(expr)
	}
	if count == 0 {
		return nil, nil
	}

	nodeIDs, err := t.t.DOM.QuerySelectorAll(docID, "["+matchAttribute+"]")

	unmark := fmt.Sprintf(`window.jQuery('[%s]').removeAttr('%s')`, matchAttribute, matchAttribute)
	if _, clearErr := t.EvaluateScript(unmark); clearErr != nil {
		log.Ctx(ctx).Warn().Err(clearErr).Msg("failed to clear match marks")
	}
	return nodeIDs, err
}

func (t *Tab) nodeChanged() {
	t.lastNodeChangeTimeVal.Store(time.Now())
}

func (t *Tab) disconnected(reason string) {
	if _, already := t.crashReason(); already {
		return
	}
	t.crashed.Store(reason)
	select {
	case t.crashedCh <- reason:
	default:
	}
	if t.disconnectedHandler != nil {
		t.disconnectedHandler(t, reason)
	}
}
