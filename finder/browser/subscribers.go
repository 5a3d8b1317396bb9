package browser

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
)

// domChangeEvents only move the stability clock, their payloads are not needed
var domChangeEvents = []string{
	"DOM.setChildNodes",
	"DOM.attributeModified",
	"DOM.attributeRemoved",
	"DOM.characterDataModified",
	"DOM.childNodeCountUpdated",
	"DOM.childNodeInserted",
	"DOM.childNodeRemoved",
}

func (t *Tab) subscribeBrowserEvents(ctx context.Context) {
	t.t.DOM.Enable()
	t.t.Inspector.Enable()
	t.t.Page.Enable()

	t.subscribeTargetCrashed()
	t.subscribeTargetDetached()
	t.subscribeLoadEvent()
	t.subscribeDocumentUpdated()
	for _, event := range domChangeEvents {
		t.t.Subscribe(event, func(target *gcd.ChromeTarget, payload []byte) {
			t.nodeChanged()
		})
	}
	log.Ctx(ctx).Debug().Int64("tab_id", t.id).Msg("subscribed to browser events")
}

func (t *Tab) subscribeTargetCrashed() {
	t.t.Subscribe("Inspector.targetCrashed", func(target *gcd.ChromeTarget, payload []byte) {
		t.disconnected("crashed")
	})
}

func (t *Tab) subscribeTargetDetached() {
	t.t.Subscribe("Inspector.detached", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.InspectorDetachedEvent{}
		err := json.Unmarshal(payload, header)
		reason := "detached"

		if err == nil {
			reason = header.Params.Reason
		}
		t.disconnected(reason)
	})
}

// signals WaitReady once the page loaded, only while a Navigate is in flight
func (t *Tab) subscribeLoadEvent() {
	t.t.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		if !t.IsNavigating() {
			return
		}
		select {
		case t.navigationCh <- struct{}{}:
		default:
		}
	})
}

// every node ID we hold is invalid after this, the next Find refetches the document
func (t *Tab) subscribeDocumentUpdated() {
	t.t.Subscribe("DOM.documentUpdated", func(target *gcd.ChromeTarget, payload []byte) {
		atomic.StoreInt32(&t.docStale, 1)
		t.nodeChanged()
	})
}
