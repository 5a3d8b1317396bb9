package browser

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

var startupFlags = []string{
	"--enable-automation",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-new-browser-first-run",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--no-first-run",
	"--window-size=1024,768",
	"--password-store=basic",
	"--headless",
	"about:blank",
}

// GCDBrowserPool keeps up to maxBrowsers connected chrome debuggers ready
type GCDBrowserPool struct {
	maxBrowsers      int
	acquiredBrowsers int32
	acquireErrors    int32
	browsers         chan *gcd.Gcd
	closing          int32
	leaser           LeaserService
	startCount       int32
	tabOpts          []TabOption
}

// NewGCDBrowserPool that starts browsers with leaser, every tab it opens gets tabOpts
func NewGCDBrowserPool(maxBrowsers int, leaser LeaserService, tabOpts ...TabOption) *GCDBrowserPool {
	if maxBrowsers <= 0 {
		maxBrowsers = 1
	}
	b := &GCDBrowserPool{}
	b.maxBrowsers = maxBrowsers
	b.leaser = leaser
	b.tabOpts = tabOpts
	b.browsers = make(chan *gcd.Gcd, b.maxBrowsers)
	return b
}

// Init starts the browser pool
func (b *GCDBrowserPool) Init() error {
	if _, err := b.leaser.Cleanup(); err != nil {
		return err
	}
	return b.Start()
}

// Start maxBrowsers browsers
func (b *GCDBrowserPool) Start() error {
	// allow 3 seconds per Browser
	timeoutCtx, cancel := context.WithTimeout(context.Background(), time.Second*time.Duration(b.maxBrowsers*3))
	defer cancel()

	log.Info().Int("browsers", b.maxBrowsers).Msg("creating browsers")
	b.browsers = make(chan *gcd.Gcd, b.maxBrowsers)

	currentCount := atomic.AddInt32(&b.startCount, 1)
	for i := 0; i < b.maxBrowsers; i++ {
		b.returnBrowser(timeoutCtx, nil, currentCount) // passing nil will just create a new one for us
		log.Info().Int("i", i).Msg("browser created")
	}
	return nil
}

// Acquire a browser unless ctx expires first
func (b *GCDBrowserPool) Acquire(ctx context.Context) *gcd.Gcd {
	select {
	case browser := <-b.browsers:
		if browser != nil {
			atomic.AddInt32(&b.acquiredBrowsers, 1)
		}
		return browser
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Msg("failed to acquire browser from pool")
		atomic.AddInt32(&b.acquireErrors, 1)
		return nil
	}
}

// returnBrowser closes browser if set and puts a fresh one in the pool
func (b *GCDBrowserPool) returnBrowser(ctx context.Context, browser *gcd.Gcd, startCount int32) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()
	doneCh := make(chan struct{})

	go b.closeAndCreateBrowser(browser, doneCh, startCount)

	select {
	case <-timeoutCtx.Done():
		log.Error().Msg("failed to closeAndCreateBrowser in time")
	case <-doneCh:
		return
	}
}

// closeAndCreateBrowser takes an optional browser to close, and creates a new one, closing doneCh
// to signal it completed (although it may be a nil browser if error occurred).
func (b *GCDBrowserPool) closeAndCreateBrowser(browser *gcd.Gcd, doneCh chan struct{}, startCount int32) {
	defer close(doneCh)

	if browser != nil {
		if err := b.leaser.Return(browser.Port()); err != nil {
			log.Error().Err(err).Msg("failed to return browser")
		}
		atomic.AddInt32(&b.acquiredBrowsers, -1)
	}

	// if we've restarted or are closing, this browser is not replaced
	if atomic.LoadInt32(&b.startCount) != startCount || atomic.LoadInt32(&b.closing) == 1 {
		return
	}

	browser = gcd.NewChromeDebugger()
	port, err := b.leaser.Acquire()
	if err != nil {
		log.Warn().Err(err).Msg("unable to acquire new browser")
		b.browsers <- nil
		return
	}

	if err := browser.ConnectToInstance("localhost", port); err != nil {
		log.Warn().Err(err).Msg("failed to connect to instance")
		browser = nil
	}

	b.browsers <- browser
}

// Take a browser, user is responsible for closing tabs they opened.
func (b *GCDBrowserPool) Take(ctx context.Context) (*gcd.Gcd, error) {
	var browser *gcd.Gcd

	if atomic.LoadInt32(&b.closing) == 1 {
		return nil, ErrBrowserClosing
	}
	// if nil, do not return browser
	if browser = b.Acquire(ctx); browser == nil {
		return nil, errors.New("browser acquisition failed during Take")
	}

	log.Ctx(ctx).Info().Int32("acquired", atomic.LoadInt32(&b.acquiredBrowsers)).Int32("errors", atomic.LoadInt32(&b.acquireErrors)).Msg("acquired browser")
	return browser, nil
}

// Return a browser for destruction, a fresh one takes its place
func (b *GCDBrowserPool) Return(ctx context.Context, browser *gcd.Gcd) {
	startCount := atomic.LoadInt32(&b.startCount) // track if we've restarted so we can throw away bad browsers
	log.Ctx(ctx).Info().Msg("closing browser")
	b.returnBrowser(ctx, browser, startCount)
}

// OpenTab takes a browser and opens a new instrumented tab in it
func (b *GCDBrowserPool) OpenTab(ctx context.Context) (*Tab, error) {
	browser, err := b.Take(ctx)
	if err != nil {
		return nil, err
	}

	target, err := browser.NewTab()
	if err != nil {
		b.Return(ctx, browser)
		return nil, errors.Wrap(err, "failed to open tab")
	}
	return NewTab(ctx, browser, target, b.tabOpts...), nil
}

// CloseTab closes tab and puts its browser back for reuse, a browser that will not close the
// tab is replaced instead
func (b *GCDBrowserPool) CloseTab(ctx context.Context, tab *Tab) {
	tab.Close()
	if err := tab.g.CloseTab(tab.t); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to close tab, replacing browser")
		b.Return(ctx, tab.g)
		return
	}

	select {
	case b.browsers <- tab.g:
		atomic.AddInt32(&b.acquiredBrowsers, -1)
	default:
		b.Return(ctx, tab.g)
	}
}

// Close all browsers and return.
func (b *GCDBrowserPool) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&b.closing, 0, 1) {
		return nil
	}

	for {
		if len(b.browsers) == 0 {
			_, err := b.leaser.Cleanup()
			return err
		}

		browser := b.Acquire(ctx)
		if browser != nil {
			if err := b.leaser.Return(browser.Port()); err != nil {
				log.Error().Err(err).Msg("failed to return browser")
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
