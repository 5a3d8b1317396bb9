package browser_test

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"gitlab.com/tablefinder/finder"
	"gitlab.com/tablefinder/finder/browser"
	"gitlab.com/tablefinder/mock"
	"gitlab.com/tablefinder/tablek"
)

func testServer() (string, *http.Server) {
	srv := &http.Server{Handler: http.FileServer(http.Dir("testdata/"))}
	testListener, _ := net.Listen("tcp", "localhost:0")
	_, testServerPort, _ := net.SplitHostPort(testListener.Addr().String())
	go func() {
		if err := srv.Serve(testListener); err != http.ErrServerClosed {
			log.Fatalf("Serve(): %s", err)
		}
	}()

	return testServerPort, srv
}

func requireChrome(t *testing.T) {
	chrome, _ := browser.FindChrome()
	if path := os.Getenv("TABLEFINDER_CHROME"); path != "" {
		chrome = path
	}
	if _, err := os.Stat(chrome); err != nil {
		t.Skipf("chrome not available at %s", chrome)
	}
}

func openTab(t *testing.T, ctx context.Context) (*browser.GCDBrowserPool, *browser.Tab) {
	leaser := browser.NewLocalLeaser(os.Getenv("TABLEFINDER_CHROME"), "")
	pool := browser.NewGCDBrowserPool(1, leaser, browser.WithNavigationTimeout(20*time.Second))
	if err := pool.Init(); err != nil {
		t.Fatalf("failed to init pool: %s\n", err)
	}

	tab, err := pool.OpenTab(ctx)
	if err != nil {
		pool.Close(ctx)
		t.Fatalf("error opening tab: %s\n", err)
	}
	return pool, tab
}

func TestTabFind(t *testing.T) {
	requireChrome(t)

	port, srv := testServer()
	defer srv.Shutdown(context.Background())

	ctx := mock.Context(context.Background())
	pool, tab := openTab(t, ctx)
	defer pool.Close(ctx)
	defer pool.CloseTab(ctx, tab)

	if err := tab.Navigate(ctx, fmt.Sprintf("http://localhost:%s/table.html", port)); err != nil {
		t.Fatalf("error navigating: %s\n", err)
	}

	var inputs = []struct {
		locator  string
		count    int
		firstTxt string
	}{
		{"css=#prices th", 2, "Name"},
		{"xpath=//table[@id='prices']/tfoot//td", 2, "Total"},
		{"sizzle=#prices tbody tr td", 6, "Apple"}, // no jQuery on the page
		{"css=#missing", 0, ""},
	}

	for _, in := range inputs {
		elements, err := tab.Find(ctx, in.locator, false, false)
		if err != nil {
			t.Fatalf("%s: error finding: %s\n", in.locator, err)
		}
		if len(elements) != in.count {
			spew.Dump(elements)
			t.Fatalf("%s: expected %d elements got %d\n", in.locator, in.count, len(elements))
		}
		if in.count == 0 {
			continue
		}
		txt, err := elements[0].Text()
		if err != nil {
			t.Fatalf("%s: error reading text: %s\n", in.locator, err)
		}
		if txt != in.firstTxt {
			t.Fatalf("%s: expected %q got %q\n", in.locator, in.firstTxt, txt)
		}
	}

	if _, err := tab.Find(ctx, "css=#missing", true, true); err == nil {
		t.Fatalf("expected error for required element")
	}
}

func TestTabTableFinder(t *testing.T) {
	requireChrome(t)

	port, srv := testServer()
	defer srv.Shutdown(context.Background())

	ctx := mock.Context(context.Background())
	pool, tab := openTab(t, ctx)
	defer pool.Close(ctx)
	defer pool.CloseTab(ctx, tab)

	if err := tab.Navigate(ctx, fmt.Sprintf("http://localhost:%s/table.html", port)); err != nil {
		t.Fatalf("error navigating: %s\n", err)
	}

	tables := finder.New(tab)
	ele, err := tables.FindByRow(ctx, "prices", "2", tablek.Contains("Banana"))
	if err != nil {
		t.Fatalf("error finding row: %s\n", err)
	}
	if ele == nil {
		t.Fatalf("expected Banana in row 2")
	}

	ele, err = tables.FindByFooter(ctx, "xpath=//table[@id='prices']", tablek.Contains("3.50"))
	if err != nil {
		t.Fatalf("error finding footer: %s\n", err)
	}
	if ele == nil {
		t.Fatalf("expected 3.50 in footer")
	}
}

func TestTabClosedContext(t *testing.T) {
	requireChrome(t)

	ctx := mock.Context(context.Background())
	pool, tab := openTab(t, ctx)
	defer pool.Close(context.Background())
	defer pool.CloseTab(context.Background(), tab)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := tab.Find(cancelled, "css=table", false, false); err != context.Canceled {
		t.Fatalf("expected context.Canceled got %v\n", err)
	}
}

func TestSocketLeaser(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "leaser.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Skipf("unix sockets unavailable: %s", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/acquire", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("9222"))
	})
	mux.HandleFunc("/count", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1"))
	})
	mux.HandleFunc("/return", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("port") != "9222" {
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/cleanup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("kill failed"))
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(l)
	defer srv.Close()

	leaser := browser.NewSocketLeaser(sock)
	port, err := leaser.Acquire()
	if err != nil || port != "9222" {
		t.Fatalf("expected port 9222 got %s %v\n", port, err)
	}

	if count, err := leaser.Count(); err != nil || count != "1" {
		t.Fatalf("expected count 1 got %s %v\n", count, err)
	}

	if err := leaser.Return("9222"); err != nil {
		t.Fatalf("error returning: %s\n", err)
	}

	if err := leaser.Return("1"); err == nil {
		t.Fatalf("expected error returning unknown port")
	}

	if _, err := leaser.Cleanup(); err == nil || err.Error() != "kill failed" {
		t.Fatalf("expected cleanup error got %v\n", err)
	}
}

func TestLocalLeaserProfileRootUnusable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := ioutil.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("error writing file: %s\n", err)
	}

	leaser := browser.NewLocalLeaser("/nonexistent/chrome", filepath.Join(blocker, "profiles"))
	if _, err := leaser.Acquire(); err == nil {
		t.Fatalf("expected an error when profiles can not be created")
	}
	if count, _ := leaser.Count(); count != "0" {
		t.Fatalf("expected no browsers got %s\n", count)
	}
}

func TestLocalLeaserCleanupLeavesOthersAlone(t *testing.T) {
	profileRoot := t.TempDir()
	foreign := filepath.Join(profileRoot, "gcd-someone-else")
	if err := os.MkdirAll(foreign, 0700); err != nil {
		t.Fatalf("error creating profile: %s\n", err)
	}

	leaser := browser.NewLocalLeaser("/nonexistent/chrome", profileRoot)
	if _, err := leaser.Cleanup(); err != nil {
		t.Fatalf("error cleaning up: %s\n", err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("cleanup removed a profile it did not create: %s\n", err)
	}

	if err := leaser.Return("9222"); err == nil {
		t.Fatalf("expected error returning a port that was never leased")
	}
}

func TestTabElementTextIsRendered(t *testing.T) {
	requireChrome(t)

	port, srv := testServer()
	defer srv.Shutdown(context.Background())

	ctx := mock.Context(context.Background())
	pool, tab := openTab(t, ctx)
	defer pool.Close(ctx)
	defer pool.CloseTab(ctx, tab)

	if err := tab.Navigate(ctx, fmt.Sprintf("http://localhost:%s/hidden.html", port)); err != nil {
		t.Fatalf("error navigating: %s\n", err)
	}

	elements, err := tab.Find(ctx, "css=#notes td", true, true)
	if err != nil {
		t.Fatalf("error finding cell: %s\n", err)
	}
	txt, err := elements[0].Text()
	if err != nil {
		t.Fatalf("error reading text: %s\n", err)
	}
	if txt != "Visible" {
		t.Fatalf("expected only rendered text got %q\n", txt)
	}

	markup, err := elements[0].HTML()
	if err != nil || !strings.Contains(markup, "Hidden") {
		t.Fatalf("expected html to keep hidden content got %q %v\n", markup, err)
	}
}
