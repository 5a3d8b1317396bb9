package static_test

import (
	"context"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"gitlab.com/tablefinder/finder"
	"gitlab.com/tablefinder/finder/static"
	"gitlab.com/tablefinder/mock"
	"gitlab.com/tablefinder/tablek"
)

func loadDocument(t *testing.T) *static.Document {
	doc, err := static.LoadFile("testdata/table.html")
	if err != nil {
		t.Fatalf("error loading document: %s\n", err)
	}
	return doc
}

func text(t *testing.T, ele tablek.Element) string {
	if ele == nil {
		t.Fatalf("expected an element, got none")
	}
	s, err := ele.Text()
	if err != nil {
		t.Fatalf("error reading text: %s\n", err)
	}
	return s
}

func TestDocumentFind(t *testing.T) {
	doc := loadDocument(t)
	ctx := context.Background()

	var inputs = []struct {
		locator  string
		count    int
		firstTxt string
	}{
		{"css=#prices th", 2, "Name"},
		{"#prices tfoot td", 2, "Total"},
		{"jquery=#prices td:contains('Ban')", 1, "Banana"},
		{"sizzle=#prices tbody tr:nth-child(3) td", 2, "Cherry"},
		{"xpath=//table[@id='prices']//th", 2, "Name"},
		{"//tbody/tr[2]/td[2]", 1, "0.50"},
		{"css=#missing", 0, ""},
		{"//tr/*[self::td or self::th][2]", 5, "Price"},
		{"//table[@id='prices']//tr//*[self::td or self::th][1]", 5, "Name"},
		{"//tbody/tr[td][3]/td", 2, "Cherry"},
		{"//tr/*[self::td or self::th][3]", 0, ""},
	}

	for _, in := range inputs {
		elements, err := doc.Find(ctx, in.locator, false, false)
		if err != nil {
			t.Fatalf("%s: error finding: %s\n", in.locator, err)
		}
		if len(elements) != in.count {
			t.Fatalf("%s: expected %d elements got %d\n", in.locator, in.count, len(elements))
		}
		if in.count > 0 && text(t, elements[0]) != in.firstTxt {
			t.Fatalf("%s: expected %q got %q\n", in.locator, in.firstTxt, text(t, elements[0]))
		}
	}
}

func TestDocumentFirstOnlyRequired(t *testing.T) {
	doc := loadDocument(t)
	ctx := context.Background()

	elements, err := doc.Find(ctx, "css=#prices td", true, false)
	if err != nil {
		t.Fatalf("error finding: %s\n", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected a single element got %d\n", len(elements))
	}

	_, err = doc.Find(ctx, "css=#prices caption", false, true)
	if errors.Cause(err) != tablek.ErrElementNotFound {
		t.Fatalf("expected not found error got %v\n", err)
	}
}

func TestDocumentInvalidLocators(t *testing.T) {
	doc := loadDocument(t)
	ctx := context.Background()

	for _, locator := range []string{"css=table#prices tr:nth-child(x)", "xpath=//tr[", "jquery=#prices >> td"} {
		if _, err := doc.Find(ctx, locator, false, false); err == nil {
			t.Fatalf("%s: expected a selector error\n", locator)
		}
	}
}

func TestDocumentHTML(t *testing.T) {
	doc := loadDocument(t)
	elements, err := doc.Find(context.Background(), "xpath=//tfoot//td[1]", false, true)
	if err != nil {
		t.Fatalf("error finding: %s\n", err)
	}
	markup, _ := elements[0].HTML()
	if markup != "<td>Total</td>" {
		t.Fatalf("unexpected html %q\n", markup)
	}
}

func TestTableFinderOverDocument(t *testing.T) {
	doc := loadDocument(t)
	ctx := mock.Context(context.Background())
	f := finder.New(doc)

	table, err := f.Find(ctx, "prices")
	if err != nil {
		t.Fatalf("error finding table: %s\n", err)
	}
	if markup, _ := table.HTML(); !strings.HasPrefix(markup, `<table id="prices">`) {
		t.Fatalf("expected the prices table got %s\n", markup)
	}

	var inputs = []struct {
		name     string
		find     func() (tablek.Element, error)
		expected string
	}{
		{"css header", func() (tablek.Element, error) { return f.FindByHeader(ctx, "prices", tablek.Contains("Pri")) }, "Price"},
		{"css footer", func() (tablek.Element, error) { return f.FindByFooter(ctx, "css=#prices", tablek.NoContent) }, "Total"},
		{"css row", func() (tablek.Element, error) { return f.FindByRow(ctx, "prices", "2", tablek.NoContent) }, "Banana 0.50"},
		{"css last row", func() (tablek.Element, error) { return f.FindByRow(ctx, "prices", "-1", tablek.Contains("Cherry")) }, "Cherry 2.00"},
		{"css col", func() (tablek.Element, error) { return f.FindByCol(ctx, "prices", "2", tablek.NoContent) }, "1.00"},
		{"css col falls through to th", func() (tablek.Element, error) { return f.FindByCol(ctx, "prices", "2", tablek.Contains("Price")) }, "Price"},
		{"css last col", func() (tablek.Element, error) { return f.FindByCol(ctx, "prices", "-2", tablek.Contains("Ban")) }, "Banana"},
		{"sizzle last col", func() (tablek.Element, error) { return f.FindByCol(ctx, "jquery=#prices", "-1", tablek.Contains("0.5")) }, "0.50"},
		{"xpath header", func() (tablek.Element, error) { return f.FindByHeader(ctx, "xpath=//table[@id='prices']", tablek.NoContent) }, "Name"},
		{"xpath footer", func() (tablek.Element, error) { return f.FindByFooter(ctx, "xpath=//table[@id='prices']", tablek.Contains("3.5")) }, "3.50"},
		{"xpath row", func() (tablek.Element, error) { return f.FindByRow(ctx, "xpath=//table[@id='prices']", "3", tablek.NoContent) }, "Cherry"},
		{"xpath col", func() (tablek.Element, error) { return f.FindByCol(ctx, "xpath=//table[@id='prices']", "2", tablek.Contains("0.50")) }, "0.50"},
		{"xpath col per row", func() (tablek.Element, error) { return f.FindByCol(ctx, "xpath=//table[@id='prices']", "2", tablek.Contains("2.00")) }, "2.00"},
		{"xpath last row", func() (tablek.Element, error) { return f.FindByRow(ctx, "xpath=//table[@id='prices']", "-1", tablek.NoContent) }, "Cherry 2.00"},
		{"xpath last col", func() (tablek.Element, error) { return f.FindByCol(ctx, "xpath=//table[@id='prices']", "-1", tablek.NoContent) }, "1.00"},
		{"xpath second to last col", func() (tablek.Element, error) { return f.FindByCol(ctx, "xpath=//table[@id='prices']", "-2", tablek.Contains("Ban")) }, "Banana"},
	}

	for _, in := range inputs {
		ele, err := in.find()
		if err != nil {
			t.Fatalf("%s: error: %s\n", in.name, err)
		}
		if got := text(t, ele); got != in.expected {
			t.Fatalf("%s: expected %q got %q\n", in.name, in.expected, got)
		}
	}
}

func TestTableFinderContentOverDocument(t *testing.T) {
	doc := loadDocument(t)
	ctx := context.Background()
	f := finder.New(doc)

	// xpath content walks every descendant, so the first one containing the text wins
	ele, err := f.FindByContent(ctx, "xpath=//table[@id='prices']", "2.00")
	if err != nil {
		t.Fatalf("error: %s\n", err)
	}
	markup, _ := ele.HTML()
	if !strings.HasPrefix(markup, "<tbody>") {
		t.Fatalf("expected tbody got %s\n", spew.Sdump(markup))
	}

	ele, err = f.FindByContent(ctx, "prices", "Durian")
	if err != nil || ele != nil {
		t.Fatalf("expected nothing got %v, %v\n", ele, err)
	}

	if err := f.ShouldContain(ctx, "empty", "anything"); err == nil {
		t.Fatalf("empty table should not contain text")
	}
}
