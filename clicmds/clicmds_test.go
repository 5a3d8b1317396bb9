package clicmds_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/tablefinder/clicmds"
	"gitlab.com/tablefinder/tablek"
)

func testApp(out *bytes.Buffer) *cli.App {
	app := cli.NewApp()
	app.Writer = out
	app.Commands = []*cli.Command{
		{
			Name:    "resolve",
			Aliases: []string{"r"},
			Action:  clicmds.Resolve,
			Flags:   clicmds.ResolveFlags(),
		},
		{
			Name:    "parse",
			Aliases: []string{"p"},
			Action:  clicmds.Parse,
			Flags:   clicmds.ParseFlags(),
		},
		{
			Name:    "history",
			Aliases: []string{"h"},
			Action:  clicmds.History,
			Flags:   clicmds.HistoryFlags(),
		},
	}
	return app
}

func TestResolve(t *testing.T) {
	var inputs = []struct {
		args     []string
		expected string
	}{
		{[]string{"--table", "prices"}, "css=table#prices\n"},
		{[]string{"--table", "prices", "--header"}, "css=table#prices th\n"},
		{[]string{"--table", "prices", "--col", "-1"}, "css=table#prices tr td:nth-last-child(1)\ncss=table#prices tr th:nth-last-child(1)\n"},
		{[]string{"--table", "xpath=//table", "--row", "4"}, "xpath=//table//tr[4]//*\n"},
	}

	for _, in := range inputs {
		out := &bytes.Buffer{}
		args := append([]string{"app", "r"}, in.args...)
		if err := testApp(out).Run(args); err != nil {
			t.Fatalf("%v: err: %s\n", in.args, err)
		}
		if out.String() != in.expected {
			t.Fatalf("%v: expected %q got %q\n", in.args, in.expected, out.String())
		}
	}
}

func TestResolveConflictingIntents(t *testing.T) {
	out := &bytes.Buffer{}
	err := testApp(out).Run([]string{"app", "r", "--table", "prices", "--header", "--row", "1"})
	if err == nil {
		t.Fatalf("expected error for --header with --row")
	}
}

func TestParse(t *testing.T) {
	out := &bytes.Buffer{}
	err := testApp(out).Run([]string{"app", "p", "--file", "testdata/table.html", "--table", "prices", "--row", "-1", "--content", "Total"})
	if err != nil {
		t.Fatalf("err: %s\n", err)
	}
	if !strings.Contains(out.String(), "text: Total 3.50") {
		t.Fatalf("expected the footer row got %q\n", out.String())
	}
}

func TestParseNotFound(t *testing.T) {
	out := &bytes.Buffer{}
	err := testApp(out).Run([]string{"app", "p", "--file", "testdata/table.html", "--table", "prices", "--header", "--content", "Weight"})
	if errors.Cause(err) != tablek.ErrElementNotFound {
		t.Fatalf("expected element not found got %v\n", err)
	}
}

func TestParseHistory(t *testing.T) {
	datadir := t.TempDir()

	out := &bytes.Buffer{}
	err := testApp(out).Run([]string{"app", "p", "--file", "testdata/table.html", "--datadir", datadir, "--table", "prices", "--content", "Cherry"})
	if err != nil {
		t.Fatalf("err: %s\n", err)
	}

	out.Reset()
	if err := testApp(out).Run([]string{"app", "h", "--datadir", datadir}); err != nil {
		t.Fatalf("err: %s\n", err)
	}
	if !strings.Contains(out.String(), "Had 1 lookups") || !strings.Contains(out.String(), `content="Cherry"`) {
		t.Fatalf("unexpected history %q\n", out.String())
	}
}
