package finder

import (
	"context"
	"fmt"

	"gitlab.com/tablefinder/tablek"
)

// AssertionErr when a table does not contain the expected text
type AssertionErr struct {
	Message string
}

func (e *AssertionErr) Error() string {
	return e.Message
}

// ShouldContain asserts some element of the table contains expected
func (f *TableElementFinder) ShouldContain(ctx context.Context, locator, expected string) error {
	ele, err := f.FindByContent(ctx, locator, expected)
	return assertFound(ele, err, "Table '%s' should have contained text '%s'.", locator, expected)
}

// HeaderShouldContain asserts a header cell of the table contains expected
func (f *TableElementFinder) HeaderShouldContain(ctx context.Context, locator, expected string) error {
	ele, err := f.FindByHeader(ctx, locator, tablek.Contains(expected))
	return assertFound(ele, err, "Table '%s' header did not contain text '%s'.", locator, expected)
}

// FooterShouldContain asserts a footer cell of the table contains expected
func (f *TableElementFinder) FooterShouldContain(ctx context.Context, locator, expected string) error {
	ele, err := f.FindByFooter(ctx, locator, tablek.Contains(expected))
	return assertFound(ele, err, "Table '%s' footer did not contain text '%s'.", locator, expected)
}

// RowShouldContain asserts the row contains expected
func (f *TableElementFinder) RowShouldContain(ctx context.Context, locator, row, expected string) error {
	ele, err := f.FindByRow(ctx, locator, row, tablek.Contains(expected))
	return assertFound(ele, err, "Table '%s' row %s should have contained text '%s'.", locator, row, expected)
}

// ColumnShouldContain asserts the column contains expected
func (f *TableElementFinder) ColumnShouldContain(ctx context.Context, locator, col, expected string) error {
	ele, err := f.FindByCol(ctx, locator, col, tablek.Contains(expected))
	return assertFound(ele, err, "Table '%s' column %s did not contain text '%s'.", locator, col, expected)
}

func assertFound(ele tablek.Element, err error, format string, args ...interface{}) error {
	if err != nil {
		return err
	}
	if ele == nil {
		return &AssertionErr{Message: fmt.Sprintf(format, args...)}
	}
	return nil
}
