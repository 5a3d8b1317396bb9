package finder

import "gitlab.com/tablefinder/tablek"

type suffixKey struct {
	engine tablek.Engine
	intent tablek.Intent
}

// locatorSuffixes are appended to the table locator, in lookup order. %s is the 1-based index
// for indexed intents. Never modified after init.
var locatorSuffixes = map[suffixKey][]string{
	{tablek.CSS, tablek.Default}: {""},
	{tablek.CSS, tablek.InTable}: {""},
	{tablek.CSS, tablek.Header}:  {" th"},
	{tablek.CSS, tablek.Footer}:  {" tfoot td"},
	{tablek.CSS, tablek.Row}:     {" tr:nth-child(%s)"},
	{tablek.CSS, tablek.LastRow}: {" tr:nth-last-child(%s)"},
	{tablek.CSS, tablek.Col}:     {" tr td:nth-child(%s)", " tr th:nth-child(%s)"},
	{tablek.CSS, tablek.LastCol}: {" tr td:nth-last-child(%s)", " tr th:nth-last-child(%s)"},

	{tablek.Sizzle, tablek.Default}: {""},
	{tablek.Sizzle, tablek.InTable}: {""},
	{tablek.Sizzle, tablek.Header}:  {" th"},
	{tablek.Sizzle, tablek.Footer}:  {" tfoot td"},
	{tablek.Sizzle, tablek.Row}:     {" tr:nth-child(%s)"},
	{tablek.Sizzle, tablek.LastRow}: {" tr:nth-last-child(%s)"},
	{tablek.Sizzle, tablek.Col}:     {" tr td:nth-child(%s)", " tr th:nth-child(%s)"},
	{tablek.Sizzle, tablek.LastCol}: {" tr td:nth-last-child(%s)", " tr th:nth-last-child(%s)"},

	{tablek.XPath, tablek.Default}: {""},
	{tablek.XPath, tablek.InTable}: {"//*"},
	{tablek.XPath, tablek.Header}:  {"//th"},
	{tablek.XPath, tablek.Footer}:  {"//tfoot//td"},
	{tablek.XPath, tablek.Row}:     {"//tr[%s]//*"},
	{tablek.XPath, tablek.LastRow}: {" //tbody/tr[position()=last()-(%s-1)]"},
	{tablek.XPath, tablek.Col}:     {"//tr//*[self::td or self::th][%s]"},
	{tablek.XPath, tablek.LastCol}: {" //tbody/tr/td[position()=last()-(%s-1)]", " //tbody/tr/td[position()=last()-(%s-1)]"},
}

// Suffixes returns a copy of the suffix templates for engine and intent
func Suffixes(engine tablek.Engine, intent tablek.Intent) ([]string, bool) {
	suffixes, ok := locatorSuffixes[suffixKey{engine, intent}]
	if !ok {
		return nil, false
	}
	return append([]string(nil), suffixes...), true
}
