package querybuilder

import "strings"

// QuoteIdent quotes a single SQL identifier. Stat table and column names
// come from upstream feed payloads, so every identifier that reaches a
// statement is quoted rather than trusted.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func QuoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = QuoteIdent(name)
	}
	return out
}
