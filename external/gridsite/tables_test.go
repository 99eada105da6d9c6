package gridsite

import "testing"

func TestExtractTables(t *testing.T) {
	t.Parallel()

	page := []byte(`<html><body>
<p>intro</p>
<table>
  <thead><tr><th>Player</th><th>Proj Pts</th></tr></thead>
  <tbody>
    <tr><td>Bijan Robinson</td><td>18.4</td></tr>
    <tr><td>Jahmyr  Gibbs</td><td>17.1</td></tr>
  </tbody>
</table>
<table><tr><td>lonely</td></tr></table>
</body></html>`)

	tables, err := extractTables(page)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}

	first := tables[0]
	if len(first.Header) != 2 || first.Header[0] != "Player" || first.Header[1] != "Proj Pts" {
		t.Fatalf("unexpected header: %v", first.Header)
	}
	if len(first.Rows) != 2 {
		t.Fatalf("expected 2 body rows, got %d", len(first.Rows))
	}
	if first.Rows[1][0] != "Jahmyr Gibbs" {
		t.Fatalf("cell text must collapse whitespace: %q", first.Rows[1][0])
	}

	second := tables[1]
	if second.Header != nil || len(second.Rows) != 1 {
		t.Fatalf("headerless table must keep its rows: %+v", second)
	}
}

func TestExtractTables_NoTables(t *testing.T) {
	t.Parallel()

	tables, err := extractTables([]byte(`<html><body><p>nothing here</p></body></html>`))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("expected no tables, got %d", len(tables))
	}
}

func TestRotateUserAgent(t *testing.T) {
	t.Parallel()

	scraper := NewScraper(ScraperConfig{UserAgents: []string{"ua-a", "ua-b"}})
	first := scraper.rotateUserAgent()
	second := scraper.rotateUserAgent()
	third := scraper.rotateUserAgent()
	if first == second {
		t.Fatalf("consecutive requests must rotate agents")
	}
	if third != first {
		t.Fatalf("rotation must wrap around: got %q want %q", third, first)
	}
}
