package nflverse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	basecache "github.com/gridironlab/statline/internal/platform/cache"
	"github.com/gridironlab/statline/internal/platform/logging"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"A.J. Brown", "aj brown"},
		{"Amon-Ra St. Brown", "amon-ra st brown"},
		{"  Bijan Robinson ", "bijan robinson"},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Fatalf("NormalizeName(%q): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestCrosswalkByName_CachesResponse(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("merge_name,espn_id,gsis_id\naj brown,4047646.0,00-0035676\npatrick mahomes,3139477.0,00-0033873\nno id guy,,\n"))
	}))
	defer server.Close()

	loader := NewLoader(LoaderConfig{
		HTTPClient:   server.Client(),
		PlayerIDsURL: server.URL,
		Cache:        basecache.NewStore(time.Minute),
		Logger:       logging.NewNop(),
	})

	crosswalk, err := loader.CrosswalkByName(context.Background())
	if err != nil {
		t.Fatalf("crosswalk: %v", err)
	}
	if got := crosswalk["aj brown"]; got != "4047646" {
		t.Fatalf("float-formatted id must lose its fraction: got=%q", got)
	}
	if _, ok := crosswalk["no id guy"]; ok {
		t.Fatalf("rows without an id must be dropped")
	}

	if _, err := loader.CrosswalkByName(context.Background()); err != nil {
		t.Fatalf("second crosswalk: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream fetch, got %d", hits.Load())
	}
}

func TestSnapCounts_ParsesAndSorts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("game_id,season,week,player,team,position,offense_snaps,offense_pct,defense_snaps,defense_pct\n" +
			"x,2024,2,A.J. Brown,PHI,WR,61,0.94,0,0\n" +
			"y,2024,1,A.J. Brown,PHI,WR,58,0.92,0,0\n"))
	}))
	defer server.Close()

	loader := NewLoader(LoaderConfig{
		HTTPClient:       server.Client(),
		SnapCountsFormat: server.URL + "/snap_counts_%d.csv",
		Cache:            basecache.NewStore(time.Minute),
		Logger:           logging.NewNop(),
	})

	rows, err := loader.SnapCounts(context.Background(), []int{2024})
	if err != nil {
		t.Fatalf("snap counts: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].GameWeek != 1 || rows[1].GameWeek != 2 {
		t.Fatalf("rows must sort by week: %+v", rows)
	}
	if rows[0].PlayerName != "aj brown" {
		t.Fatalf("player name must be normalized: %q", rows[0].PlayerName)
	}
	if rows[0].OffenseSnaps != 58 || rows[0].OffenseSnapPct != 0.92 {
		t.Fatalf("unexpected snap values: %+v", rows[0])
	}
}

func TestLoader_MissingColumnFails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("name,other\nfoo,bar\n"))
	}))
	defer server.Close()

	loader := NewLoader(LoaderConfig{
		HTTPClient:   server.Client(),
		PlayerIDsURL: server.URL,
		Cache:        basecache.NewStore(time.Minute),
		Logger:       logging.NewNop(),
	})

	if _, err := loader.CrosswalkByName(context.Background()); err == nil {
		t.Fatalf("expected error for missing espn_id column")
	}
}
