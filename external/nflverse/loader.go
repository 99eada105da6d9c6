package nflverse

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	basecache "github.com/gridironlab/statline/internal/platform/cache"
	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/usecase"
)

const (
	defaultPlayerIDsURL     = "https://raw.githubusercontent.com/dynastyprocess/data/master/files/db_playerids.csv"
	defaultSnapCountsFormat = "https://github.com/nflverse/nflverse-data/releases/download/snap_counts/snap_counts_%d.csv"
)

var errMissingColumn = crerr.New("nflverse: required column missing")

type LoaderConfig struct {
	HTTPClient       *http.Client
	PlayerIDsURL     string
	SnapCountsFormat string
	Timeout          time.Duration
	Cache            *basecache.Store
	Logger           *logging.Logger
}

// Loader pulls reference CSVs published by the nflverse data project:
// the player-id crosswalk and weekly snap counts. Responses are large
// and change at most daily, so every read goes through the TTL cache.
type Loader struct {
	httpClient       *http.Client
	playerIDsURL     string
	snapCountsFormat string
	cache            *basecache.Store
	logger           *logging.Logger
}

func NewLoader(cfg LoaderConfig) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 60 * time.Second
	}

	playerIDsURL := strings.TrimSpace(cfg.PlayerIDsURL)
	if playerIDsURL == "" {
		playerIDsURL = defaultPlayerIDsURL
	}
	snapCountsFormat := strings.TrimSpace(cfg.SnapCountsFormat)
	if snapCountsFormat == "" {
		snapCountsFormat = defaultSnapCountsFormat
	}

	store := cfg.Cache
	if store == nil {
		store = basecache.NewStore(6 * time.Hour)
	}

	return &Loader{
		httpClient:       httpClient,
		playerIDsURL:     playerIDsURL,
		snapCountsFormat: snapCountsFormat,
		cache:            store,
		logger:           logger,
	}
}

// CrosswalkByName maps NormalizeName(player name) to the source player
// id. Rows without both fields are dropped.
func (l *Loader) CrosswalkByName(ctx context.Context) (map[string]string, error) {
	v, err := l.cache.GetOrLoad(ctx, "nflverse:crosswalk", func(ctx context.Context) (any, error) {
		rows, header, err := l.fetchCSV(ctx, l.playerIDsURL)
		if err != nil {
			return nil, fmt.Errorf("fetch player id crosswalk: %w", err)
		}

		idCol, err := columnIndex(header, "espn_id")
		if err != nil {
			return nil, err
		}
		nameCol, err := columnIndex(header, "merge_name")
		if err != nil {
			return nil, err
		}

		out := make(map[string]string, len(rows))
		for _, row := range rows {
			id := strings.TrimSpace(cell(row, idCol))
			name := NormalizeName(cell(row, nameCol))
			if id == "" || name == "" {
				continue
			}
			// espn_id is published as a float ("12483.0").
			if dot := strings.IndexByte(id, '.'); dot > 0 {
				id = id[:dot]
			}
			out[name] = id
		}

		l.logger.InfoContext(ctx, "player id crosswalk loaded", "players", len(out))
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	crosswalk, _ := v.(map[string]string)
	return crosswalk, nil
}

// SnapCounts returns weekly snap counts for the given seasons, sorted
// by season, week, player name.
func (l *Loader) SnapCounts(ctx context.Context, seasons []int) ([]usecase.SnapCountRow, error) {
	if len(seasons) == 0 {
		return []usecase.SnapCountRow{}, nil
	}

	unique := make([]int, 0, len(seasons))
	seen := make(map[int]struct{}, len(seasons))
	for _, season := range seasons {
		if _, dup := seen[season]; dup {
			continue
		}
		seen[season] = struct{}{}
		unique = append(unique, season)
	}
	sort.Ints(unique)

	out := make([]usecase.SnapCountRow, 0, 4096)
	for _, season := range unique {
		rows, err := l.snapCountsForSeason(ctx, season)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		if out[i].GameWeek != out[j].GameWeek {
			return out[i].GameWeek < out[j].GameWeek
		}
		return out[i].PlayerName < out[j].PlayerName
	})

	return out, nil
}

func (l *Loader) snapCountsForSeason(ctx context.Context, season int) ([]usecase.SnapCountRow, error) {
	key := "nflverse:snaps:" + strconv.Itoa(season)
	v, err := l.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		rows, header, err := l.fetchCSV(ctx, fmt.Sprintf(l.snapCountsFormat, season))
		if err != nil {
			return nil, fmt.Errorf("fetch snap counts season=%d: %w", season, err)
		}

		cols := map[string]int{}
		for _, name := range []string{"season", "week", "player", "team", "position", "offense_snaps", "offense_pct", "defense_snaps", "defense_pct"} {
			idx, err := columnIndex(header, name)
			if err != nil {
				return nil, err
			}
			cols[name] = idx
		}

		out := make([]usecase.SnapCountRow, 0, len(rows))
		for _, row := range rows {
			name := NormalizeName(cell(row, cols["player"]))
			if name == "" {
				continue
			}
			out = append(out, usecase.SnapCountRow{
				Season:         parseIntCell(cell(row, cols["season"]), season),
				GameWeek:       parseIntCell(cell(row, cols["week"]), 0),
				PlayerName:     name,
				Team:           strings.TrimSpace(cell(row, cols["team"])),
				Position:       strings.TrimSpace(cell(row, cols["position"])),
				OffenseSnaps:   parseIntCell(cell(row, cols["offense_snaps"]), 0),
				DefenseSnaps:   parseIntCell(cell(row, cols["defense_snaps"]), 0),
				OffenseSnapPct: parseFloatCell(cell(row, cols["offense_pct"])),
				DefenseSnapPct: parseFloatCell(cell(row, cols["defense_pct"])),
			})
		}

		l.logger.InfoContext(ctx, "snap counts loaded", "season", season, "rows", len(out))
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	rows, _ := v.([]usecase.SnapCountRow)
	return rows, nil
}

func (l *Loader) fetchCSV(ctx context.Context, fullURL string) ([][]string, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "text/csv")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, nil, crerr.Wrap(err, "send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, crerr.Newf("reference source status=%d url=%s", resp.StatusCode, fullURL)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, crerr.Wrap(err, "read csv header")
	}

	rows := make([][]string, 0, 4096)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, crerr.Wrap(err, "read csv row")
		}
		rows = append(rows, row)
	}

	return rows, header, nil
}

// NormalizeName lowercases and strips periods so "A.J. Brown" and
// "AJ Brown" key the same crosswalk entry.
func NormalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(value, ".", "")))
}

func columnIndex(header []string, name string) (int, error) {
	for i, column := range header {
		if strings.EqualFold(strings.TrimSpace(column), name) {
			return i, nil
		}
	}
	return 0, crerr.Wrapf(errMissingColumn, "column=%s", name)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseIntCell(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(trimmed); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return int(parsed)
	}
	return fallback
}

func parseFloatCell(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}
