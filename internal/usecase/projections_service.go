package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gridironlab/statline/internal/domain/statstore"
	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/platform/tabular"
)

type ProjectionsInput struct {
	// URLs overrides the configured source pages when set.
	URLs   []string
	DryRun bool
}

type ProjectionsResult struct {
	Pages       int           `json:"pages"`
	PagesFailed int           `json:"pages_failed"`
	Rows        int           `json:"rows"`
	RowsWritten int           `json:"rows_written"`
	Failures    []string      `json:"failures,omitempty"`
	DryRun      bool          `json:"dry_run"`
	Upsert      UpsertSummary `json:"upsert"`
}

type ProjectionsService struct {
	scraper TableScraper
	store   statstore.Repository
	urls    []string
	logger  *logging.Logger
}

func NewProjectionsService(scraper TableScraper, store statstore.Repository, urls []string, logger *logging.Logger) *ProjectionsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProjectionsService{scraper: scraper, store: store, urls: urls, logger: logger}
}

// Sync scrapes the configured projection pages, converts the largest
// table on each page into records, and replace-upserts them keyed by
// player name. Pages that fail to scrape are reported and skipped.
func (s *ProjectionsService) Sync(ctx context.Context, input ProjectionsInput) (ProjectionsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionsService.Sync")
	defer span.End()

	if s.scraper == nil || s.store == nil {
		return ProjectionsResult{}, fmt.Errorf("%w: projections sync is not fully configured", ErrDependencyUnavailable)
	}

	urls := input.URLs
	if len(urls) == 0 {
		urls = s.urls
	}
	if len(urls) == 0 {
		return ProjectionsResult{}, fmt.Errorf("%w: no projection pages configured", ErrInvalidInput)
	}

	result := ProjectionsResult{Pages: len(urls), DryRun: input.DryRun}
	table := tabular.NewTable("projections")

	for _, pageURL := range urls {
		scraped, err := s.scraper.ScrapeTables(ctx, pageURL)
		if err != nil {
			return result, fmt.Errorf("%w: scrape %s: %v", ErrInvalidInput, pageURL, err)
		}
		if !scraped.Success {
			result.PagesFailed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %s", pageURL, scraped.Error))
			continue
		}

		raw, ok := largestTable(scraped.Tables)
		if !ok {
			result.PagesFailed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: no tables found", pageURL))
			continue
		}

		if err := appendProjectionRows(table, raw, pageURL); err != nil {
			return result, fmt.Errorf("convert projections from %s: %w", pageURL, err)
		}
	}

	result.Rows = table.RowCount()
	if table.RowCount() == 0 {
		return result, nil
	}

	if input.DryRun {
		result.RowsWritten = table.RowCount()
		result.Upsert = UpsertSummary{RowsWritten: table.RowCount()}
		return result, nil
	}

	report, err := s.store.Upsert(ctx, statstore.Batch{
		Destination: "nfl_projections",
		Table:       table,
		Key:         []string{"player_name"},
		Mode:        statstore.ModeReplace,
	})
	if err != nil {
		return result, fmt.Errorf("upsert nfl_projections: %w", err)
	}

	result.RowsWritten = report.RowsWritten
	result.Upsert = UpsertSummary{
		CreatedTable: report.CreatedTable,
		RowsWritten:  report.RowsWritten,
		RowsDeleted:  report.RowsDeleted,
	}

	s.logger.InfoContext(ctx, "projections synced",
		"pages", result.Pages,
		"pages_failed", result.PagesFailed,
		"rows_written", result.RowsWritten,
	)

	return result, nil
}

func largestTable(tables []RawTable) (RawTable, bool) {
	best := -1
	for i, table := range tables {
		if len(table.Header) == 0 {
			continue
		}
		if best < 0 || len(table.Rows) > len(tables[best].Rows) {
			best = i
		}
	}
	if best < 0 {
		return RawTable{}, false
	}
	return tables[best], true
}

// appendProjectionRows maps scraped cells onto normalized column names.
// The first column holding "player" becomes player_name; numeric cells
// parse to floats, the rest stay text.
func appendProjectionRows(table *tabular.Table, raw RawTable, pageURL string) error {
	columns := make([]string, len(raw.Header))
	nameCol := -1
	for i, header := range raw.Header {
		normalized := normalizeColumnName(header)
		if nameCol < 0 && strings.Contains(normalized, "player") {
			normalized = "player_name"
			nameCol = i
		}
		columns[i] = normalized
	}
	if nameCol < 0 {
		return fmt.Errorf("no player column in header %v", raw.Header)
	}

	for _, row := range raw.Rows {
		if nameCol >= len(row) || strings.TrimSpace(row[nameCol]) == "" {
			continue
		}

		record := tabular.NewRecord().
			Set("player_name", strings.TrimSpace(row[nameCol])).
			Set("source_url", pageURL)
		for i, cellValue := range row {
			if i == nameCol || i >= len(columns) || columns[i] == "" {
				continue
			}
			record.Set(columns[i], parseCellValue(cellValue))
		}
		if err := table.Append(record); err != nil {
			return err
		}
	}
	return nil
}

func normalizeColumnName(header string) string {
	cleaned := strings.ToLower(strings.TrimSpace(header))
	cleaned = strings.ReplaceAll(cleaned, "%", "pct")
	var builder strings.Builder
	for _, r := range cleaned {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '/':
			builder.WriteRune('_')
		}
	}
	return strings.Trim(builder.String(), "_")
}

func parseCellValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" || trimmed == "--" {
		return nil
	}
	if value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64); err == nil {
		return value
	}
	return trimmed
}
