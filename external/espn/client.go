package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/platform/resilience"
	"github.com/gridironlab/statline/internal/platform/tabular"
	"github.com/gridironlab/statline/internal/statfeed"
	"github.com/gridironlab/statline/internal/usecase"
)

const (
	defaultSiteBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"
	defaultWebBaseURL  = "https://site.web.api.espn.com/apis/common/v3/sports/football/nfl"
	defaultCoreBaseURL = "https://sports.core.api.espn.com/v2/sports/football/leagues/nfl"

	offenseGroup      = "offense"
	regularSeasonType = 2
)

var errNotFound = crerr.New("espn resource not found")

type ClientConfig struct {
	HTTPClient     *http.Client
	SiteBaseURL    string
	WebBaseURL     string
	CoreBaseURL    string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client wraps the two public ESPN API surfaces: the site API for the
// team directory and rosters, and the core/web APIs for per-player
// statistics. Every call is a single attempt; retry policy belongs to
// the fetch orchestrator.
type Client struct {
	httpClient     *http.Client
	siteBaseURL    string
	webBaseURL     string
	coreBaseURL    string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		siteBaseURL:    baseOrDefault(cfg.SiteBaseURL, defaultSiteBaseURL),
		webBaseURL:     baseOrDefault(cfg.WebBaseURL, defaultWebBaseURL),
		coreBaseURL:    baseOrDefault(cfg.CoreBaseURL, defaultCoreBaseURL),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func baseOrDefault(value, fallback string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(value), "/")
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func (c *Client) ListTeams(ctx context.Context) ([]usecase.ExternalTeam, error) {
	var envelope teamsEnvelope
	if err := c.doJSON(ctx, c.siteBaseURL+"/teams", &envelope); err != nil {
		return nil, fmt.Errorf("fetch team directory: %w", err)
	}

	out := make([]usecase.ExternalTeam, 0, 32)
	for _, sport := range envelope.Sports {
		for _, league := range sport.Leagues {
			for _, item := range league.Teams {
				if item.Team.ID == "" {
					continue
				}
				out = append(out, usecase.ExternalTeam{
					ExternalID:   item.Team.ID,
					Name:         item.Team.DisplayName,
					Abbreviation: item.Team.Abbreviation,
				})
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: team directory came back empty", statfeed.ErrParse)
	}
	return out, nil
}

// ListTeamRoster returns the offense position group of one team's
// active roster. Defense and special teams groups are skipped.
func (c *Client) ListTeamRoster(ctx context.Context, teamID string) ([]usecase.ExternalRosterPlayer, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, fmt.Errorf("team id is required")
	}

	var envelope rosterEnvelope
	if err := c.doJSON(ctx, c.siteBaseURL+"/teams/"+teamID+"/roster", &envelope); err != nil {
		return nil, fmt.Errorf("fetch roster team_id=%s: %w", teamID, err)
	}

	out := make([]usecase.ExternalRosterPlayer, 0, 32)
	for _, group := range envelope.Athletes {
		if group.Position != offenseGroup {
			continue
		}
		for _, item := range group.Items {
			if item.ID == "" {
				continue
			}
			out = append(out, usecase.ExternalRosterPlayer{
				ExternalID: item.ID,
				Name:       item.DisplayName,
				Position:   item.Position.Abbreviation,
			})
		}
	}

	return out, nil
}

// FetchSeasonStats returns one record of season-to-date stats with
// fields named "<category>.<statName>". Players the source has no
// splits for return ok=false.
func (c *Client) FetchSeasonStats(ctx context.Context, playerID string, season int) (*tabular.Record, bool, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, false, fmt.Errorf("player id is required")
	}

	fullURL := fmt.Sprintf("%s/seasons/%d/types/%d/athletes/%s/statistics/0?lang=en&region=us",
		c.coreBaseURL, season, regularSeasonType, playerID)

	var envelope seasonStatsEnvelope
	err := c.doJSON(ctx, fullURL, &envelope)
	if stderrors.Is(err, errNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch season stats player_id=%s season=%d: %w", playerID, season, err)
	}

	if len(envelope.Splits.Categories) == 0 {
		return nil, false, nil
	}

	record := tabular.NewRecord()
	for _, category := range envelope.Splits.Categories {
		prefix := strings.ToLower(strings.TrimSpace(category.Name))
		if prefix == "" {
			prefix = strings.ToLower(strings.TrimSpace(category.DisplayName))
		}
		for _, stat := range category.Stats {
			if stat.Name == "" {
				continue
			}
			record.Set(prefix+"."+stat.Name, stat.Value)
		}
	}
	if record.Len() == 0 {
		return nil, false, nil
	}

	return record, true, nil
}

// FetchGameLog returns one record per played game in the season, with
// game_id/game_week/game_date identity fields plus the stat columns the
// source labels. Players without a gamelog return ok=false.
func (c *Client) FetchGameLog(ctx context.Context, playerID string, season int) ([]*tabular.Record, bool, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, false, fmt.Errorf("player id is required")
	}

	fullURL := fmt.Sprintf("%s/athletes/%s/gamelog?season=%d", c.webBaseURL, playerID, season)

	var envelope gamelogEnvelope
	err := c.doJSON(ctx, fullURL, &envelope)
	if stderrors.Is(err, errNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch gamelog player_id=%s season=%d: %w", playerID, season, err)
	}

	if len(envelope.Events) == 0 || len(envelope.Labels) == 0 {
		return nil, false, nil
	}

	out := make([]*tabular.Record, 0, len(envelope.Events))
	for _, seasonType := range envelope.SeasonTypes {
		for _, category := range seasonType.Categories {
			for _, eventStats := range category.Events {
				event, ok := envelope.Events[eventStats.EventID]
				if !ok {
					continue
				}

				record := tabular.NewRecord().
					Set("game_id", eventStats.EventID).
					Set("season", int64(season)).
					Set("game_week", int64(event.Week))
				if parsed := parseGameDate(event.GameDate); !parsed.IsZero() {
					record.Set("game_date", parsed)
				}
				for i, label := range envelope.Labels {
					if i >= len(eventStats.Stats) {
						break
					}
					record.Set(label, parseStatValue(eventStats.Stats[i]))
				}
				out = append(out, record)
			}
		}
	}

	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

func (c *Client) doJSON(ctx context.Context, fullURL string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: stats provider is temporarily unavailable", statfeed.ErrTransport)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if stderrors.Is(reqErr, statfeed.ErrTransport) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode provider payload: %v", statfeed.ErrParse, err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := fmt.Errorf("%w: send request: %v", statfeed.ErrTransport, err)
		c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", reqErr)
		return nil, reqErr
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: read response body: %v", statfeed.ErrTransport, readErr)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, crerr.Wrapf(errNotFound, "status=%d url=%s", resp.StatusCode, fullURL)
	case isRetryableStatus(resp.StatusCode):
		reqErr := fmt.Errorf("%w: provider status=%d body=%s", statfeed.ErrTransport, resp.StatusCode, abbreviateBody(raw))
		c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "status", resp.StatusCode)
		return nil, reqErr
	default:
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func parseStatValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" || trimmed == "--" {
		return nil
	}
	if value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64); err == nil {
		return value
	}
	return trimmed
}

func parseGameDate(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
