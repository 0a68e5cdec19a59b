// Package usgs fetches earthquake summary feeds from the USGS GeoJSON API.
package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-monitor/internal/domain"
)

// FeedType identifies one of the USGS summary feeds, a combination of a
// minimum magnitude band and a lookback period.
type FeedType string

const (
	FeedAllHour          FeedType = "all_hour"
	FeedAllDay           FeedType = "all_day"
	FeedAllWeek          FeedType = "all_week"
	FeedAllMonth         FeedType = "all_month"
	Feed1Hour            FeedType = "1.0_hour"
	Feed1Day             FeedType = "1.0_day"
	Feed1Week            FeedType = "1.0_week"
	Feed1Month           FeedType = "1.0_month"
	Feed25Hour           FeedType = "2.5_hour"
	Feed25Day            FeedType = "2.5_day"
	Feed25Week           FeedType = "2.5_week"
	Feed25Month          FeedType = "2.5_month"
	Feed45Hour           FeedType = "4.5_hour"
	Feed45Day            FeedType = "4.5_day"
	Feed45Week           FeedType = "4.5_week"
	Feed45Month          FeedType = "4.5_month"
	FeedSignificantHour  FeedType = "significant_hour"
	FeedSignificantDay   FeedType = "significant_day"
	FeedSignificantWeek  FeedType = "significant_week"
	FeedSignificantMonth FeedType = "significant_month"
)

var validFeeds = map[FeedType]struct{}{
	FeedAllHour: {}, FeedAllDay: {}, FeedAllWeek: {}, FeedAllMonth: {},
	Feed1Hour: {}, Feed1Day: {}, Feed1Week: {}, Feed1Month: {},
	Feed25Hour: {}, Feed25Day: {}, Feed25Week: {}, Feed25Month: {},
	Feed45Hour: {}, Feed45Day: {}, Feed45Week: {}, Feed45Month: {},
	FeedSignificantHour: {}, FeedSignificantDay: {}, FeedSignificantWeek: {}, FeedSignificantMonth: {},
}

// ParseFeedType validates a feed name like "all_hour" or "4.5_week".
func ParseFeedType(s string) (FeedType, error) {
	ft := FeedType(s)
	if _, ok := validFeeds[ft]; !ok {
		return "", fmt.Errorf("unknown feed type %q (want <all|1.0|2.5|4.5|significant>_<hour|day|week|month>)", s)
	}
	return ft, nil
}

func (f FeedType) String() string { return string(f) }

// Client fetches and parses USGS summary feeds.
type Client struct {
	httpClient *http.Client
	baseURL    string
	feed       FeedType
	logger     *slog.Logger
}

// NewClient creates a USGS feed client for the given feed.
func NewClient(feed FeedType, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary",
		feed:    feed,
		logger:  logger,
	}
}

// FetchFeed retrieves the configured summary feed and parses it.
func (c *Client) FetchFeed(ctx context.Context) (*domain.FeatureCollection, error) {
	u := fmt.Sprintf("%s/%s.geojson", c.baseURL, c.feed)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: %w", c.feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	fc, err := domain.ParseFeed(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", c.feed, err)
	}

	c.logger.Debug("fetched usgs feed",
		"feed", c.feed,
		"features", len(fc.Features),
		"generated", fc.Metadata.Generated)
	return fc, nil
}
