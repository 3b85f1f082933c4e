package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DefaultStatsRange is the default metrics window in hours.
const DefaultStatsRange = 24

// ServerSamples returns the recent metrics samples of a game server, newest first.
func (c *Client) ServerSamples(ctx context.Context, server GameServer, rangeHours int) ([]TPSSample, error) {
	if rangeHours <= 0 {
		rangeHours = DefaultStatsRange
	}
	query := url.Values{}
	query.Set("range", strconv.Itoa(rangeHours))

	var samples []TPSSample
	if err := c.get(ctx, fmt.Sprintf("/api/%s/statistics/", server), query, &samples); err != nil {
		return withFallback(ctx, c, "ServerSamples", err, func(p DataProvider) ([]TPSSample, error) {
			return p.ServerSamples(ctx, server)
		})
	}
	return samples, nil
}

// ServerOverview returns the dashboard summary of a game server.
func (c *Client) ServerOverview(ctx context.Context, server GameServer, rangeHours int) (*ServerOverview, error) {
	samples, err := c.ServerSamples(ctx, server, rangeHours)
	if err != nil {
		return nil, err
	}
	overview, err := OverviewFromSamples(samples, time.Local)
	if err != nil {
		return withFallback(ctx, c, "ServerOverview", err, func(p DataProvider) (*ServerOverview, error) {
			return p.Overview(ctx, server)
		})
	}
	return overview, nil
}

// ServerStatistics returns the aggregate statistics of a game server.
// rangeHours of zero lets the server pick its default window.
func (c *Client) ServerStatistics(ctx context.Context, server GameServer, rangeHours int) (*ServerStatistics, error) {
	var query url.Values
	if rangeHours > 0 {
		query = url.Values{"range": []string{strconv.Itoa(rangeHours)}}
	}

	var stats ServerStatistics
	if err := c.get(ctx, fmt.Sprintf("/api/%s/statistics/server", server), query, &stats); err != nil {
		return withFallback(ctx, c, "ServerStatistics", err, func(p DataProvider) (*ServerStatistics, error) {
			return p.ServerStatistics(ctx, server)
		})
	}
	return &stats, nil
}

// PlayerStatistics returns the statistics of a single player.
func (c *Client) PlayerStatistics(ctx context.Context, server GameServer, player string, rangeHours int) (*PlayerStatistics, error) {
	if player == "" {
		return nil, fmt.Errorf("player name is required")
	}
	var query url.Values
	if rangeHours > 0 {
		query = url.Values{"range": []string{strconv.Itoa(rangeHours)}}
	}

	var stats PlayerStatistics
	path := fmt.Sprintf("/api/%s/statistics/player/%s", server, url.PathEscape(player))
	if err := c.get(ctx, path, query, &stats); err != nil {
		return withFallback(ctx, c, "PlayerStatistics", err, func(p DataProvider) (*PlayerStatistics, error) {
			return p.PlayerStatistics(ctx, server, player)
		})
	}
	if stats.Username == "" {
		stats.Username = player
	}
	if stats.UUID == "" {
		stats.UUID = "unknown"
	}
	if stats.Country == "" {
		stats.Country = "Unknown"
	}
	return &stats, nil
}
