package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ParsePlayerStatus validates a roster status filter. Empty means all.
func ParsePlayerStatus(s string) (PlayerStatus, error) {
	switch PlayerStatus(s) {
	case "", PlayersAll:
		return PlayersAll, nil
	case PlayersOnline, PlayersOffline:
		return PlayerStatus(s), nil
	default:
		return "", fmt.Errorf("unknown player status %q (expected all, online or offline)", s)
	}
}

// ListPlayers returns one page of the roster. The status filter is applied
// locally when the API did not apply it.
func (c *Client) ListPlayers(ctx context.Context, page int, search string, status PlayerStatus) (*PlayerPage, error) {
	if page < 1 {
		page = 1
	}
	if status == "" {
		status = PlayersAll
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("search", search)

	var result PlayerPage
	if err := c.get(ctx, "/api/players", query, &result); err != nil {
		return withFallback(ctx, c, "ListPlayers", err, func(p DataProvider) (*PlayerPage, error) {
			return p.Players(ctx, page, search, status)
		})
	}

	result.Page = page
	result.TotalPages = TotalPages(result.Total)
	if status != PlayersAll && !result.Filtered {
		result.Items = FilterPlayers(result.Items, "", status)
		result.TotalPages = TotalPages(len(result.Items))
	}
	return &result, nil
}
