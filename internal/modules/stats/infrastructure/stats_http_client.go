package infrastructure

import (
	"context"
	"fmt"

	"outreachDesk/internal/modules/stats/domain"
	"outreachDesk/internal/platform/apiclient"
	"outreachDesk/internal/shared/normalization"
)

// StatsHTTPClient fetches aggregated campaign statistics computed by the backend.
type StatsHTTPClient struct {
	api *apiclient.Client
}

func NewStatsHTTPClient(api *apiclient.Client) *StatsHTTPClient {
	return &StatsHTTPClient{api: api}
}

func (c *StatsHTTPClient) Summary(ctx context.Context, query domain.StatsQuery) (domain.Summary, error) {
	var raw any
	if err := c.api.Get(ctx, "/stats/summary", query.Params(), &raw); err != nil {
		return domain.Summary{}, fmt.Errorf("stats summary: %w", err)
	}
	return domain.ToUiStatsSummary(raw), nil
}

// Export returns the CSV document the backend renders for the query.
func (c *StatsHTTPClient) Export(ctx context.Context, query domain.StatsExportQuery) (string, error) {
	var raw any
	if err := c.api.Get(ctx, "/stats/export", query.Params(), &raw); err != nil {
		return "", fmt.Errorf("stats export: %w", err)
	}
	return normalization.AsString(raw, ""), nil
}
