package infrastructure

import (
	"context"
	"fmt"

	"outreachDesk/internal/modules/settings/domain"
	"outreachDesk/internal/platform/apiclient"
)

const settingsPath = "/settings"

// SettingsHTTPClient reads and updates sending settings through the backend API.
type SettingsHTTPClient struct {
	api *apiclient.Client
}

func NewSettingsHTTPClient(api *apiclient.Client) *SettingsHTTPClient {
	return &SettingsHTTPClient{api: api}
}

func (c *SettingsHTTPClient) Get(ctx context.Context) (domain.Settings, error) {
	var raw any
	if err := c.api.Get(ctx, settingsPath, nil, &raw); err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return domain.ToUiSettings(raw), nil
}

// Update validates the update locally before posting it and returns the stored settings.
func (c *SettingsHTTPClient) Update(ctx context.Context, update domain.SettingsUpdate) (domain.Settings, error) {
	validated, err := update.Validate()
	if err != nil {
		return domain.Settings{}, err
	}
	var raw any
	if err := c.api.Post(ctx, settingsPath, validated, &raw); err != nil {
		return domain.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return domain.ToUiSettings(raw), nil
}
