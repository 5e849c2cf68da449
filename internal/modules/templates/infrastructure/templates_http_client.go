package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"outreachDesk/internal/modules/templates/domain"
	"outreachDesk/internal/platform/apiclient"
	"outreachDesk/internal/shared/normalization"
)

// ErrMissingTemplateID is returned before any request when no template id is given.
var ErrMissingTemplateID = errors.New("template id is required")

// TemplatesHTTPClient reads templates and renders previews through the backend API.
type TemplatesHTTPClient struct {
	api    *apiclient.Client
	logger *slog.Logger
}

func NewTemplatesHTTPClient(api *apiclient.Client, logger *slog.Logger) *TemplatesHTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplatesHTTPClient{api: api, logger: logger}
}

// List never fails: when the backend cannot be reached an empty list is returned.
func (c *TemplatesHTTPClient) List(ctx context.Context) domain.TemplateList {
	var raw any
	if err := c.api.Get(ctx, "/templates", nil, &raw); err != nil {
		c.logger.Warn("templates list unavailable, using empty list",
			slog.String("baseUrl", c.api.Config().BaseURL),
			slog.Any("error", err))
		return domain.TemplateList{Items: []domain.Template{}, Total: 0}
	}
	return domain.ToUiTemplatesList(raw)
}

func (c *TemplatesHTTPClient) Get(ctx context.Context, id string) (domain.Template, error) {
	path, err := templatePath(id, "")
	if err != nil {
		return domain.Template{}, err
	}
	var raw any
	if err := c.api.Get(ctx, path, nil, &raw); err != nil {
		return domain.Template{}, fmt.Errorf("get template %s: %w", id, err)
	}
	return domain.ToUiTemplate(raw), nil
}

// Preview renders the template, optionally against a specific lead.
func (c *TemplatesHTTPClient) Preview(ctx context.Context, id, leadID string) (domain.Preview, error) {
	path, err := templatePath(id, "preview")
	if err != nil {
		return domain.Preview{}, err
	}
	query := map[string]any{}
	if lead := strings.TrimSpace(leadID); lead != "" {
		query["lead_id"] = lead
	}
	var raw any
	if err := c.api.Get(ctx, path, query, &raw); err != nil {
		return domain.Preview{}, fmt.Errorf("preview template %s: %w", id, err)
	}
	return domain.ToUiTemplatePreview(raw), nil
}

func (c *TemplatesHTTPClient) Variables(ctx context.Context, id string) ([]domain.Variable, error) {
	path, err := templatePath(id, "variables")
	if err != nil {
		return nil, err
	}
	var raw any
	if err := c.api.Get(ctx, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("template %s variables: %w", id, err)
	}
	return domain.ToUiTemplateVariables(raw), nil
}

// SendTest mails the rendered template to payload.To and reports the backend's ok flag.
func (c *TemplatesHTTPClient) SendTest(ctx context.Context, id string, payload domain.TestSend) (bool, error) {
	path, err := templatePath(id, "testsend")
	if err != nil {
		return false, err
	}
	var raw any
	if err := c.api.Post(ctx, path, payload, &raw); err != nil {
		return false, fmt.Errorf("test send template %s: %w", id, err)
	}
	return normalization.PickBool(raw, []string{"ok"}, false), nil
}

func templatePath(id, action string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrMissingTemplateID
	}
	path := "/templates/" + url.PathEscape(trimmed)
	if action != "" {
		path += "/" + action
	}
	return path, nil
}
