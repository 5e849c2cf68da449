package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"outreachDesk/internal/modules/leads/application/port"
	"outreachDesk/internal/modules/leads/domain"
	"outreachDesk/internal/platform/apiclient"
	"outreachDesk/internal/shared/normalization"
)

var (
	// ErrMissingLeadID is returned before any request when no lead id is given.
	ErrMissingLeadID = errors.New("lead id is required")
	// ErrMissingImageKey is returned when an image url is requested without a key.
	ErrMissingImageKey = errors.New("image key is required")
)

// LeadsHTTPClient talks to the leads and import endpoints of the backend.
// It implements port.ImportJobFetcher.
type LeadsHTTPClient struct {
	api *apiclient.Client
}

var _ port.ImportJobFetcher = (*LeadsHTTPClient)(nil)

func NewLeadsHTTPClient(api *apiclient.Client) *LeadsHTTPClient {
	return &LeadsHTTPClient{api: api}
}

func (c *LeadsHTTPClient) List(ctx context.Context, query domain.LeadsQuery) (domain.LeadsPage, error) {
	var raw any
	if err := c.api.Get(ctx, "/leads", query.Params(), &raw); err != nil {
		return domain.LeadsPage{}, fmt.Errorf("list leads: %w", err)
	}
	return domain.ToUiLeadsPage(raw), nil
}

// Get returns nil without error when the backend has no such lead.
func (c *LeadsHTTPClient) Get(ctx context.Context, id string) (*domain.Lead, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, ErrMissingLeadID
	}
	var raw any
	if err := c.api.Get(ctx, "/leads/"+url.PathEscape(trimmed), nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead %s: %w", trimmed, err)
	}
	lead := domain.ToUiLead(raw)
	return &lead, nil
}

// Import uploads a CSV together with its column mapping and returns the queued job.
func (c *LeadsHTTPClient) Import(ctx context.Context, fileName string, file io.Reader, mapping domain.ImportMapping) (domain.ImportJob, error) {
	encoded, err := json.Marshal(mapping)
	if err != nil {
		return domain.ImportJob{}, fmt.Errorf("encode import mapping: %w", err)
	}
	var raw any
	upload := apiclient.Upload{
		Fields:   map[string]string{"mapping": string(encoded)},
		FileName: fileName,
		File:     file,
	}
	if err := c.api.Upload(ctx, "/import/leads", upload, &raw); err != nil {
		return domain.ImportJob{}, fmt.Errorf("import leads: %w", err)
	}
	return domain.ToImportJob(raw), nil
}

// PreviewImport asks the backend to parse a CSV without importing it.
func (c *LeadsHTTPClient) PreviewImport(ctx context.Context, fileName string, file io.Reader) (domain.ImportPreview, error) {
	var raw any
	if err := c.api.Upload(ctx, "/import/preview", apiclient.Upload{FileName: fileName, File: file}, &raw); err != nil {
		return domain.ImportPreview{}, fmt.Errorf("preview import: %w", err)
	}
	return domain.ToImportPreview(raw), nil
}

// FetchImportJob maps a missing job onto port.ErrImportJobNotFound.
func (c *LeadsHTTPClient) FetchImportJob(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	trimmed := strings.TrimSpace(jobID)
	if trimmed == "" {
		return nil, port.ErrImportJobNotFound
	}
	var raw any
	if err := c.api.Get(ctx, "/import/jobs/"+url.PathEscape(trimmed), nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", port.ErrImportJobNotFound, trimmed)
		}
		return nil, err
	}
	job := domain.ToImportJob(raw)
	if job.ID == "" {
		job.ID = trimmed
	}
	return &job, nil
}

// ImageURL resolves the public url of a stored lead image.
func (c *LeadsHTTPClient) ImageURL(ctx context.Context, key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", ErrMissingImageKey
	}
	var raw any
	if err := c.api.Get(ctx, "/assets/image-by-key", map[string]any{"key": trimmed}, &raw); err != nil {
		return "", fmt.Errorf("image url %s: %w", trimmed, err)
	}
	return normalization.FirstNonEmpty(
		normalization.AsString(raw, ""),
		normalization.PickString(raw, []string{"url", "signedUrl", "signed_url"}, ""),
	), nil
}

// isNotFound covers both a 404 and the backend's 200 response with {"error": "Not Found"}.
func isNotFound(err error) bool {
	if errors.Is(err, apiclient.ErrNotFound) {
		return true
	}
	return errors.Is(err, apiclient.ErrApplication) &&
		strings.Contains(strings.ToLower(apiclient.MessageOf(err)), "not found")
}
