package infrastructure

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreachDesk/internal/modules/templates/domain"
	"outreachDesk/internal/platform/apiclient"
)

func newTemplatesClient(t *testing.T, baseURL string, httpClient *http.Client) *TemplatesHTTPClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := apiclient.New(apiclient.Config{BaseURL: baseURL, Timeout: time.Second}, httpClient, logger)
	return NewTemplatesHTTPClient(api, logger)
}

func TestTemplatesHTTPClient_ListFallsBackWhenBackendDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/api/v1"
	srv.Close()

	list := newTemplatesClient(t, base, nil).List(context.Background())
	assert.Equal(t, domain.TemplateList{Items: []domain.Template{}, Total: 0}, list)
}

func TestTemplatesHTTPClient_Endpoints(t *testing.T) {
	t.Parallel()

	var previewQuery string
	var testSend map[string]any
	e := echo.New()
	e.GET("/api/v1/templates", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"data": map[string]any{"items": []any{map[string]any{"id": "t1", "name": "Intro", "updated_at": "2025-01-01T00:00:00Z"}}}})
	})
	e.GET("/api/v1/templates/:id/preview", func(c echo.Context) error {
		previewQuery = c.Request().URL.RawQuery
		return c.JSON(http.StatusOK, map[string]any{"data": map[string]any{"html": "<p>Hi</p>", "text": "Hi"}})
	})
	e.GET("/api/v1/templates/:id/variables", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"data": []any{map[string]any{"key": "lead.email", "required": true}}})
	})
	e.POST("/api/v1/templates/:id/testsend", func(c echo.Context) error {
		if err := json.NewDecoder(c.Request().Body).Decode(&testSend); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"data": map[string]any{"ok": true}})
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	client := newTemplatesClient(t, srv.URL+"/api/v1", srv.Client())
	ctx := context.Background()

	list := client.List(ctx)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "2025-01-01T00:00:00Z", list.Items[0].UpdatedAt)

	preview, err := client.Preview(ctx, "t1", "lead-9")
	require.NoError(t, err)
	assert.Equal(t, "lead_id=lead-9", previewQuery)
	assert.Equal(t, "Hi", preview.Text)

	_, err = client.Preview(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "", previewQuery)

	variables, err := client.Variables(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Variable{{Key: "lead.email", Required: true, Source: domain.SourceLead}}, variables)

	ok, err := client.SendTest(ctx, "t1", domain.TestSend{To: "me@example.test"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "me@example.test", testSend["to"])

	_, err = client.Get(ctx, " ")
	assert.ErrorIs(t, err, ErrMissingTemplateID)
}
