package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreachDesk/internal/modules/leads/application/port"
	"outreachDesk/internal/modules/leads/application/usecase"
	"outreachDesk/internal/modules/leads/domain"
	"outreachDesk/internal/platform/apiclient"
)

func newLeadsClient(t *testing.T, register func(e *echo.Echo)) *LeadsHTTPClient {
	t.Helper()
	e := echo.New()
	register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := apiclient.New(apiclient.Config{Token: "t", BaseURL: srv.URL + "/api/v1", Timeout: time.Second}, srv.Client(), logger)
	return NewLeadsHTTPClient(api)
}

func TestLeadsHTTPClient_ListSendsBackendParams(t *testing.T) {
	t.Parallel()

	var query string
	client := newLeadsClient(t, func(e *echo.Echo) {
		e.GET("/api/v1/leads", func(c echo.Context) error {
			query = c.Request().URL.RawQuery
			return c.JSON(http.StatusOK, map[string]any{"data": map[string]any{
				"items": []any{map[string]any{"id": "l1", "email": "a@x.test", "company": "X"}},
				"total": 1,
			}})
		})
	})

	page, err := client.List(context.Background(), domain.LeadsQuery{Tags: []string{"vip"}})
	require.NoError(t, err)
	assert.Equal(t, "page=1&page_size=25&tags=vip", query)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "X", *page.Items[0].CompanyName)
}

func TestLeadsHTTPClient_GetReturnsNilWhenMissing(t *testing.T) {
	t.Parallel()

	client := newLeadsClient(t, func(e *echo.Echo) {
		e.GET("/api/v1/leads/envelope", func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]any{"data": nil, "error": "Not Found"})
		})
		e.GET("/api/v1/leads/status", func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, map[string]any{"detail": "missing"})
		})
		e.GET("/api/v1/leads/broken", func(c echo.Context) error {
			return c.JSON(http.StatusInternalServerError, map[string]any{})
		})
	})

	for _, id := range []string{"envelope", "status"} {
		lead, err := client.Get(context.Background(), id)
		require.NoError(t, err, id)
		assert.Nil(t, lead, id)
	}

	_, err := client.Get(context.Background(), "broken")
	assert.ErrorIs(t, err, apiclient.ErrServer)

	_, err = client.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingLeadID)
}

func TestLeadsHTTPClient_FetchImportJob(t *testing.T) {
	t.Parallel()

	client := newLeadsClient(t, func(e *echo.Echo) {
		e.GET("/api/v1/import/jobs/:id", func(c echo.Context) error {
			if c.Param("id") == "gone" {
				return c.JSON(http.StatusOK, map[string]any{"data": nil, "error": "Not Found"})
			}
			return c.JSON(http.StatusOK, map[string]any{"data": map[string]any{
				"status": "running", "progress": 37.4, "inserted": 3,
			}})
		})
	})

	job, err := client.FetchImportJob(context.Background(), "job-7")
	require.NoError(t, err)
	assert.Equal(t, "job-7", job.ID)
	assert.Equal(t, domain.JobRunning, job.Status)
	assert.Equal(t, 37, job.Progress)

	_, err = client.FetchImportJob(context.Background(), "gone")
	assert.True(t, errors.Is(err, port.ErrImportJobNotFound))
}

func TestLeadsHTTPClient_PollerRetriesAfterMissingJob(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newLeadsClient(t, func(e *echo.Echo) {
		e.GET("/api/v1/import/jobs/:id", func(c echo.Context) error {
			if calls.Add(1) == 2 {
				return c.JSON(http.StatusNotFound, map[string]any{"detail": "missing"})
			}
			return c.JSON(http.StatusOK, map[string]any{"data": map[string]any{"status": "running", "progress": 50}})
		})
	})
	poller := usecase.NewImportPoller(client, usecase.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	require.NoError(t, poller.Track(ctx, "j1"))
	assert.ErrorIs(t, poller.Tick(ctx), port.ErrImportJobNotFound)

	snap := poller.Snapshot()
	assert.Equal(t, usecase.PollerPolling, snap.State)
	assert.True(t, snap.NotFound)
	assert.NotEmpty(t, snap.Error)
	require.NotNil(t, snap.Job)
	assert.Equal(t, domain.JobRunning, snap.Job.Status)

	require.NoError(t, poller.Tick(ctx))
	require.NoError(t, poller.Tick(ctx))
	assert.Equal(t, int32(4), calls.Load())
	assert.False(t, poller.Snapshot().NotFound)
}

func TestLeadsHTTPClient_ImportUploadsFileAndMapping(t *testing.T) {
	t.Parallel()

	var mapping, fileName string
	client := newLeadsClient(t, func(e *echo.Echo) {
		e.POST("/api/v1/import/leads", func(c echo.Context) error {
			mapping = c.FormValue("mapping")
			fh, err := c.FormFile("file")
			if err != nil {
				return err
			}
			fileName = fh.Filename
			return c.JSON(http.StatusOK, map[string]any{"data": map[string]any{"id": "job-1", "status": "queued"}})
		})
	})

	target := "email"
	job, err := client.Import(context.Background(), "leads.csv", strings.NewReader("Email\na@x.test\n"), domain.ImportMapping{"Email": &target, "Notes": nil})
	require.NoError(t, err)

	assert.Equal(t, "leads.csv", fileName)
	assert.JSONEq(t, `{"Email":"email","Notes":null}`, mapping)
	assert.Equal(t, domain.JobPending, job.Status)
}

func TestLeadsHTTPClient_ImageURL(t *testing.T) {
	t.Parallel()

	client := newLeadsClient(t, func(e *echo.Echo) {
		e.GET("/api/v1/assets/image-by-key", func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]any{"data": "https://cdn.example.test/" + c.QueryParam("key")})
		})
	})

	url, err := client.ImageURL(context.Background(), "img/1.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.test/img/1.png", url)

	_, err = client.ImageURL(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingImageKey)
}
