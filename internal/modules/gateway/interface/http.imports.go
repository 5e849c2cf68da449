package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	leads "outreachDesk/internal/modules/leads/domain"
	"outreachDesk/internal/modules/leads/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const streamBuffer = 16

var errUnsupportedAction = errors.New("unsupported action")

func (h *Handler) GetImportJob(c echo.Context) error {
	job, err := h.svc.Leads.FetchImportJob(c.Request().Context(), c.Param("jobId"))
	if err != nil {
		return h.fail(c, "imports.get", err)
	}
	return c.JSON(http.StatusOK, job)
}

func (h *Handler) RefetchImportJob(c echo.Context) error {
	watched, err := h.svc.Watchers.Refetch(c.Request().Context(), c.Param("jobId"))
	if err != nil {
		return h.fail(c, "imports.refetch", err)
	}
	return c.JSON(http.StatusAccepted, map[string]bool{"watched": watched})
}

// StartImport forwards a CSV upload (form fields "file" and "mapping") to the backend.
func (h *Handler) StartImport(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "file is required"})
	}
	mapping := leads.ImportMapping{}
	if raw := strings.TrimSpace(c.FormValue("mapping")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "mapping must be a JSON object"})
		}
	}
	file, err := header.Open()
	if err != nil {
		return h.fail(c, "imports.start", err)
	}
	defer file.Close()

	job, err := h.svc.Leads.Import(c.Request().Context(), header.Filename, file, mapping)
	if err != nil {
		return h.fail(c, "imports.start", err)
	}
	h.logger.Info("lead import queued", slog.String("jobId", job.ID), slog.String("file", header.Filename))
	return c.JSON(http.StatusAccepted, job)
}

func (h *Handler) PreviewImport(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "file is required"})
	}
	file, err := header.Open()
	if err != nil {
		return h.fail(c, "imports.preview", err)
	}
	defer file.Close()

	preview, err := h.svc.Leads.PreviewImport(c.Request().Context(), header.Filename, file)
	if err != nil {
		return h.fail(c, "imports.preview", err)
	}
	return c.JSON(http.StatusOK, preview)
}

// StreamImportJob upgrades to a websocket that receives poller snapshots of the
// job until it settles or the watcher disconnects. Watchers of the same job share a poller.
func (h *Handler) StreamImportJob(c echo.Context) error {
	jobID := strings.TrimSpace(c.Param("jobId"))
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "missing job id"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("import stream upgrade failed", slog.String("jobId", jobID), slog.Any("error", err))
		return err
	}

	poller, release := h.svc.Watchers.Acquire(jobID)
	updates, unsubscribe := poller.Subscribe()

	// The request context ends with the handler; commands need their own.
	cmdCtx, cancel := context.WithCancel(context.Background())
	client := infrastructure.NewImportStreamClient(conn, jobID, streamBuffer, func(ctx context.Context, action string) error {
		switch action {
		case "refetch":
			return poller.Refetch(ctx)
		default:
			return errUnsupportedAction
		}
	}, h.logger)

	go client.WritePump()
	go client.ReadPump(cmdCtx)
	go func() {
		defer release()
		defer unsubscribe()
		defer cancel()
		client.Forward(updates)
		<-client.Done()
	}()

	h.logger.Info("import stream connected",
		slog.String("jobId", jobID),
		slog.String("ip", c.RealIP()),
		slog.String("requestId", c.Response().Header().Get(echo.HeaderXRequestID)))
	return nil
}

