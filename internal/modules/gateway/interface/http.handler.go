package transport

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	leads "outreachDesk/internal/modules/leads/domain"
	settings "outreachDesk/internal/modules/settings/domain"
	stats "outreachDesk/internal/modules/stats/domain"
	templates "outreachDesk/internal/modules/templates/domain"
	"outreachDesk/internal/shared/auth"
	"outreachDesk/internal/shared/httputil"
)

// Handler serves normalized dashboard models read through from the backend API.
type Handler struct {
	svc       Services
	errors    *httputil.ErrorMapper
	validator *auth.HMACValidator
	logger    *slog.Logger
}

func NewHandler(svc Services, validator *auth.HMACValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, errors: NewErrorMapper(), validator: validator, logger: logger}
}

// Register mounts the /api routes and the /ws/imports stream on e.
func (h *Handler) Register(e *echo.Echo) {
	guard := RequireToken(h.validator, h.errors, h.logger)

	api := e.Group("/api", guard)
	api.GET("/settings", h.GetSettings)
	api.POST("/settings", h.UpdateSettings)
	api.GET("/stats/summary", h.StatsSummary)
	api.GET("/stats/export", h.StatsExport)
	api.GET("/templates", h.ListTemplates)
	api.GET("/templates/:id", h.GetTemplate)
	api.GET("/templates/:id/preview", h.PreviewTemplate)
	api.GET("/templates/:id/variables", h.TemplateVariables)
	api.POST("/templates/:id/testsend", h.SendTestTemplate)
	api.GET("/leads", h.ListLeads)
	api.GET("/leads/:id", h.GetLead)
	api.GET("/assets/image", h.ImageURL)
	api.POST("/imports", h.StartImport)
	api.POST("/imports/preview", h.PreviewImport)
	api.GET("/imports/:jobId", h.GetImportJob)
	api.POST("/imports/:jobId/refetch", h.RefetchImportJob)

	e.GET("/ws/imports/:jobId", h.StreamImportJob, guard)
}

func (h *Handler) GetSettings(c echo.Context) error {
	out, err := h.svc.Settings.Get(c.Request().Context())
	if err != nil {
		return h.fail(c, "settings.get", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var update settings.SettingsUpdate
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid settings payload"})
	}
	out, err := h.svc.Settings.Update(c.Request().Context(), update)
	if err != nil {
		return h.fail(c, "settings.update", err)
	}
	return c.JSON(http.StatusOK, out)
}

func statsQueryFrom(c echo.Context) stats.StatsQuery {
	return stats.StatsQuery{
		From:       firstQuery(c, "from", "from_date"),
		To:         firstQuery(c, "to", "to_date"),
		TemplateID: firstQuery(c, "templateId", "template_id"),
	}
}

func (h *Handler) StatsSummary(c echo.Context) error {
	out, err := h.svc.Stats.Summary(c.Request().Context(), statsQueryFrom(c))
	if err != nil {
		return h.fail(c, "stats.summary", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) StatsExport(c echo.Context) error {
	query := stats.StatsExportQuery{
		StatsQuery: statsQueryFrom(c),
		Scope:      stats.ExportScope(strings.ToLower(strings.TrimSpace(c.QueryParam("scope")))),
		ID:         strings.TrimSpace(c.QueryParam("id")),
	}
	out, err := h.svc.Stats.Export(c.Request().Context(), query)
	if err != nil {
		return h.fail(c, "stats.export", err)
	}
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

func (h *Handler) ListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Templates.List(c.Request().Context()))
}

func (h *Handler) GetTemplate(c echo.Context) error {
	out, err := h.svc.Templates.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "templates.get", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) PreviewTemplate(c echo.Context) error {
	out, err := h.svc.Templates.Preview(c.Request().Context(), c.Param("id"), firstQuery(c, "leadId", "lead_id"))
	if err != nil {
		return h.fail(c, "templates.preview", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) TemplateVariables(c echo.Context) error {
	out, err := h.svc.Templates.Variables(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "templates.variables", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) SendTestTemplate(c echo.Context) error {
	var payload templates.TestSend
	if err := c.Bind(&payload); err != nil || strings.TrimSpace(payload.To) == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "recipient is required"})
	}
	ok, err := h.svc.Templates.SendTest(c.Request().Context(), c.Param("id"), payload)
	if err != nil {
		return h.fail(c, "templates.testsend", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": ok})
}

func (h *Handler) ListLeads(c echo.Context) error {
	out, err := h.svc.Leads.List(c.Request().Context(), leadsQueryFrom(c))
	if err != nil {
		return h.fail(c, "leads.list", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetLead(c echo.Context) error {
	lead, err := h.svc.Leads.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "leads.get", err)
	}
	if lead == nil {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Resource not found."})
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *Handler) ImageURL(c echo.Context) error {
	out, err := h.svc.Leads.ImageURL(c.Request().Context(), c.QueryParam("key"))
	if err != nil {
		return h.fail(c, "leads.image", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": out})
}

func leadsQueryFrom(c echo.Context) leads.LeadsQuery {
	return leads.LeadsQuery{
		Search:    strings.TrimSpace(c.QueryParam("search")),
		TLD:       listQuery(c, "tld"),
		Status:    listQuery(c, "status"),
		Tags:      listQuery(c, "tags"),
		HasImage:  boolQuery(c, "hasImage", "has_image"),
		HasVars:   boolQuery(c, "hasVars", "has_vars"),
		SortBy:    firstQuery(c, "sortBy", "sort_by"),
		SortOrder: firstQuery(c, "sortOrder", "sort_order"),
		Page:      intQuery(c, "page"),
		Limit:     intQuery(c, "limit", "pageSize", "page_size"),
	}
}

func firstQuery(c echo.Context, names ...string) string {
	for _, name := range names {
		if value := strings.TrimSpace(c.QueryParam(name)); value != "" {
			return value
		}
	}
	return ""
}

// listQuery accepts repeated keys as well as comma separated values.
func listQuery(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func boolQuery(c echo.Context, names ...string) *bool {
	raw := firstQuery(c, names...)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func intQuery(c echo.Context, names ...string) int {
	value, err := strconv.Atoi(firstQuery(c, names...))
	if err != nil || value < 0 {
		return 0
	}
	return value
}
