package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"outreachDesk/internal/modules/leads/application/port"
	leadsinfra "outreachDesk/internal/modules/leads/infrastructure"
	settings "outreachDesk/internal/modules/settings/domain"
	templatesinfra "outreachDesk/internal/modules/templates/infrastructure"
	"outreachDesk/internal/platform/apiclient"
	"outreachDesk/internal/shared/auth"
	"outreachDesk/internal/shared/httputil"
)

// NewErrorMapper maps backend client, domain and auth errors onto gateway responses.
func NewErrorMapper() *httputil.ErrorMapper {
	return httputil.NewErrorMapper().
		WithDescriber(apiclient.MessageOf).
		WithMappings(
			httputil.ErrorMapping{Error: port.ErrImportJobNotFound, Status: http.StatusNotFound},
			httputil.ErrorMapping{Error: settings.ErrEmptyUpdate, Status: http.StatusBadRequest},
			httputil.ErrorMapping{Error: settings.ErrInvalidUnsubscribeText, Status: http.StatusBadRequest},
			httputil.ErrorMapping{Error: templatesinfra.ErrMissingTemplateID, Status: http.StatusBadRequest},
			httputil.ErrorMapping{Error: leadsinfra.ErrMissingLeadID, Status: http.StatusBadRequest},
			httputil.ErrorMapping{Error: leadsinfra.ErrMissingImageKey, Status: http.StatusBadRequest},
			httputil.ErrorMapping{Error: auth.ErrMissingToken, Status: http.StatusUnauthorized, Message: "missing token"},
			httputil.ErrorMapping{Error: auth.ErrExpiredToken, Status: http.StatusUnauthorized, Message: "token expired"},
			httputil.ErrorMapping{Error: auth.ErrInvalidToken, Status: http.StatusUnauthorized, Message: "invalid token"},
			httputil.ErrorMapping{Error: apiclient.ErrTimeout, Status: http.StatusGatewayTimeout},
			httputil.ErrorMapping{Error: apiclient.ErrUnreachable, Status: http.StatusBadGateway},
			httputil.ErrorMapping{Error: apiclient.ErrNetwork, Status: http.StatusBadGateway},
			httputil.ErrorMapping{Error: apiclient.ErrUnauthorized, Status: http.StatusUnauthorized},
			httputil.ErrorMapping{Error: apiclient.ErrForbidden, Status: http.StatusForbidden},
			httputil.ErrorMapping{Error: apiclient.ErrNotFound, Status: http.StatusNotFound},
			httputil.ErrorMapping{Error: apiclient.ErrServer, Status: http.StatusBadGateway},
			httputil.ErrorMapping{Error: apiclient.ErrHTTPStatus},
			httputil.ErrorMapping{Error: apiclient.ErrApplication, Status: http.StatusUnprocessableEntity},
			httputil.ErrorMapping{Error: apiclient.ErrNoData, Status: http.StatusBadGateway},
			httputil.ErrorMapping{Error: apiclient.ErrDecode, Status: http.StatusBadGateway},
		)
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) fail(c echo.Context, op string, err error) error {
	info := h.errors.Map(err)
	attrs := []any{
		slog.String("op", op),
		slog.Int("status", info.Status),
		slog.String("requestId", c.Response().Header().Get(echo.HeaderXRequestID)),
		slog.Any("error", err),
	}
	if info.Status >= http.StatusInternalServerError {
		h.logger.Error("gateway request failed", attrs...)
	} else {
		h.logger.Warn("gateway request rejected", attrs...)
	}
	return c.JSON(info.Status, errorBody{Error: info.Message})
}
