package transport

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"outreachDesk/internal/shared/auth"
	"outreachDesk/internal/shared/httputil"
)

const claimsKey = "claims"

// RequireToken checks inbound dashboard tokens when validator has a secret.
// Without one it lets every request through.
func RequireToken(validator *auth.HMACValidator, mapper *httputil.ErrorMapper, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !validator.Enabled() {
			return next
		}
		return func(c echo.Context) error {
			claims, err := validator.Validate(auth.ExtractToken(c.Request(), "token"))
			if err != nil {
				info := mapper.Map(err)
				logger.Debug("gateway token rejected",
					slog.String("path", c.Path()),
					slog.String("ip", c.RealIP()),
					slog.Any("error", err))
				return c.JSON(info.Status, errorBody{Error: info.Message})
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims RequireToken stored on c, if any.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}
