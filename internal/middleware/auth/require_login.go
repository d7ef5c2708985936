package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum_api/internal/logging"
	"github.com/Skotchmaster/forum_api/internal/service"
	"github.com/Skotchmaster/forum_api/internal/tokens"
)

const claimsKey = "claims"

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*tokens.Claims, error)
}

// RequireLogin accepts the token either bare or with a "Bearer " prefix in Authorization.
func RequireLogin(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("mw", "auth.require_login")

			raw := TokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			claims, err := a.Authenticate(ctx, raw)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrUnauthorized):
					l.Warn("auth_failed", "status", 401, "reason", "missing token")
					return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
				case errors.Is(err, service.ErrInvalidToken):
					l.Warn("auth_failed", "status", 401, "reason", "invalid or revoked token")
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
				}
				l.Error("auth_failed", "status", 500, "reason", "cannot authenticate", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
			}

			c.Set(claimsKey, claims)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_no", claims.No))))
			return next(c)
		}
	}
}

// TokenFromHeader accepts a bare token or "Bearer <token>". A scheme without a
// credential yields "".
func TokenFromHeader(h string) string {
	h = strings.TrimSpace(h)
	scheme, rest, _ := strings.Cut(h, " ")
	if strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return h
}

// CurrentUser returns the claims stored by RequireLogin.
func CurrentUser(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*tokens.Claims)
	return claims, ok && claims != nil
}
