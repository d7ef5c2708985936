package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum_api/internal/logging"
	authmw "github.com/Skotchmaster/forum_api/internal/middleware/auth"
	"github.com/Skotchmaster/forum_api/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Join(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.join")

	var req JoinRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "join", "invalid body")
	}

	if err := h.Svc.Join(ctx, req.ID, req.Nick, req.Password); err != nil {
		return serviceError(l, "join", err)
	}

	l.Info("join_success")
	return c.JSON(http.StatusCreated, envelope{OK: true})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.ID, req.Password)
	if err != nil {
		return serviceError(l, "login", err)
	}

	l.Info("login_success", "user_no", res.No)
	return respond(c, http.StatusOK, res)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	claims, _ := authmw.CurrentUser(c)
	if err := h.Svc.Logout(ctx, claims); err != nil {
		return serviceError(l, "logout", err)
	}
	return c.JSON(http.StatusOK, envelope{OK: true})
}

func (h *AuthHTTP) Withdraw(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.withdraw")

	claims, _ := authmw.CurrentUser(c)
	if err := h.Svc.Withdraw(ctx, claims); err != nil {
		return serviceError(l, "withdraw", err)
	}
	return c.JSON(http.StatusOK, envelope{OK: true})
}
