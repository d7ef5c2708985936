package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum_api/internal/logging"
	authmw "github.com/Skotchmaster/forum_api/internal/middleware/auth"
	"github.com/Skotchmaster/forum_api/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

// List keeps the legacy bare-array body.
func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		return serviceError(l, "list_users", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	user, err := h.Svc.GetByLoginID(ctx, c.Param("id"))
	if err != nil {
		return serviceError(l, "get_user", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Info(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.info")

	claims, _ := authmw.CurrentUser(c)
	info, err := h.Svc.Info(ctx, claims.No)
	if err != nil {
		return serviceError(l, "user_info", err)
	}
	return respond(c, http.StatusOK, info)
}

func (h *UserHTTP) UpdateNick(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_nick")

	var req NickRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_nick", "invalid body")
	}

	claims, _ := authmw.CurrentUser(c)
	if err := h.Svc.UpdateNick(ctx, claims.No, req.Nick); err != nil {
		return serviceError(l, "update_nick", err)
	}
	return respond(c, http.StatusOK, NickRequest{Nick: req.Nick})
}
