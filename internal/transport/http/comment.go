package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum_api/internal/logging"
	authmw "github.com/Skotchmaster/forum_api/internal/middleware/auth"
	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/service"
	"github.com/Skotchmaster/forum_api/internal/util"
)

type CommentHTTP struct {
	Svc *service.CommentService
}

func (h *CommentHTTP) Get(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "comment.get", "kind", kind)

		no, valid := util.ParseUint(c.Param("no"))
		if !valid {
			return badRequest(l, "get_comment", "Comment No missing")
		}

		comment, err := h.Svc.Get(ctx, kind, no)
		if err != nil {
			return serviceError(l, "get_comment", err)
		}
		return respond(c, http.StatusOK, comment)
	}
}

func (h *CommentHTTP) Create(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "comment.create", "kind", kind)

		var req CommentRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(l, "create_comment", "invalid body")
		}

		claims, _ := authmw.CurrentUser(c)
		comment, err := h.Svc.Create(ctx, kind, claims.No, req.BoardNo, req.Content)
		if err != nil {
			return serviceError(l, "create_comment", err)
		}
		return respond(c, http.StatusCreated, comment)
	}
}

func (h *CommentHTTP) Update(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "comment.update", "kind", kind)

		no, valid := util.ParseUint(c.Param("no"))
		if !valid {
			return badRequest(l, "update_comment", "Comment No missing")
		}
		var req CommentRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(l, "update_comment", "invalid body")
		}

		claims, _ := authmw.CurrentUser(c)
		comment, err := h.Svc.Update(ctx, kind, claims.No, no, req.Content)
		if err != nil {
			return serviceError(l, "update_comment", err)
		}
		return respond(c, http.StatusOK, comment)
	}
}

func (h *CommentHTTP) Delete(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "comment.delete", "kind", kind)

		no, valid := util.ParseUint(c.Param("no"))
		if !valid {
			return badRequest(l, "delete_comment", "Comment No missing")
		}

		claims, _ := authmw.CurrentUser(c)
		if err := h.Svc.Delete(ctx, kind, claims.No, no); err != nil {
			return serviceError(l, "delete_comment", err)
		}
		return c.JSON(http.StatusOK, envelope{OK: true})
	}
}
