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

type BoardHTTP struct {
	Svc *service.BoardService
}

func (h *BoardHTTP) List(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "board.list", "kind", kind)

		n, valid := util.ParsePage(c.QueryParam("page"))
		if !valid {
			return badRequest(l, "list_boards", "Page No missing")
		}

		res, err := h.Svc.List(ctx, kind, n)
		if err != nil {
			return serviceError(l, "list_boards", err)
		}
		return page(c, res)
	}
}

func (h *BoardHTTP) Get(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "board.get", "kind", kind)

		no, valid := util.ParseUint(c.Param("no"))
		if !valid {
			return badRequest(l, "get_board", "Board No missing")
		}

		board, err := h.Svc.Get(ctx, kind, no)
		if err != nil {
			return serviceError(l, "get_board", err)
		}
		return respond(c, http.StatusOK, board)
	}
}

func (h *BoardHTTP) Create(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "board.create", "kind", kind)

		var req BoardRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(l, "create_board", "invalid body")
		}

		claims, _ := authmw.CurrentUser(c)
		board, err := h.Svc.Create(ctx, kind, claims.No, req.Title, req.Content)
		if err != nil {
			return serviceError(l, "create_board", err)
		}

		l.Info("create_board_success", "board_no", board.No)
		return respond(c, http.StatusCreated, board)
	}
}

func (h *BoardHTTP) Update(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "board.update", "kind", kind)

		no, valid := util.ParseUint(c.Param("no"))
		if !valid {
			return badRequest(l, "update_board", "Board No missing")
		}
		var req BoardRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(l, "update_board", "invalid body")
		}

		claims, _ := authmw.CurrentUser(c)
		board, err := h.Svc.Update(ctx, kind, claims.No, no, req.Title, req.Content)
		if err != nil {
			return serviceError(l, "update_board", err)
		}
		return respond(c, http.StatusOK, board)
	}
}

func (h *BoardHTTP) Delete(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "board.delete", "kind", kind)

		no, valid := util.ParseUint(c.Param("no"))
		if !valid {
			return badRequest(l, "delete_board", "Board No missing")
		}

		claims, _ := authmw.CurrentUser(c)
		if err := h.Svc.Delete(ctx, kind, claims.No, no); err != nil {
			return serviceError(l, "delete_board", err)
		}
		return c.JSON(http.StatusOK, envelope{OK: true})
	}
}

func (h *BoardHTTP) Recent(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "board.recent", "kind", kind)

		boards, err := h.Svc.Recent(ctx, kind)
		if err != nil {
			return serviceError(l, "recent_boards", err)
		}
		return respond(c, http.StatusOK, boards)
	}
}
