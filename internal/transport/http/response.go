package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum_api/internal/logging"
	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/service"
)

type envelope struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type pageResponse struct {
	OK          bool                  `json:"ok"`
	Data        []models.BoardSummary `json:"data"`
	BoardsCount int64                 `json:"boardsCount"`
	AllCounts   int64                 `json:"allCounts"`
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, envelope{OK: true, Data: data})
}

func page(c echo.Context, p *models.Page) error {
	return c.JSON(http.StatusOK, pageResponse{OK: true, Data: p.Boards, BoardsCount: p.BoardsCount, AllCounts: p.AllCounts})
}

// serviceError maps a service error onto an HTTP error and logs it at the matching level.
func serviceError(l *slog.Logger, op string, err error) error {
	var code int
	switch {
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrBadPassword),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrNotAuthor):
		code = http.StatusUnauthorized
	default:
		l.Error(op+"_failed", "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	msg := service.Message(err)
	l.Warn(op+"_failed", "status", code, "reason", msg)
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, op, msg string) error {
	l.Warn(op+"_failed", "status", 400, "reason", msg)
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// ErrorHandler renders every error as {ok:false,message}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal Server Error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Internal != nil {
			logging.FromContext(c.Request().Context()).Debug("http_error_internal", "error", he.Internal)
		}
		switch m := he.Message.(type) {
		case string:
			msg = m
		case nil:
			msg = http.StatusText(code)
		default:
			msg = fmt.Sprint(m)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, envelope{OK: false, Message: msg})
}
