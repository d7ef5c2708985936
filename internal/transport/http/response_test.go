package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/forum_api/internal/logging"
	"github.com/Skotchmaster/forum_api/internal/service"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{name: "http error", err: echo.NewHTTPError(http.StatusConflict, "ID exists!"), code: http.StatusConflict, body: `{"ok":false,"message":"ID exists!"}`},
		{name: "route not found", err: echo.ErrNotFound, code: http.StatusNotFound, body: `{"ok":false,"message":"Not Found"}`},
		{name: "plain error", err: errors.New("db exploded"), code: http.StatusInternalServerError, body: `{"ok":false,"message":"Internal Server Error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestServiceError_Mapping(t *testing.T) {
	l := logging.New("error")

	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{err: &service.Error{Kind: service.ErrValidation, Message: "TITLE missing"}, code: 400, msg: "TITLE missing"},
		{err: &service.Error{Kind: service.ErrConflict, Message: "NICK exists!"}, code: 409, msg: "NICK exists!"},
		{err: &service.Error{Kind: service.ErrNotFound, Message: "Not Found"}, code: 404, msg: "Not Found"},
		{err: &service.Error{Kind: service.ErrNotAuthor, Message: "No Author"}, code: 401, msg: "No Author"},
		{err: &service.Error{Kind: service.ErrBadPassword, Message: "Wrong Password"}, code: 401, msg: "Wrong Password"},
		{err: errors.New("boom"), code: 500, msg: "Internal Server Error"},
	}

	for _, tt := range tests {
		he, ok := serviceError(l, "op", tt.err).(*echo.HTTPError)
		if assert.True(t, ok) {
			assert.Equal(t, tt.code, he.Code)
			assert.Equal(t, tt.msg, he.Message)
		}
	}
}
