package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum_api/internal/logging"
	"github.com/Skotchmaster/forum_api/internal/service"
)

type SearchHTTP struct {
	Svc *service.SearchService
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	res, err := h.Svc.Search(ctx, service.SearchQuery{
		Board: c.QueryParam("board"),
		Cat:   c.QueryParam("cat"),
		Key:   c.QueryParam("key"),
		Page:  c.QueryParam("page"),
	})
	if err != nil {
		return serviceError(l, "search", err)
	}
	return page(c, res)
}
