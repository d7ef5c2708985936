package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/forum_api/internal/middleware/auth"
	"github.com/Skotchmaster/forum_api/internal/models"
)

type Deps struct {
	Ready       func(ctx context.Context) error
	Auth        authmw.Authenticator
	AuthHTTP    *AuthHTTP
	UserHTTP    *UserHTTP
	BoardHTTP   *BoardHTTP
	CommentHTTP *CommentHTTP
	SearchHTTP  *SearchHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	requireLogin := authmw.RequireLogin(d.Auth)
	api := e.Group("/api")

	authG := api.Group("/auth")
	authG.POST("/local/join", d.AuthHTTP.Join)
	authG.POST("/login", d.AuthHTTP.Login)
	authG.POST("/local/withdraw", d.AuthHTTP.Withdraw, requireLogin)
	authG.POST("/logout", d.AuthHTTP.Logout, requireLogin)

	users := api.Group("/users")
	users.GET("", d.UserHTTP.List)
	users.GET("/:id", d.UserHTTP.Get)
	users.POST("", d.UserHTTP.Info, requireLogin)
	users.PATCH("", d.UserHTTP.UpdateNick, requireLogin)

	for _, kind := range []models.Kind{models.KindFree, models.KindQnA} {
		board := api.Group("/board/" + string(kind))
		board.GET("", d.BoardHTTP.List(kind))
		board.GET("/:no", d.BoardHTTP.Get(kind))
		board.POST("", d.BoardHTTP.Create(kind), requireLogin)
		board.PUT("/:no", d.BoardHTTP.Update(kind), requireLogin)
		board.DELETE("/:no", d.BoardHTTP.Delete(kind), requireLogin)

		comment := api.Group("/comment/" + string(kind))
		comment.GET("/:no", d.CommentHTTP.Get(kind))
		comment.POST("", d.CommentHTTP.Create(kind), requireLogin)
		comment.PATCH("/:no", d.CommentHTTP.Update(kind), requireLogin)
		comment.DELETE("/:no", d.CommentHTTP.Delete(kind), requireLogin)

		api.GET("/recent/"+string(kind), d.BoardHTTP.Recent(kind))
	}

	api.GET("/search", d.SearchHTTP.Search)
}
