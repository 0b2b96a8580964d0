package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
	"go.uber.org/zap"
)

const (
	apiPrefix     = "/api"
	AppContextKey = "appctx"
)

var server *AdminServer

// AdminServer serves the storefront JSON API.
type AdminServer struct {
	root *echo.Echo
	api  *echo.Group
	addr string
}

// Init builds the global server. appCtx is made available to handlers
// under AppContextKey.
func Init(cfg *config.AppConfig, appCtx interface{}) {
	server = NewAdminServer(cfg, appCtx)
}

func NewAdminServer(cfg *config.AppConfig, appCtx interface{}) *AdminServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))
	e.Use(requestLogger(cfg.System.Debug))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})
	return &AdminServer{
		root: e,
		api:  e.Group(apiPrefix),
		addr: fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
	}
}

func requestLogger(debug bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			if status >= http.StatusInternalServerError || debug {
				zap.L().Info("api request",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.Int("status", status),
					zap.Duration("took", time.Since(start)))
			}
			return nil
		}
	}
}

// Handler exposes the router, mainly for tests.
func Handler() http.Handler {
	return server.root
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// Listen serves until Shutdown is called.
func Listen() error {
	zap.S().Infof("storefront api listening on %s", server.addr)
	err := server.root.Start(server.addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func Shutdown(ctx context.Context) error {
	return server.root.Shutdown(ctx)
}
