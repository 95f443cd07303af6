package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/vendaslab/comercial/internal/app"
	"go.uber.org/zap"
)

const (
	// ContextKeyDB carries the gorm handle injected per request
	ContextKeyDB = "comercial_db"
	// ContextKeyApp carries the application context
	ContextKeyApp = "comercial_app"
)

// WebServer wraps the echo instance and the route groups
type WebServer struct {
	root   *echo.Echo
	pub    *echo.Group
	api    *echo.Group
	appctx app.AppContext
}

var server *WebServer

// Init builds the web server singleton. Call before registering routes.
func Init(appctx app.AppContext) *WebServer {
	server = &WebServer{appctx: appctx}
	server.initRouter()
	return server
}

// Instance returns the initialized web server
func Instance() *WebServer {
	return server
}

func (s *WebServer) initRouter() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(s.injectMiddleware)
	e.Use(s.loggerMiddleware)

	s.root = e
	s.pub = e.Group("/api/v1")
	s.api = e.Group("/api/v1", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(s.appctx.Config().Web.JwtSecret),
	}))
}

// injectMiddleware makes the database handle and application context
// available to every handler.
func (s *WebServer) injectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ContextKeyDB, s.appctx.DB())
		c.Set(ContextKeyApp, s.appctx)
		return next(c)
	}
}

func (s *WebServer) loggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		zap.L().Debug("http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote", c.RealIP()))
		return err
	}
}

// RequireAdmin restricts a route to operators carrying the admin role
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if RoleFromContext(c) != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin privilege required")
		}
		return next(c)
	}
}

// PubPOST registers an unauthenticated endpoint under /api/v1
func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}

// ApiGET registers an authenticated GET endpoint under /api/v1
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

// ApiPOST registers an authenticated POST endpoint under /api/v1
func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

// ApiPUT registers an authenticated PUT endpoint under /api/v1
func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

// ApiDELETE registers an authenticated DELETE endpoint under /api/v1
func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// Start listens on the configured address and blocks
func (s *WebServer) Start() error {
	cfg := s.appctx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("starting web server", zap.String("addr", addr))
	return s.root.Start(addr)
}

// Shutdown stops the server gracefully
func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}
