package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pagebind/pagebind/config"
	"github.com/pagebind/pagebind/internal/assembly"
	"github.com/pagebind/pagebind/internal/assets"
	"github.com/pagebind/pagebind/internal/extraction"
	"github.com/pagebind/pagebind/internal/manifest"
	"github.com/pagebind/pagebind/internal/manifest/inmemory"
	redis_manifest "github.com/pagebind/pagebind/internal/manifest/redis"
)

const workspaceCookie = "workspace_id"

func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	assetStore, err := assets.New(cfg.Storage.ImageDir)
	if err != nil {
		return err
	}
	engine, err := assembly.NewEngine(assetStore, cfg.Storage.PDFDir, log.New(log.Writer(), "[ASSEMBLY] ", log.LstdFlags))
	if err != nil {
		return err
	}
	extractor := extraction.NewClient(cfg.Extractor.BaseURL, cfg.Extractor.Timeout)
	dispatcher := extraction.NewDispatcher(assetStore, extractor, cfg.Extractor.MaxInFlight,
		log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags))

	manifests, err := newManifestStore(cfg)
	if err != nil {
		return err
	}

	// Generated artifacts are plain static resources the moment their
	// names are returned.
	e.Static("/images", assetStore.Dir())
	e.Static("/pdf", engine.Dir())

	api := e.Group("/api", withWorkspace)

	wh := &WorkspaceHandler{Assets: assetStore, Manifest: manifests, Logger: baseLogger}
	wh.Register(api.Group("/workspace"))

	dh := &DocumentsHandler{Engine: engine, Dispatcher: dispatcher, Extractor: extractor, Logger: baseLogger}
	dh.Register(api.Group("/documents"))

	ch := &CVHandler{Extractor: extractor, Logger: baseLogger}
	ch.Register(api.Group("/cv"))

	baseLogger.Printf("listening on %s", cfg.Server.Address)
	return e.Start(cfg.Server.Address)
}

func newManifestStore(cfg *config.Config) (manifest.Store, error) {
	switch cfg.Workspace.Store {
	case "", "inmemory":
		return inmemory.NewInMemoryManifestStore(), nil
	case "redis":
		addr := fmt.Sprintf("%s:%s", cfg.Databases.Redis.Host, cfg.Databases.Redis.Port)
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Databases.Redis.Pass, DB: cfg.Databases.Redis.DB})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed (%s): %w", addr, err)
		}
		return redis_manifest.NewRedisManifestStore(rdb, cfg.Workspace.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported workspace store %q", cfg.Workspace.Store)
	}
}

// withWorkspace pins every request to a workspace, minting a cookie on
// first contact. There is no auth: a workspace is exactly one browser
// session. Only values we minted ourselves (UUIDs) are honored, so a
// forged cookie cannot name arbitrary store keys.
func withWorkspace(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cookie, err := c.Cookie(workspaceCookie); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				c.Set(workspaceCookie, cookie.Value)
				return next(c)
			}
		}
		id := uuid.NewString()
		c.SetCookie(&http.Cookie{Name: workspaceCookie, Value: id, Path: "/", HttpOnly: true})
		c.Set(workspaceCookie, id)
		return next(c)
	}
}

func workspaceID(c echo.Context) string {
	id, _ := c.Get(workspaceCookie).(string)
	return id
}
