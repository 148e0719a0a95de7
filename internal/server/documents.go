package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pagebind/pagebind/internal/assembly"
	"github.com/pagebind/pagebind/internal/extraction"
	"github.com/pagebind/pagebind/internal/telemetry"
)

type DocumentsHandler struct {
	Engine     *assembly.Engine
	Dispatcher *extraction.Dispatcher
	Extractor  *extraction.Client
	Logger     *log.Logger
}

func (h *DocumentsHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("/:name/search", h.search)
}

// create assembles a document from the posted asset order. The body is
// the assembly request: an explicit JSON array of asset names whose
// order alone decides page order. It may reorder or subset what was
// uploaded and it leaves the workspace manifest untouched.
func (h *DocumentsHandler) create(c echo.Context) error {
	var names []string
	if err := c.Bind(&names); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "json array of asset names required")
	}
	if len(names) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one asset name required")
	}

	docName, pages, err := h.Engine.Assemble(c.Request().Context(), names)
	if errors.Is(err, assembly.ErrNoPages) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "none of the requested assets could be embedded")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Best-effort enrichment: the document is already complete, so the
	// extraction fan-out runs detached from this request.
	go h.Dispatcher.Dispatch(context.Background(), names, docName)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"path":  "/pdf/" + docName,
		"pages": pages,
	})
}

// search relays a (document, query) pair to the extraction service.
// No matches is an empty result list; an unreachable or misbehaving
// service is a distinct 502 so the client never renders it as "no
// matches".
func (h *DocumentsHandler) search(c echo.Context) error {
	docName := c.Param("name")
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q required")
	}
	matches, err := h.Extractor.Search(c.Request().Context(), docName, query)
	if err != nil {
		telemetry.SearchErrors.Inc()
		h.Logger.Printf("search %s for %q: %v", docName, query, err)
		return echo.NewHTTPError(http.StatusBadGateway, "error performing search")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": matches})
}
