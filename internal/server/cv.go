package server

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pagebind/pagebind/internal/extraction"
)

// CVHandler relays CV-analysis uploads to the extraction service,
// which answers with an is-it-a-CV verdict, the extracted text and a
// section score.
type CVHandler struct {
	Extractor *extraction.Client
	Logger    *log.Logger
}

func (h *CVHandler) Register(g *echo.Group) {
	g.POST("/process", h.process)
}

func (h *CVHandler) process(c echo.Context) error {
	fh, err := c.FormFile("cv")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file uploaded")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	verdict, err := h.Extractor.ProcessCV(c.Request().Context(), src, fh.Filename)
	if err != nil {
		h.Logger.Printf("cv analysis for %s: %v", fh.Filename, err)
		return echo.NewHTTPError(http.StatusBadGateway, "error processing cv")
	}
	return c.JSONBlob(http.StatusOK, verdict)
}
