package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pagebind/pagebind/internal/assets"
	"github.com/pagebind/pagebind/internal/manifest"
)

// uploadField is the multipart field carrying image files, and the
// prefix of every generated asset name.
const uploadField = "images"

type WorkspaceHandler struct {
	Assets   *assets.Store
	Manifest manifest.Store
	Logger   *log.Logger
}

func (h *WorkspaceHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("/uploads", h.upload)
	g.POST("/reset", h.reset)
}

// upload stores each posted image under a generated name and appends
// the names to the workspace manifest in posted order.
func (h *WorkspaceHandler) upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form required")
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no images uploaded")
	}
	// Validate the whole batch before storing anything.
	for _, fh := range files {
		if _, ok := assets.AllowedExt(fh.Filename); !ok {
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("only .jpg, .jpeg and .png format allowed, got %q", fh.Filename))
		}
	}

	names := make([]string, 0, len(files))
	for _, fh := range files {
		ext, _ := assets.AllowedExt(fh.Filename)
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		name, err := h.Assets.Save(uploadField, ext, src)
		_ = src.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		names = append(names, name)
	}

	if err := h.Manifest.Append(c.Request().Context(), workspaceID(c), names); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"images": names})
}

func (h *WorkspaceHandler) list(c echo.Context) error {
	names, initialized, err := h.Manifest.Read(c.Request().Context(), workspaceID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"initialized": initialized,
		"images":      names,
	})
}

func (h *WorkspaceHandler) reset(c echo.Context) error {
	if err := h.Manifest.Clear(c.Request().Context(), workspaceID(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
