package assembly

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pagebind/pagebind/internal/assets"
	"github.com/pagebind/pagebind/internal/telemetry"
)

// ErrNoPages is returned when none of the requested assets could be
// embedded, so no document was produced.
var ErrNoPages = errors.New("no pages could be assembled")

// importDesc lays every image out as one full A4 page, centered and
// scaled to fit with margins, aspect ratio preserved.
const importDesc = "form:A4, pos:c, sc:0.9 rel"

// Engine turns an ordered list of asset names into a single PDF with
// one page per asset, in exactly that order.
type Engine struct {
	assets *assets.Store
	dir    string
	imp    *pdfcpu.Import
	logger *log.Logger
}

func NewEngine(store *assets.Store, dir string, logger *log.Logger) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir %s: %w", dir, err)
	}
	imp, err := api.Import(importDesc, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse import description: %w", err)
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ASSEMBLY] ", log.LstdFlags)
	}
	return &Engine{assets: store, dir: dir, imp: imp, logger: logger}, nil
}

// Dir returns the document directory, used for static file serving.
func (e *Engine) Dir() string { return e.dir }

// Assemble builds a new document from orderedNames and persists it
// under a generated name. An asset that cannot be resolved or embedded
// costs exactly its own page: it is logged and skipped, and assembly
// continues with the rest. If every page fails, ErrNoPages is returned
// and no document is left behind.
func (e *Engine) Assemble(ctx context.Context, orderedNames []string) (string, int, error) {
	if len(orderedNames) == 0 {
		return "", 0, ErrNoPages
	}
	docName := fmt.Sprintf("pdf-%d-%s.pdf", time.Now().UnixMilli(), uuid.NewString()[:8])
	outPath := filepath.Join(e.dir, docName)

	pages := 0
	for _, name := range orderedNames {
		if err := ctx.Err(); err != nil {
			_ = os.Remove(outPath)
			return "", 0, err
		}
		imgPath, err := e.assets.Path(name)
		if err != nil {
			telemetry.PagesSkipped.Inc()
			e.logger.Printf("skipping page for %s: %v", name, err)
			continue
		}
		// Each call appends one page to outPath, creating it on the
		// first successful import.
		if err := api.ImportImagesFile([]string{imgPath}, outPath, e.imp, nil); err != nil {
			telemetry.PagesSkipped.Inc()
			e.logger.Printf("skipping page for %s: embed failed: %v", name, err)
			continue
		}
		telemetry.PagesEmbedded.Inc()
		pages++
	}
	if pages == 0 {
		_ = os.Remove(outPath)
		return "", 0, ErrNoPages
	}
	telemetry.DocumentsAssembled.Inc()
	e.logger.Printf("assembled %s (%d/%d pages)", docName, pages, len(orderedNames))
	return docName, pages, nil
}
