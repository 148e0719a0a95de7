package extraction

import (
	"context"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/pagebind/pagebind/internal/telemetry"
)

// AssetSource yields the stored bytes for an asset name.
type AssetSource interface {
	Open(name string) (io.ReadCloser, error)
}

// Dispatcher fans page images out to the extraction service after a
// document has been assembled. It is best-effort enrichment: the
// document is already served to the user, so a failed page submission
// is logged, counted and dropped, and never blocks its siblings.
type Dispatcher struct {
	assets AssetSource
	client *Client
	limit  int
	logger *log.Logger
}

func NewDispatcher(assets AssetSource, client *Client, limit int, logger *log.Logger) *Dispatcher {
	if limit <= 0 {
		limit = 4
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags)
	}
	return &Dispatcher{assets: assets, client: client, limit: limit, logger: logger}
}

// Dispatch submits one extraction request per entry of orderedNames.
// orderedNames must be the same list that produced docName so page
// numbers line up with the document's pages: page i+1 is the i-th
// entry. Submissions are launched in page order but complete
// independently.
func (d *Dispatcher) Dispatch(ctx context.Context, orderedNames []string, docName string) {
	var g errgroup.Group
	g.SetLimit(d.limit)
	for i, name := range orderedNames {
		page := i + 1
		g.Go(func() error {
			d.submitPage(ctx, name, docName, page)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) submitPage(ctx context.Context, name, docName string, page int) {
	img, err := d.assets.Open(name)
	if err != nil {
		telemetry.ExtractionFailed.Inc()
		d.logger.Printf("page %d of %s: %v", page, docName, err)
		return
	}
	defer img.Close()

	telemetry.ExtractionSubmitted.Inc()
	if err := d.client.Submit(ctx, img, name, docName, page); err != nil {
		telemetry.ExtractionFailed.Inc()
		d.logger.Printf("page %d of %s: %v", page, docName, err)
	}
}
