package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billing/backend/internal/application/invoice"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 30 * time.Second
	marginInches         = 0.4
)

var _ invoice.PDFRenderer = (*ChromedpRenderer)(nil)

// ChromedpRenderer prints invoices to PDF in headless Chrome. Each render
// gets a fresh browser context from the shared allocator.
type ChromedpRenderer struct {
	engine      *TemplateEngine
	paper       PaperSize
	orientation Orientation
	timeout     time.Duration
	logger      *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer starts an allocator for a local Chrome, or attaches
// to cfg.RemoteURL when set. The browser itself is launched lazily on the
// first render.
func NewChromedpRenderer(cfg config.PrintingConfig, engine *TemplateEngine, logger *zap.Logger) (*ChromedpRenderer, error) {
	if engine == nil {
		return nil, errors.New("template engine is required")
	}

	r := &ChromedpRenderer{
		engine:      engine,
		paper:       ParsePaperSize(cfg.PaperSize),
		orientation: ParseOrientation(cfg.Orientation),
		timeout:     cfg.Timeout,
		logger:      logger,
	}
	if r.timeout <= 0 {
		r.timeout = defaultRenderTimeout
	}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r, nil
}

// RenderInvoice lays out doc with the template engine and prints it
func (r *ChromedpRenderer) RenderInvoice(ctx context.Context, doc *invoice.PrintDocument) ([]byte, error) {
	html, err := r.engine.Render(doc)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pdf, err := r.print(ctx, html)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Invoice PDF rendered",
		zap.String("invoice_number", doc.Invoice.InvoiceNumber),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

func (r *ChromedpRenderer) print(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}))
	defer tabCancel()

	// the tab must follow the caller's deadline as well as its own
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	params := r.printParams()
	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = params.Do(ctx)
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("PDF rendering timed out after %v: %w", r.timeout, err)
		}
		return nil, fmt.Errorf("PDF rendering failed: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("PDF rendering produced no output")
	}
	return pdf, nil
}

func (r *ChromedpRenderer) printParams() *page.PrintToPDFParams {
	width, height := r.paper.Inches()
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(width).
		WithPaperHeight(height).
		WithLandscape(r.orientation == OrientationLandscape).
		WithMarginTop(marginInches).
		WithMarginBottom(marginInches).
		WithMarginLeft(marginInches).
		WithMarginRight(marginInches).
		WithPreferCSSPageSize(false)
}

// Close shuts the browser down
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
