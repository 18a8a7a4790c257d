package pdf

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"itingen/internal/render"
)

// Chromium converts HTML locally by printing it from a headless Chromium
// instance. It is the offline alternative to the Gotenberg backend; both
// produce the same portrait, background-printing output.
type Chromium struct {
	// ScratchDir is where the page to print is staged; Chromium loads it
	// via file://. Empty means the OS temp directory.
	ScratchDir string

	// Timeout bounds the entire print operation.
	Timeout time.Duration
}

// NewChromium builds a local Chromium converter.
func NewChromium(scratchDir string, timeout time.Duration) *Chromium {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Chromium{ScratchDir: scratchDir, Timeout: timeout}
}

// Convert writes the HTML to a scratch file, navigates headless Chromium to
// it, and prints the page to PDF.
func (c *Chromium) Convert(parentCtx context.Context, html []byte) ([]byte, error) {
	dir := c.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "itingen-print-*.html")
	if err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}

	abs, err := filepath.Abs(tmpName)
	if err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, c.Timeout)
	defer timeoutCancel()

	var pdfBytes []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("file://" + abs),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithLandscape(false).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBytes = buf
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}

	return pdfBytes, nil
}
