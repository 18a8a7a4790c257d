// Package pdf converts rendered itinerary HTML into PDF bytes, either
// through a remote Gotenberg service or a local headless Chromium.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	appLog "itingen/internal/log"
	"itingen/internal/render"
)

// Converter turns rendered HTML into PDF bytes. One attempt, fail-fast: on
// error the caller keeps serving the HTML result instead.
type Converter interface {
	Convert(ctx context.Context, html []byte) ([]byte, error)
}

// DefaultTimeout bounds a single conversion round-trip.
const DefaultTimeout = 30 * time.Second

// Gotenberg converts via a remote Gotenberg chromium endpoint
// (e.g. http://gotenberg:3000/forms/chromium/convert/html).
type Gotenberg struct {
	URL    string
	client *http.Client
}

// NewGotenberg builds a Gotenberg converter with the given endpoint and
// request timeout.
func NewGotenberg(url string, timeout time.Duration) *Gotenberg {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gotenberg{
		URL:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Convert posts the HTML as a multipart form and returns the PDF bytes.
// The form fields match what the conversion endpoint expects: the document
// as "files"/index.html, portrait orientation, backgrounds printed.
func (g *Gotenberg) Convert(ctx context.Context, html []byte) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="files"; filename="index.html"`)
	header.Set("Content-Type", "text/html")
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}
	if _, err := part.Write(html); err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}
	if err := mw.WriteField("landscape", "false"); err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}
	if err := mw.WriteField("printBackground", "true"); err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, &body)
	if err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	appLog.Info("pdf conversion start", "backend", "gotenberg", "html_bytes", len(html))

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &render.RenderFailure{
			Stage: "pdf",
			Err:   fmt.Errorf("gotenberg returned %s", resp.Status),
		}
	}

	pdfBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &render.RenderFailure{Stage: "pdf", Err: err}
	}

	appLog.Info("pdf conversion done", "backend", "gotenberg", "pdf_bytes", len(pdfBytes))
	return pdfBytes, nil
}
