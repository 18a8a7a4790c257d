package pdf_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itingen/internal/pdf"
	"itingen/internal/render"
)

func TestGotenbergConvert(t *testing.T) {
	const html = "<html><body>Itinerary</body></html>"
	const fakePDF = "%PDF-1.7 fake"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "false", r.FormValue("landscape"))
		assert.Equal(t, "true", r.FormValue("printBackground"))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "index.html", header.Filename)
		assert.Equal(t, "text/html", header.Header.Get("Content-Type"))

		uploaded, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, html, string(uploaded))

		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, fakePDF)
	}))
	defer srv.Close()

	conv := pdf.NewGotenberg(srv.URL, 5*time.Second)
	out, err := conv.Convert(context.Background(), []byte(html))
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(out))
}

func TestGotenbergConvert_Non2xxIsRenderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	conv := pdf.NewGotenberg(srv.URL, 5*time.Second)
	_, err := conv.Convert(context.Background(), []byte("<html></html>"))

	var rf *render.RenderFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "pdf", rf.Stage)
	assert.Contains(t, rf.Error(), "500")
}

func TestGotenbergConvert_UnreachableEndpoint(t *testing.T) {
	// Port 1 is reserved and refuses connections.
	conv := pdf.NewGotenberg("http://127.0.0.1:1/forms/chromium/convert/html", time.Second)
	_, err := conv.Convert(context.Background(), []byte("<html></html>"))

	var rf *render.RenderFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "pdf", rf.Stage)
}
