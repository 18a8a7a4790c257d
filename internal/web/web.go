// Package web serves the upload form and render API: a trip export goes in,
// the rendered itinerary (HTML, PDF, ICS, or CSV) comes back. Nothing about
// a request is persisted beyond the response.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"itingen/internal/config"
	"itingen/internal/export"
	"itingen/internal/itinerary"
	appLog "itingen/internal/log"
	"itingen/internal/metrics"
	"itingen/internal/pdf"
	"itingen/internal/render"
	"itingen/internal/trip"
)

// maxUploadBytes bounds the multipart upload size (trip export + template).
const maxUploadBytes = 32 << 20

//go:embed templates/form.html
var embeddedUI embed.FS

// commonTimezones populates the form's manual override select. "auto" keeps
// the trip's own destination timezone.
var commonTimezones = []string{
	"UTC",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Europe/Madrid",
	"Asia/Tokyo",
	"Asia/Seoul",
	"Asia/Singapore",
	"Australia/Sydney",
	"Pacific/Auckland",
}

// Server provides the upload UI and the render/preview API.
type Server struct {
	cfg       *config.Config
	creds     *Credentials
	converter pdf.Converter
	tpl       *template.Template
	formTpl   *template.Template
	router    chi.Router
}

// NewServer constructs a Server from config: template (configured override
// or embedded default), auth credentials, and the configured PDF backend.
func NewServer(cfg *config.Config) (*Server, error) {
	tpl, err := render.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	formTpl, err := template.ParseFS(embeddedUI, "templates/form.html")
	if err != nil {
		return nil, err
	}

	creds, err := LoadCredentials(cfg.AuthFile)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.PDF.TimeoutSeconds) * time.Second
	var converter pdf.Converter
	switch cfg.PDF.Backend {
	case config.PDFBackendChromium:
		converter = pdf.NewChromium(cfg.ScratchDir, timeout)
	default:
		converter = pdf.NewGotenberg(cfg.PDF.GotenbergURL, timeout)
	}

	s := &Server{
		cfg:       cfg,
		creds:     creds,
		converter: converter,
		tpl:       tpl,
		formTpl:   formTpl,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/", s.handleForm)
	r.Post("/render", s.handleRender)
	r.Post("/api/itinerary", s.handleItineraryJSON)

	s.router = r
}

// Handler returns the server's http.Handler, wrapped with basic auth when
// credentials are configured.
func (s *Server) Handler() http.Handler {
	return s.basicAuthMiddleware(s.router)
}

// Start runs the HTTP server and the scratch sweeper until ctx is canceled,
// then shuts down gracefully.
func Start(ctx context.Context, cfg *config.Config) error {
	s, err := NewServer(cfg)
	if err != nil {
		return err
	}

	if _, err := StartSweeper(ctx, cfg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestLogger logs each request with method, path, status, duration, and
// the chi request ID.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		appLog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// formData feeds the upload form template.
type formData struct {
	Timezones []string
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.formTpl.Execute(w, formData{Timezones: commonTimezones}); err != nil {
		appLog.Error("failed to render upload form", err)
	}
}

// handleRender runs the full pipeline on the uploaded trip export and
// returns the requested artifact as an attachment.
//
// Form fields: trip_json (required file), template_html (optional file),
// timezone ("auto" or an IANA id), format (html|pdf|ics|csv).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	jobID := uuid.NewString()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	tripFile, _, err := r.FormFile("trip_json")
	if err != nil {
		http.Error(w, "missing trip_json file", http.StatusBadRequest)
		return
	}
	defer tripFile.Close()

	doc, err := trip.DecodeDocument(tripFile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	// Optional uploaded template overrides the server's configured one for
	// this request only.
	tpl := s.tpl
	if tplFile, _, ferr := r.FormFile("template_html"); ferr == nil {
		defer tplFile.Close()
		src, rerr := io.ReadAll(tplFile)
		if rerr != nil {
			http.Error(w, "failed to read template upload", http.StatusBadRequest)
			return
		}
		tpl, err = render.ParseTemplate(jobID, src)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	timezone := r.FormValue("timezone")
	if timezone == "auto" {
		timezone = ""
	}

	format := r.FormValue("format")
	if format == "" {
		if r.FormValue("generate_pdf") == "on" {
			format = "pdf"
		} else {
			format = "html"
		}
	}

	res, err := itinerary.GenerateIn(doc, timezone, s.cfg.Timezone)
	if err != nil {
		metrics.RendersTotal.WithLabelValues(format, "error").Inc()
		var dfe *trip.DataFormatError
		if errors.As(err, &dfe) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "failed to generate itinerary", http.StatusInternalServerError)
		return
	}
	metrics.RecordWarningsTotal.Add(float64(len(res.Warnings)))

	w.Header().Set("X-Itinerary-Warnings", strconv.Itoa(len(res.Warnings)))

	switch format {
	case "html", "pdf":
		htmlBytes, rerr := render.HTML(tpl, render.NewContext(res))
		if rerr != nil {
			metrics.RendersTotal.WithLabelValues(format, "error").Inc()
			http.Error(w, rerr.Error(), http.StatusInternalServerError)
			return
		}
		if format == "html" {
			metrics.RendersTotal.WithLabelValues(format, "ok").Inc()
			serveAttachment(w, "itinerary.html", "text/html; charset=utf-8", htmlBytes)
			return
		}

		started := time.Now()
		pdfBytes, cerr := s.converter.Convert(r.Context(), htmlBytes)
		metrics.PDFConvertSeconds.Observe(time.Since(started).Seconds())
		if cerr != nil {
			// Single attempt, fail-fast. The client can re-submit with
			// format=html, which needs no converter.
			metrics.RendersTotal.WithLabelValues(format, "error").Inc()
			appLog.Error("pdf conversion failed", cerr, "job_id", jobID)
			http.Error(w, "PDF conversion failed; the HTML format is still available", http.StatusBadGateway)
			return
		}
		metrics.RendersTotal.WithLabelValues(format, "ok").Inc()
		serveAttachment(w, "itinerary.pdf", "application/pdf", pdfBytes)

	case "ics":
		var buf bytes.Buffer
		if err := export.WriteICS(&buf, res); err != nil {
			metrics.RendersTotal.WithLabelValues(format, "error").Inc()
			http.Error(w, "failed to generate calendar", http.StatusInternalServerError)
			return
		}
		metrics.RendersTotal.WithLabelValues(format, "ok").Inc()
		serveAttachment(w, "itinerary.ics", "text/calendar; charset=utf-8", buf.Bytes())

	case "csv":
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, res); err != nil {
			metrics.RendersTotal.WithLabelValues(format, "error").Inc()
			http.Error(w, "failed to generate CSV", http.StatusInternalServerError)
			return
		}
		metrics.RendersTotal.WithLabelValues(format, "ok").Inc()
		serveAttachment(w, "itinerary.csv", "text/csv; charset=utf-8", buf.Bytes())

	default:
		http.Error(w, "unknown format: "+format, http.StatusBadRequest)
	}
}

// itineraryResponse is the JSON preview shape for /api/itinerary.
type itineraryResponse struct {
	TripName string   `json:"trip_name"`
	Timezone string   `json:"timezone"`
	Days     []dayDTO `json:"days"`
	Warnings []string `json:"warnings,omitempty"`
}

type dayDTO struct {
	Date          string     `json:"date"`
	LodgingBanner string     `json:"lodging_banner,omitempty"`
	Events        []eventDTO `json:"events"`
}

type eventDTO struct {
	Time     string `json:"time"`
	Category string `json:"category"`
	Label    string `json:"label"`
}

// handleItineraryJSON accepts a raw trip export as the request body and
// returns the normalized day buckets without rendering, for UI previews.
// An optional ?timezone= query parameter overrides the destination zone.
func (s *Server) handleItineraryJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := trip.DecodeDocument(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	timezone := r.URL.Query().Get("timezone")
	res, err := itinerary.GenerateIn(doc, timezone, s.cfg.Timezone)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	metrics.RecordWarningsTotal.Add(float64(len(res.Warnings)))

	resp := itineraryResponse{
		TripName: res.Doc.Trip.Name,
		Timezone: res.Timezone,
		Warnings: res.Warnings,
	}
	for _, day := range res.Days.Days() {
		d := dayDTO{
			Date:          day.Key(),
			LodgingBanner: day.LodgingBanner,
			Events:        []eventDTO{},
		}
		for _, ev := range day.Events {
			d.Events = append(d.Events, eventDTO{
				Time:     ev.When.Format("15:04"),
				Category: string(ev.Category),
				Label:    ev.Label,
			})
		}
		resp.Days = append(resp.Days, d)
	}

	writeJSON(w, http.StatusOK, resp)
}

func serveAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		appLog.Error("failed to write response body", err, "filename", filename)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
