package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"itingen/internal/config"
	"itingen/internal/export"
	"itingen/internal/itinerary"
	appLog "itingen/internal/log"
	"itingen/internal/pdf"
	"itingen/internal/render"
	"itingen/internal/trip"
	"itingen/internal/web"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "render":
		runRender(os.Args[2:])
	case "hash-password":
		runHashPassword(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: itingen <command> [options]

Commands:
  render         Render a trip export to HTML (and optionally PDF/ICS/CSV)
  serve          Run the upload form web service
  hash-password  Create an auth file for the web service

Run "itingen <command> -h" for command options.
`)
}

// loadConfig loads the YAML config when a path is given, otherwise returns
// in-memory defaults.
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.DefaultConfig()
	}
	conf, err := config.Load(path)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", path)
		os.Exit(1)
	}
	return conf
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (optional)")
	listen := fs.String("listen", "", "HTTP listen address (overrides config if set)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if *debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf := loadConfig(*configPath)
	if *listen != "" {
		conf.Listen = *listen
	}

	appLog.Info("itingen starting",
		"listen", conf.Listen,
		"timezone_fallback", conf.Timezone,
		"pdf_backend", conf.PDF.Backend,
		"scratch_dir", conf.ScratchDir,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := web.Start(ctx, conf); err != nil {
		appLog.Error("server exited", err)
		os.Exit(1)
	}
	appLog.Info("itingen exiting")
}

func runRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	templatePath := fs.String("template", "", "Path to HTML template (default: built-in)")
	outHTML := fs.String("out", "itinerary.html", "Path to save the rendered HTML file")
	outPDF := fs.String("pdf", "", "If set, path to save a PDF output")
	outICS := fs.String("ics", "", "If set, path to save an iCalendar export")
	outCSV := fs.String("csv", "", "If set, path to save a CSV export")
	timezone := fs.String("timezone", "", "Display timezone override (default: trip destination)")
	configPath := fs.String("config", "", "Path to config file (optional)")
	gotenbergURL := fs.String("gotenberg-url", "", "Gotenberg HTML conversion endpoint (overrides config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: itingen render <trip.json> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	tripPath := fs.Arg(0)

	conf := loadConfig(*configPath)
	if *gotenbergURL != "" {
		conf.PDF.GotenbergURL = *gotenbergURL
	}

	doc, err := trip.LoadDocument(tripPath)
	if err != nil {
		appLog.Error("failed to load trip export", err, "path", tripPath)
		os.Exit(1)
	}

	res, err := itinerary.GenerateIn(doc, *timezone, conf.Timezone)
	if err != nil {
		appLog.Error("failed to generate itinerary", err)
		os.Exit(1)
	}
	for _, warning := range res.Warnings {
		appLog.Warn("record warning", "detail", warning)
	}

	tpl, err := render.LoadTemplate(firstNonEmpty(*templatePath, conf.TemplatePath))
	if err != nil {
		appLog.Error("failed to load template", err)
		os.Exit(1)
	}

	htmlBytes, err := render.HTML(tpl, render.NewContext(res))
	if err != nil {
		appLog.Error("failed to render HTML", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outHTML, htmlBytes, 0o644); err != nil {
		appLog.Error("failed to write HTML output", err, "path", *outHTML)
		os.Exit(1)
	}
	fmt.Printf("HTML itinerary generated: %s\n", *outHTML)

	if *outPDF != "" {
		timeout := time.Duration(conf.PDF.TimeoutSeconds) * time.Second
		var converter pdf.Converter
		if conf.PDF.Backend == config.PDFBackendChromium {
			converter = pdf.NewChromium(conf.ScratchDir, timeout)
		} else {
			converter = pdf.NewGotenberg(conf.PDF.GotenbergURL, timeout)
		}

		pdfBytes, cerr := converter.Convert(context.Background(), htmlBytes)
		if cerr != nil {
			// HTML output above remains usable; conversion is one attempt.
			appLog.Error("PDF conversion failed; HTML output is still available", cerr)
		} else if werr := os.WriteFile(*outPDF, pdfBytes, 0o644); werr != nil {
			appLog.Error("failed to write PDF output", werr, "path", *outPDF)
		} else {
			fmt.Printf("PDF itinerary generated: %s\n", *outPDF)
		}
	}

	if *outICS != "" {
		if err := writeExport(*outICS, res, export.WriteICS); err != nil {
			appLog.Error("failed to write ICS output", err, "path", *outICS)
		} else {
			fmt.Printf("ICS itinerary generated: %s\n", *outICS)
		}
	}
	if *outCSV != "" {
		if err := writeExport(*outCSV, res, export.WriteCSV); err != nil {
			appLog.Error("failed to write CSV output", err, "path", *outCSV)
		} else {
			fmt.Printf("CSV itinerary generated: %s\n", *outCSV)
		}
	}
}

func writeExport(path string, res *itinerary.Result, write func(w io.Writer, res *itinerary.Result) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runHashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	authFile := fs.String("file", "auth.secret", "Path to the auth file to create")
	fs.Parse(args)

	fmt.Print("Enter username: ")
	var username string
	if _, err := fmt.Scanln(&username); err != nil || username == "" {
		fmt.Fprintln(os.Stderr, "username cannot be empty")
		os.Exit(1)
	}

	password := readPassword("Enter password:   ")
	confirm := readPassword("Confirm password: ")
	if password == "" {
		fmt.Fprintln(os.Stderr, "password cannot be empty")
		os.Exit(1)
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "passwords do not match")
		os.Exit(1)
	}

	if err := web.CreateAuthFile(*authFile, username, password); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create auth file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Auth file created: %s (user: %s)\n", *authFile, username)
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
