package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PDFBackend selects how rendered HTML is converted to PDF.
const (
	PDFBackendGotenberg = "gotenberg"
	PDFBackendChromium  = "chromium"
)

// PDFConfig controls the HTML-to-PDF conversion stage.
type PDFConfig struct {
	// Backend is "gotenberg" (remote service) or "chromium" (local headless).
	Backend string `yaml:"backend" json:"backend"`

	// GotenbergURL is the Gotenberg HTML conversion endpoint.
	GotenbergURL string `yaml:"gotenberg_url" json:"gotenberg_url"`

	// TimeoutSeconds bounds a single conversion attempt. There is no retry;
	// on failure the HTML output remains available to the caller.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the upload UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used when a trip document carries no
	// destinations at all. Empty means UTC.
	Timezone string `yaml:"timezone" json:"timezone"`

	// TemplatePath optionally overrides the embedded default HTML template.
	TemplatePath string `yaml:"template_path" json:"template_path"`

	// ScratchDir is where per-request upload artifacts are written. Files
	// here only live for the duration of a request; the sweeper removes
	// anything left behind.
	ScratchDir string `yaml:"scratch_dir" json:"scratch_dir"`

	// SweepCron is a cron-style schedule for the scratch sweeper
	// (e.g. "*/30 * * * *").
	SweepCron string `yaml:"sweep" json:"sweep"`

	// SweepMaxAgeMinutes is the age past which a scratch file is removed.
	SweepMaxAgeMinutes int `yaml:"sweep_max_age_minutes" json:"sweep_max_age_minutes"`

	// AuthFile points at a "username:argon2id-hash" credentials file for
	// the upload UI. Empty or missing file disables auth (dev mode).
	AuthFile string `yaml:"auth_file" json:"auth_file"`

	PDF PDFConfig `yaml:"pdf" json:"pdf"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             "127.0.0.1:8080",
		Timezone:           "UTC",
		ScratchDir:         "./var/scratch",
		SweepCron:          "*/30 * * * *",
		SweepMaxAgeMinutes: 60,
		PDF: PDFConfig{
			Backend:        PDFBackendGotenberg,
			GotenbergURL:   "http://localhost:3000/forms/chromium/convert/html",
			TimeoutSeconds: 30,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.ScratchDir == "" {
		c.ScratchDir = "./var/scratch"
	}
	if c.SweepCron == "" {
		c.SweepCron = "*/30 * * * *"
	}
	if c.SweepMaxAgeMinutes <= 0 {
		c.SweepMaxAgeMinutes = 60
	}
	switch c.PDF.Backend {
	case PDFBackendGotenberg, PDFBackendChromium:
		// ok
	default:
		c.PDF.Backend = PDFBackendGotenberg
	}
	if c.PDF.GotenbergURL == "" {
		c.PDF.GotenbergURL = "http://localhost:3000/forms/chromium/convert/html"
	}
	if c.PDF.TimeoutSeconds <= 0 {
		c.PDF.TimeoutSeconds = 30
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".itingen-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
