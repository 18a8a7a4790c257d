package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"

	appLog "itingen/internal/log"
)

// Argon2id parameters (OWASP recommended).
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// Credentials is the parsed content of an auth file ("username:hash").
type Credentials struct {
	Username string
	Hash     string
}

// LoadCredentials reads an auth file. A missing file (or an empty path)
// means auth is disabled; that is reported as (nil, nil) with a warning so
// dev setups keep working.
func LoadCredentials(path string) (*Credentials, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Warn("auth file not found; upload UI is unprotected", "path", path)
			return nil, nil
		}
		return nil, err
	}

	line := strings.TrimSpace(string(data))
	user, hash, ok := strings.Cut(line, ":")
	if !ok || user == "" || hash == "" {
		return nil, errors.New("invalid auth file format (expected username:hash)")
	}

	appLog.Info("basic auth enabled", "user", user)
	return &Credentials{Username: user, Hash: hash}, nil
}

// HashPassword creates an Argon2id hash in the standard encoded form
// $argon2id$v=19$m=...,t=...,p=...$salt$hash.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonTime, argonThreads, b64Salt, b64Hash), nil
}

// VerifyPassword checks a password against an encoded Argon2id hash using a
// constant-time comparison.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, errors.New("not an argon2id hash")
	}

	var memory, timeCost, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memory, uint8(threads), uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// CreateAuthFile hashes the password and writes "username:hash" with 0600
// permissions, for the hash-password subcommand.
func CreateAuthFile(path, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	content := fmt.Sprintf("%s:%s\n", username, hash)
	return os.WriteFile(path, []byte(content), 0o600)
}

// basicAuthMiddleware wraps all handlers except /health and /metrics with
// HTTP Basic Auth against the loaded credentials. Nil credentials disable
// the check entirely.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	if s.creds == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(s.creds.Username)) == 1

		passMatch := false
		if ok && userMatch {
			var err error
			passMatch, err = VerifyPassword(pass, s.creds.Hash)
			if err != nil {
				appLog.Error("password verification failed", err)
				passMatch = false
			}
		}

		if !ok || !userMatch || !passMatch {
			w.Header().Set("WWW-Authenticate", `Basic realm="itingen", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			appLog.Warn("failed auth attempt", "remote", r.RemoteAddr, "user", user)
			return
		}
		next.ServeHTTP(w, r)
	})
}
