// Package fingerprint talks to the networked fingerprint scanner and polls it for open sessions.
package fingerprint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"biometric-attendance/backend/internal/biometric"
)

const (
	defaultPath    = "/identify"
	defaultTimeout = 3 * time.Second
	// maxBody bounds how much of a device response is read.
	maxBody = 64 << 10
)

var (
	// ErrNoRead means the device answered but no finger was identified.
	ErrNoRead = errors.New("fingerprint: no read")
	// ErrDeviceUnavailable means the device could not be reached or answered with garbage. Transient.
	ErrDeviceUnavailable = errors.New("fingerprint: device unavailable")
)

// Reading is a positive identification from the scanner.
type Reading struct {
	FingerprintID string
}

// Reader performs a single identify call against a scanner.
type Reader interface {
	Identify(ctx context.Context) (Reading, error)
}

// Scanner is an HTTP client for the fingerprint scanner identify endpoint.
type Scanner struct {
	BaseURL    string
	Path       string
	HTTPClient *http.Client
}

// NewScanner returns a scanner client for baseURL. Empty path and non-positive timeout use the defaults.
func NewScanner(baseURL, path string, timeout time.Duration) *Scanner {
	if path == "" {
		path = defaultPath
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scanner{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Path:       "/" + strings.TrimPrefix(path, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type identifyResponse struct {
	Status        string              `json:"status"`
	FingerprintID biometric.FlexibleID `json:"fingerprint_id"`
	Message       string              `json:"message"`
}

// Identify asks the scanner for the currently placed finger.
// Returns ErrNoRead when the device reports anything but success, ErrDeviceUnavailable on transport
// errors, timeouts, non-2xx statuses and malformed bodies.
func (s *Scanner) Identify(ctx context.Context) (Reading, error) {
	if s.BaseURL == "" {
		return Reading{}, fmt.Errorf("%w: device URL not configured", ErrDeviceUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+s.Path, nil)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Reading{}, fmt.Errorf("%w: read body: %v", ErrDeviceUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reading{}, fmt.Errorf("%w: status=%d body=%s", ErrDeviceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out identifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Reading{}, fmt.Errorf("%w: malformed response: %v", ErrDeviceUnavailable, err)
	}
	if !strings.EqualFold(out.Status, "success") {
		return Reading{}, ErrNoRead
	}
	if out.FingerprintID == "" {
		return Reading{}, fmt.Errorf("%w: success without fingerprint_id", ErrDeviceUnavailable)
	}
	return Reading{FingerprintID: out.FingerprintID.String()}, nil
}
