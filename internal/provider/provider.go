// Package provider holds the HTTP clients for the external market data,
// news and reference-data services.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// MaxNewsItems caps how many articles a news search returns.
const MaxNewsItems = 20

// ErrNotFound is returned when the remote service does not know the
// requested symbol or asset.
var ErrNotFound = errors.New("provider: not found")

// statusError carries a non-200 response so callers can decide whether
// the failure is worth retrying.
type statusError struct {
	service string
	code    int
	body    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.service, e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func doGet(ctx context.Context, client *http.Client, limiter *rate.Limiter, service, url string, header http.Header) ([]byte, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{service: service, code: resp.StatusCode, body: sanitizeText(string(body), 300)}
	}
	return body, nil
}

func sanitizeText(in string, maxLen int) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		in = in[:maxLen]
	}
	return in
}

func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			b.WriteRune(' ')
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return b.String()
}
