// Package client talks to the compare endpoint and drives a results display.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/paulstuart/trinover/pkg/model"
)

// ComparePath is the endpoint the requester posts to.
const ComparePath = "/api/compare_versions"

const missingVersionMessage = "Please select both versions to compare"

// Indicator is a blocking loading indicator.
type Indicator interface {
	Show()
	Hide()
}

type noIndicator struct{}

func (noIndicator) Show() {}
func (noIndicator) Hide() {}

// Requester issues comparison requests.
type Requester struct {
	baseURL   string
	http      *http.Client
	indicator Indicator
	log       *zap.Logger
}

// Option configures a Requester.
type Option func(*Requester)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Requester) { r.http = c }
}

// WithIndicator sets the loading indicator shown during each request.
func WithIndicator(i Indicator) Option {
	return func(r *Requester) { r.indicator = i }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Requester) { r.log = l }
}

// NewRequester returns a Requester for the server at baseURL.
func NewRequester(baseURL string, opts ...Option) *Requester {
	r := &Requester{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 2 * time.Minute},
		indicator: noIndicator{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compare asks the server for the changes between two versions. Empty
// versions fail with *ValidationError before anything is sent. The indicator
// is shown for the duration of the request and hidden on every return path.
func (r *Requester) Compare(ctx context.Context, from, to string) (model.ComparisonResult, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return model.ComparisonResult{}, &ValidationError{Message: missingVersionMessage}
	}

	r.indicator.Show()
	defer r.indicator.Hide()

	form := url.Values{}
	form.Set("fromVersion", from)
	form.Set("toVersion", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+ComparePath, strings.NewReader(form.Encode()))
	if err != nil {
		return model.ComparisonResult{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	r.log.Debug("requesting comparison", zap.String("from", from), zap.String("to", to))
	resp, err := r.http.Do(req)
	if err != nil {
		return model.ComparisonResult{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return model.ComparisonResult{}, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := &ApplicationError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			appErr.ServerMessage = payload.Error
		}
		r.log.Warn("comparison failed", zap.Int("status", resp.StatusCode), zap.String("error", appErr.Error()))
		return model.ComparisonResult{}, appErr
	}

	var result model.ComparisonResult
	if err := json.Unmarshal(body, &result); err != nil {
		return model.ComparisonResult{}, &TransportError{Err: fmt.Errorf("invalid response: %w", err)}
	}
	return result, nil
}
