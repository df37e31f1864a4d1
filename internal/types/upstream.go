package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrorKind classifies why a provider call failed.
type ErrorKind string

const (
	KindConfig      ErrorKind = "config"
	KindTransport   ErrorKind = "transport"
	KindStatus      ErrorKind = "status"
	KindNoBody      ErrorKind = "no_body"
	KindRateLimited ErrorKind = "rate_limited"
)

// maxBodyExcerpt bounds how much of an upstream error body is kept.
const maxBodyExcerpt = 512

// UpstreamError is a failure from one provider before any delta was produced.
type UpstreamError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		msg := fmt.Sprintf("%s request failed: %d %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode))
		if e.Body != "" {
			msg += " - " + e.Body
		}
		return msg
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s request failed: %s", e.Provider, e.Kind)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrMissingCredential builds the config error returned by adapters without a credential.
func ErrMissingCredential(provider, envVar string) *UpstreamError {
	return &UpstreamError{
		Provider: provider,
		Kind:     KindConfig,
		Err:      fmt.Errorf("%s is not set", envVar),
	}
}

// NewStatusError builds an UpstreamError for a non-2xx response.
// classify may be nil; it decides whether the failure is a rate-limit signal.
func NewStatusError(provider string, statusCode int, body []byte, classify Classifier) *UpstreamError {
	e := &UpstreamError{
		Provider:   provider,
		Kind:       KindStatus,
		StatusCode: statusCode,
		Body:       Excerpt(body),
	}
	if classify != nil {
		e.Kind = classify(statusCode, e.Body)
	}
	return e
}

// Classifier maps an upstream status and body excerpt to an ErrorKind.
type Classifier func(statusCode int, body string) ErrorKind

// ClassifyRateLimit treats 429 or a "rate-limited" body as a rate-limit signal.
func ClassifyRateLimit(statusCode int, body string) ErrorKind {
	if statusCode == http.StatusTooManyRequests || strings.Contains(strings.ToLower(body), "rate-limited") {
		return KindRateLimited
	}
	return KindStatus
}

// Excerpt trims an upstream body to a loggable size.
func Excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyExcerpt {
		cut := maxBodyExcerpt
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

// IsRateLimited reports whether err carries a rate-limit classification.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == KindRateLimited
}

// KindOf returns the ErrorKind of err, or KindTransport for unclassified errors.
func KindOf(err error) ErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindTransport
}

// ProviderFailure records one failed attempt in a dispatch cycle.
type ProviderFailure struct {
	Provider string
	Err      error
}

// AllProvidersFailedError aggregates every failure from one dispatch cycle.
type AllProvidersFailedError struct {
	Failures []ProviderFailure
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Provider+": "+f.Err.Error())
	}
	return "All providers failed. " + strings.Join(parts, " | ")
}
