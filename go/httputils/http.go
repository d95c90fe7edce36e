package httputils

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"

	"github.com/cncf/clotributor/go/sklog"
)

const (
	DIAL_TIMEOUT    = time.Minute
	REQUEST_TIMEOUT = 5 * time.Minute

	// Exponential backoff defaults.
	INITIAL_INTERVAL     = 500 * time.Millisecond
	RANDOMIZATION_FACTOR = 0.5
	BACKOFF_MULTIPLIER   = 1.5
	MAX_INTERVAL         = 60 * time.Second
	MAX_ELAPSED_TIME     = 5 * time.Minute

	MAX_BYTES_IN_RESPONSE_BODY = 10 * 1024 // 10 KB
)

// HealthCheckHandler returns 200 OK with an empty body, appropriate
// for a healthcheck endpoint.
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
}

// ClientConfig represents options for the behavior of an http.Client. Each
// field, when set, modifies the default http.Client behavior.
//
// Example:
// client := DefaultClientConfig().WithoutRetries().Client()
type ClientConfig struct {
	// DialTimeout, if non-zero, sets the http.Transport's dialer to a
	// net.Dialer with the specified timeout.
	DialTimeout time.Duration

	// RequestTimeout, if non-zero, sets the http.Client.Timeout. The timeout
	// applies until the response body is fully read.
	RequestTimeout time.Duration

	// Retries, if non-nil, uses a BackOffTransport to automatically retry
	// requests until receiving a non-5xx response, as specified by the
	// BackOffConfig.
	Retries *BackOffConfig

	// TokenSource, if non-nil, uses a oauth2.Transport to authenticate all
	// requests with the specified TokenSource.
	TokenSource oauth2.TokenSource

	// Response2xxOnly, if true, transforms non-2xx HTTP responses to an error
	// return value.
	Response2xxOnly bool
}

// DefaultClientConfig returns a ClientConfig with reasonable defaults.
//   - Timeouts are DIAL_TIMEOUT and REQUEST_TIMEOUT.
//   - Retries are enabled with the values from DefaultBackOffConfig().
//   - Non-2xx responses are not considered errors.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		DialTimeout:     DIAL_TIMEOUT,
		RequestTimeout:  REQUEST_TIMEOUT,
		Retries:         DefaultBackOffConfig(),
		Response2xxOnly: false,
	}
}

// With2xxOnly returns a new ClientConfig with Response2xxOnly set.
func (c ClientConfig) With2xxOnly() ClientConfig {
	c.Response2xxOnly = true
	return c
}

// WithoutRetries returns a new ClientConfig with retries disabled.
func (c ClientConfig) WithoutRetries() ClientConfig {
	c.Retries = nil
	return c
}

// WithTokenSource returns a new ClientConfig with the TokenSource set.
func (c ClientConfig) WithTokenSource(t oauth2.TokenSource) ClientConfig {
	c.TokenSource = t
	return c
}

// Client returns a new http.Client as configured by the ClientConfig.
func (c ClientConfig) Client() *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if c.DialTimeout != 0 {
		transport = &http.Transport{
			Dial: (&net.Dialer{
				Timeout: c.DialTimeout,
			}).Dial,
		}
	}
	if c.Response2xxOnly {
		transport = Response2xxOnlyTransport{transport}
	}
	if c.Retries != nil {
		transport = NewConfiguredBackOffTransport(c.Retries, transport)
	}
	if c.TokenSource != nil {
		transport = &oauth2.Transport{
			Source: c.TokenSource,
			Base:   transport,
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   c.RequestTimeout,
	}
}

// Response2xxOnlyTransport is a RoundTripper that transforms non-2xx HTTP
// responses to an error return value.
type Response2xxOnlyTransport struct {
	http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t Response2xxOnlyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.RoundTripper.RoundTrip(req)
	if err == nil && resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		defer ReadAndClose(resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
	}
	return resp, err
}

// StatusError is returned by Response2xxOnlyTransport for non-2xx responses.
type StatusError struct {
	Code int
	URL  string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return "got status code " + http.StatusText(e.Code) + " from " + e.URL
}

// BackOffConfig contains the parameters for an exponential backoff policy.
type BackOffConfig struct {
	initialInterval     time.Duration
	maxInterval         time.Duration
	maxElapsedTime      time.Duration
	randomizationFactor float64
	backOffMultiplier   float64
}

// DefaultBackOffConfig returns a BackOffConfig with default values.
func DefaultBackOffConfig() *BackOffConfig {
	return &BackOffConfig{
		initialInterval:     INITIAL_INTERVAL,
		maxInterval:         MAX_INTERVAL,
		maxElapsedTime:      MAX_ELAPSED_TIME,
		randomizationFactor: RANDOMIZATION_FACTOR,
		backOffMultiplier:   BACKOFF_MULTIPLIER,
	}
}

// BackOffTransport retries requests that fail at the transport level or
// return a 5xx status code, using an exponential backoff policy.
type BackOffTransport struct {
	base          http.RoundTripper
	backOffConfig *BackOffConfig
}

// NewConfiguredBackOffTransport creates a BackOffTransport with the given
// config wrapping the given base RoundTripper.
//
// The transport will retry a request until it succeeds or the maximum
// elapsed time is reached, waiting a randomized interval that grows
// exponentially between attempts:
//
//	wait = retryInterval * (random value in [1 - randomizationFactor, 1 + randomizationFactor])
func NewConfiguredBackOffTransport(config *BackOffConfig, base http.RoundTripper) http.RoundTripper {
	return &BackOffTransport{
		base:          base,
		backOffConfig: config,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *BackOffTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Initialize the backoff policy according to the config.
	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = t.backOffConfig.initialInterval
	backOff.MaxInterval = t.backOffConfig.maxInterval
	backOff.MaxElapsedTime = t.backOffConfig.maxElapsedTime
	backOff.RandomizationFactor = t.backOffConfig.randomizationFactor
	backOff.Multiplier = t.backOffConfig.backOffMultiplier
	backOff.Reset()

	var resp *http.Response
	roundTrip := func() error {
		var err error
		resp, err = t.base.RoundTrip(req) // nolint:bodyclose
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			ReadAndClose(resp.Body)
			return &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		sklog.Warningf("got error %q from %s, retrying in %s", err, req.URL, wait)
	}
	// Requests with a body cannot be safely replayed.
	if req.Body != nil {
		return t.base.RoundTrip(req)
	}
	if err := backoff.RetryNotify(roundTrip, backOff, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// ReadAndClose reads and discards the given io.ReadCloser, then closes it.
// Helps reuse http connections when the body is not interesting.
func ReadAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, MAX_BYTES_IN_RESPONSE_BODY))
	if err := r.Close(); err != nil {
		sklog.Errorf("Failed to Close(): %v", err)
	}
}

// ReportError formats an HTTP error response and also logs the detailed
// error message. The message is returned to the caller; the error is only
// logged.
func ReportError(w http.ResponseWriter, err error, message string, code int) {
	if err != nil {
		sklog.Errorf("%s: %s", message, err)
	} else {
		sklog.Error(message)
	}
	http.Error(w, message, code)
}

// GetWithContext is a helper for making a GET request with the given context.
func GetWithContext(ctx context.Context, c *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// PostWithContext is a helper for making a POST request with the given
// context.
func PostWithContext(ctx context.Context, c *http.Client, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}
