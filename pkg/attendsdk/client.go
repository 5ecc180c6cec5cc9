package attendsdk

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/stepattend/pkg/slogx"
)

// TokenSource supplies the bearer token for outgoing requests. It is consulted
// immediately before every request, so a login or logout takes effect on the
// next call without rebuilding the Client.
type TokenSource interface {
	Token() (string, bool)
}

// Client is the gateway to the attendance service. One Client owns one
// http.Client, which is reused for every call. Construct it once and hand it
// to whatever needs it.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

type clientOptions struct {
	timeout   time.Duration
	logger    *slog.Logger
	transport http.RoundTripper
	rateLimit float64 // requests per second, 0 disables throttling
	rateBurst int
}

// Option configures a Client.
type Option func(*clientOptions)

// WithTimeout sets the overall per-request timeout. Zero means no client-side
// timeout beyond what the transport enforces.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// WithTransport replaces the base round tripper (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// Requests wait for a slot; nothing is retried or dropped.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *clientOptions) {
		o.rateLimit = rps
		o.rateBurst = burst
	}
}

// NewClient creates a Client for baseURL. tokens may be nil, in which case no
// Authorization header is ever sent.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	o := clientOptions{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	// Outermost first: bearer header, throttle, request id + logging, network.
	var rt http.RoundTripper = slogx.Transport(o.transport, o.logger)
	if o.rateLimit > 0 {
		rt = newRateLimitTransport(rt, o.rateLimit, o.rateBurst)
	}
	rt = &bearerTransport{base: rt, tokens: tokens}

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   o.timeout,
			Transport: rt,
		},
	}
}
