package attendsdk

import (
	"net/http"

	"golang.org/x/time/rate"
)

// bearerTransport adds "Authorization: Bearer <token>" when the TokenSource
// has a token. The token is read per request and never cached.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(r)
	}

	token, ok := t.tokens.Token()
	if !ok || token == "" {
		return t.base.RoundTrip(r)
	}

	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(r)
}

// rateLimitTransport blocks each request until the limiter grants a slot or
// the request context is done.
type rateLimitTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func newRateLimitTransport(base http.RoundTripper, rps float64, burst int) *rateLimitTransport {
	if burst < 1 {
		burst = 1
	}
	return &rateLimitTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (t *rateLimitTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(r.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(r)
}
