package connectivity

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// HTTPProber observes the network path by sending HEAD requests to the API
// root. A transport failure means unreachable; a 5xx or a redirect to another
// host (captive portal) means reachable but not validated.
type HTTPProber struct {
	target *url.URL
	client *http.Client
}

// NewHTTPProber creates a prober for target with a per-probe timeout.
func NewHTTPProber(target string, timeout time.Duration) (*HTTPProber, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProber{
		target: u,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context) Observation {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.target.String(), nil)
	if err != nil {
		return Observation{}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Observation{}
	}
	resp.Body.Close()

	obs := Observation{Reachable: true, Validated: resp.StatusCode < http.StatusInternalServerError}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if loc, err := resp.Location(); err == nil && loc.Host != p.target.Host {
			obs.Validated = false
		}
	}
	return obs
}
