package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// StoreProber issues one GET against the storefront and classifies the
// status code:
//
//	404   -> unavailable (terminal)
//	200   -> available (terminal)
//	>=500 -> indeterminate (transient; callers may retry)
//	other -> unavailable (terminal; ambiguous codes never mean "available")
type StoreProber struct {
	BaseURL string
	Client  *http.Client
}

func NewStoreProber(baseURL string, timeout time.Duration) *StoreProber {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &StoreProber{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout, Transport: tr},
	}
}

// URL builds the storefront page for an app in a region.
func (p *StoreProber) URL(appID, region string) string {
	return fmt.Sprintf("%s/%s/app/%s", p.BaseURL, region, appID)
}

func (p *StoreProber) Probe(ctx context.Context, appID, region string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(appID, region), nil)
	if err != nil {
		return Result{Status: StatusUnavailable, Message: err.Error()}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		// timeouts and connection errors are transient
		return Result{Status: StatusIndeterminate, Message: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{Status: StatusUnavailable, HTTPStatus: resp.StatusCode, Message: resp.Status}
	case resp.StatusCode == http.StatusOK:
		return Result{Status: StatusAvailable, HTTPStatus: resp.StatusCode, Message: resp.Status}
	case resp.StatusCode >= 500:
		return Result{Status: StatusIndeterminate, HTTPStatus: resp.StatusCode, Message: resp.Status}
	default:
		return Result{Status: StatusUnavailable, HTTPStatus: resp.StatusCode, Message: resp.Status}
	}
}
