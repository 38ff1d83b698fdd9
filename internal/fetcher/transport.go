package fetcher

import (
	"fmt"
	"net/http"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// DefaultDownloadTimeout bounds a whole archive download, body included
const DefaultDownloadTimeout = 5 * time.Minute

// NewHTTPClient returns the plain client used for archive downloads
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NewBrowserHTTPClient returns an http.Client whose requests go out with a
// browser TLS fingerprint. Some file hosts reject the Go TLS handshake.
func NewBrowserHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}

	tlsOpts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout.Seconds())),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithRandomTLSExtensionOrder(),
	}
	if proxyURL != "" {
		tlsOpts = append(tlsOpts, tls_client.WithProxyUrl(proxyURL))
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), tlsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}

	return &http.Client{Transport: NewBrowserTransport(client)}, nil
}

// BrowserTransport is an http.RoundTripper backed by tls-client
type BrowserTransport struct {
	client tls_client.HttpClient
}

// NewBrowserTransport creates a new BrowserTransport
func NewBrowserTransport(client tls_client.HttpClient) *BrowserTransport {
	return &BrowserTransport{client: client}
}

// RoundTrip implements http.RoundTripper. The response body is streamed,
// not buffered, so large archives pass straight through.
func (t *BrowserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	freq, err := fhttp.NewRequestWithContext(req.Context(), req.Method, req.URL.String(), req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range BrowserHeaders(req.Header.Get("User-Agent")) {
		freq.Header.Set(k, v)
	}
	for k, v := range req.Header {
		if len(v) > 0 {
			freq.Header.Set(k, v[0])
		}
	}

	resp, err := t.client.Do(freq)
	if err != nil {
		return nil, err
	}

	header := make(http.Header, len(resp.Header))
	for k, v := range resp.Header {
		header[k] = v
	}
	contentLength := resp.ContentLength
	// tls-client hands back a decoded body
	if header.Get("Content-Encoding") != "" {
		header.Del("Content-Encoding")
		contentLength = -1
	}

	return &http.Response{
		Status:        resp.Status,
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          resp.Body,
		ContentLength: contentLength,
		Request:       req,
	}, nil
}
