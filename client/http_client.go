package client

import (
	"net/http"
	"net/url"
	"strings"
)

// defaultHTTPClient builds the shared HTTP client for one client instance.
// An unusable proxy URL falls back to a direct connection rather than
// failing construction; Login will surface any real connectivity problem.
func defaultHTTPClient(proxyURL string) *http.Client {
	parsed := parseProxyURL(proxyURL)
	if parsed == nil {
		return http.DefaultClient
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultClient
	}
	transport := baseTransport.Clone()
	transport.Proxy = http.ProxyURL(parsed)
	return &http.Client{Transport: transport}
}

func parseProxyURL(proxyURL string) *url.URL {
	if strings.TrimSpace(proxyURL) == "" {
		return nil
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil
	}
	return parsed
}
