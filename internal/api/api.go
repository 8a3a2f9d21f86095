package api

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
	"golang.org/x/time/rate"
)

// BaseURL is the vendor's private web API base path.
const BaseURL = "https://www.qobuz.com/api.json/0.2"

// Caller issues rate-limited GET requests against the vendor API.
// A single Caller is shared by all calls of one client instance; the
// requests-per-minute budget is the only inter-call ordering control.
type Caller struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewCaller(httpClient *http.Client, baseURL string, requestsPerMinute int, logger *zap.Logger) *Caller {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = BaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &Caller{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// Get performs a rate-limited GET against an API endpoint and returns the
// HTTP status together with the raw response body. Non-2xx statuses are not
// errors here; callers map them to the vendor error taxonomy.
func (c *Caller) Get(ctx context.Context, endpoint string, params url.Values, header http.Header) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("api request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read api response %s: %w", endpoint, err)
	}
	c.logger.Debug("api call",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp.StatusCode, body, nil
}

// LoginResponse is the subset of user/login the client consumes.
type LoginResponse struct {
	UserAuthToken string `json:"user_auth_token"`
	User          struct {
		ID         int64  `json:"id"`
		Country    string `json:"country_code"`
		Credential struct {
			Parameters json.RawMessage `json:"parameters"`
		} `json:"credential"`
	} `json:"user"`
}

// HasEntitlement reports whether the login body carries non-empty credential
// parameters. Accounts without them cannot stream downloads.
func (r *LoginResponse) HasEntitlement() bool {
	p := strings.TrimSpace(string(r.User.Credential.Parameters))
	return p != "" && p != "null" && p != "{}" && p != `""`
}

// FileURLResponse is the subset of track/getFileUrl the client consumes.
type FileURLResponse struct {
	URL          string  `json:"url"`
	FormatID     int     `json:"format_id"`
	BitDepth     int     `json:"bit_depth"`
	SamplingRate float64 `json:"sampling_rate"`
	Message      string  `json:"message"`
	Error        string  `json:"error"`
}

// FailureMessage returns whichever failure field the vendor populated.
func (r *FileURLResponse) FailureMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

// IsSignatureRejection reports whether a 400 body is the transient signature
// rejection that warrants exactly one retry with a fresh timestamp.
func IsSignatureRejection(status int, body []byte) bool {
	return status == http.StatusBadRequest && strings.Contains(string(body), "Invalid Request Signature")
}
