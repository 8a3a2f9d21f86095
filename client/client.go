package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/famomatic/qbz/internal/api"
	"github.com/famomatic/qbz/internal/bundle"
)

// probeTrackID is a stable catalog track used to validate candidate secrets
// with a lightweight signed call during login.
const probeTrackID = "19512574"

// Client is the high-level vendor client. One instance owns one HTTP session
// and one rate-limit budget; Login calls on the same instance are serialized
// internally, everything else takes the immutable Session it produced.
type Client struct {
	config     Config
	caller     *api.Caller
	discoverer bundle.Discoverer
	logger     *zap.Logger
	loginMu    sync.Mutex

	now func() int64
}

// New creates a new vendor client.
func New(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = defaultHTTPClient(config.ProxyURL)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	discoverer := config.Discoverer
	if discoverer == nil {
		discoverer = bundle.NewWebDiscoverer(config.HTTPClient, config.PlayerBaseURL, logger)
	}
	return &Client{
		config:     config,
		caller:     api.NewCaller(config.HTTPClient, config.BaseURL, config.RequestsPerMinute, logger),
		discoverer: discoverer,
		logger:     logger,
		now:        func() int64 { return time.Now().Unix() },
	}
}

// Login authenticates the configured credentials and returns an immutable
// Session for subsequent calls. When no app identity is configured it runs
// bundle discovery first and, if a Store is attached, writes the result back
// so the owning process can persist it.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	ctx, cancel := withDefaultTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	creds := c.config.Credentials
	if strings.TrimSpace(creds.EmailOrUserID) == "" || strings.TrimSpace(creds.PasswordOrToken) == "" {
		return nil, ErrMissingCredentials
	}

	if c.config.AppID == "" || len(c.config.Secrets) == 0 {
		c.logger.Info("no app identity configured, running bundle discovery")
		appID, secrets, err := c.discoverer.Discover(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
		}
		c.config.AppID = appID
		c.config.Secrets = secrets
		if c.config.Store != nil {
			c.config.Store.SetAppIdentity(appID, secrets)
		}
	}

	params := url.Values{}
	if creds.UseAuthToken {
		params.Set("user_id", creds.EmailOrUserID)
		params.Set("user_auth_token", creds.PasswordOrToken)
	} else {
		params.Set("email", creds.EmailOrUserID)
		params.Set("password", creds.PasswordOrToken)
	}
	params.Set("app_id", c.config.AppID)

	header := make(http.Header, 1)
	header.Set("X-App-Id", c.config.AppID)

	status, body, err := c.caller.Get(ctx, "user/login", params, header)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: wrong email or password", ErrAuthentication)
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrInvalidAppID, c.config.AppID)
	}

	var resp api.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if !resp.HasEntitlement() {
		return nil, ErrIneligible
	}

	sess := &Session{
		appID:         c.config.AppID,
		userAuthToken: resp.UserAuthToken,
		userID:        resp.User.ID,
		country:       resp.User.Country,
	}
	secret, err := c.selectSecret(ctx, sess)
	if err != nil {
		return nil, err
	}
	sess.secret = secret

	c.logger.Info("logged in", zap.Int64("user_id", sess.userID), zap.String("country", sess.country))
	return sess, nil
}

// selectSecret tries each discovered secret, in order, against a signed probe
// call and keeps the first one the server accepts.
func (c *Client) selectSecret(ctx context.Context, sess *Session) (string, error) {
	formatID, _ := api.FormatID(api.MaxQuality)
	for _, secret := range c.config.Secrets {
		if secret == "" {
			continue
		}
		status, _, err := c.requestFileURL(ctx, sess, secret, probeTrackID, formatID)
		if err != nil {
			return "", err
		}
		if status != http.StatusBadRequest {
			return secret, nil
		}
	}
	return "", ErrInvalidAppSecret
}

// GetDownloadable resolves a streamable URL for a track at the given quality
// level (1..4).
func (c *Client) GetDownloadable(ctx context.Context, sess *Session, trackID string, quality int) (*Downloadable, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	if sess == nil || sess.secret == "" {
		return nil, ErrNotLoggedIn
	}
	formatID, err := api.FormatID(quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, quality)
	}

	status, body, err := c.fileURLWithRetry(ctx, sess, trackID, formatID)
	if err != nil {
		return nil, err
	}
	var resp api.FileURLResponse
	_ = json.Unmarshal(body, &resp)
	if status != http.StatusOK || resp.URL == "" {
		return nil, fmt.Errorf("%w: track=%s quality=%d", ErrNonStreamable, trackID, quality)
	}

	codec := "mp3"
	if quality > 1 {
		codec = "flac"
	}
	return &Downloadable{URL: resp.URL, Codec: codec, Source: Source}, nil
}

// InspectTrackQuality probes which quality tiers are available for a track,
// best first. Per-tier failures are reported as data, not errors; only a
// transport failure aborts the probe.
func (c *Client) InspectTrackQuality(ctx context.Context, sess *Session, trackID string, maxQuality int) ([]TrackQuality, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	if sess == nil || sess.secret == "" {
		return nil, ErrNotLoggedIn
	}
	if maxQuality < 1 {
		maxQuality = 1
	}
	if maxQuality > api.MaxQuality {
		maxQuality = api.MaxQuality
	}

	results := make([]TrackQuality, 0, maxQuality)
	for q := maxQuality; q >= 1; q-- {
		formatID, _ := api.FormatID(q)
		status, body, err := c.fileURLWithRetry(ctx, sess, trackID, formatID)
		if err != nil {
			return nil, err
		}

		var resp api.FileURLResponse
		_ = json.Unmarshal(body, &resp)
		if status == http.StatusOK && resp.URL != "" {
			results = append(results, TrackQuality{
				QualityLevel: q,
				FormatID:     formatID,
				Available:    true,
				BitDepth:     resp.BitDepth,
				SamplingRate: resp.SamplingRate,
			})
			continue
		}
		results = append(results, TrackQuality{
			QualityLevel: q,
			FormatID:     formatID,
			Available:    false,
			Err:          resp.FailureMessage(),
		})
	}
	return results, nil
}

// fileURLWithRetry issues a signed track/getFileUrl call, retrying exactly
// once when the server answers the transient signature rejection. The retry
// re-signs with a fresh timestamp, which is what clears clock-skew rejects.
func (c *Client) fileURLWithRetry(ctx context.Context, sess *Session, trackID string, formatID int) (int, []byte, error) {
	status, body, err := c.requestFileURL(ctx, sess, sess.secret, trackID, formatID)
	if err != nil {
		return 0, nil, err
	}
	if api.IsSignatureRejection(status, body) {
		c.logger.Warn("request signature rejected, retrying once",
			zap.String("track_id", trackID), zap.Int("format_id", formatID))
		return c.requestFileURL(ctx, sess, sess.secret, trackID, formatID)
	}
	return status, body, nil
}

func (c *Client) requestFileURL(ctx context.Context, sess *Session, secret, trackID string, formatID int) (int, []byte, error) {
	params := api.FileURLParams(trackID, formatID, c.now(), secret)
	return c.caller.Get(ctx, "track/getFileUrl", params, sess.header())
}
