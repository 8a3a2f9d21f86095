package bundle

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// PlayerBaseURL is the vendor's web player host.
const PlayerBaseURL = "https://play.qobuz.com"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Discoverer recovers the vendor app id and the ordered per-region secrets.
type Discoverer interface {
	Discover(ctx context.Context) (appID string, secrets []string, err error)
}

// Static is a Discoverer returning fixed values. Used in tests and wherever
// identity has already been pinned out of band.
type Static struct {
	AppID   string
	Secrets []string
}

func (s Static) Discover(context.Context) (string, []string, error) {
	return s.AppID, append([]string(nil), s.Secrets...), nil
}

var (
	bundlePathPattern = regexp.MustCompile(`<script src="(/resources/\d+\.\d+\.\d+-[a-z]\d{3}/bundle\.js)"></script>`)
	appIDPattern      = regexp.MustCompile(`production:\{api:\{appId:"(\d{9})",appSecret:"\w{32}"`)
	seedPattern       = regexp.MustCompile(`[a-z]\.initialSeed\("([\w=]+)",window\.utimezone\.([a-z]+)\)`)
)

// WebDiscoverer scrapes the web player's login page and JS bundle. The
// patterns track unversioned vendor markup and fail fast when it changes.
type WebDiscoverer struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewWebDiscoverer(httpClient *http.Client, baseURL string, logger *zap.Logger) *WebDiscoverer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = PlayerBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebDiscoverer{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

type seedEntry struct {
	timezone string
	parts    []string
}

func (d *WebDiscoverer) Discover(ctx context.Context) (string, []string, error) {
	loginPage, err := d.fetch(ctx, "/login")
	if err != nil {
		return "", nil, err
	}

	m := bundlePathPattern.FindStringSubmatch(loginPage)
	if len(m) < 2 {
		return "", nil, fmt.Errorf("bundle path not found in login page")
	}

	body, err := d.fetch(ctx, m[1])
	if err != nil {
		return "", nil, err
	}

	appID, err := extractAppID(body)
	if err != nil {
		return "", nil, err
	}
	d.logger.Debug("discovered app id", zap.String("app_id", appID))

	secrets, err := extractSecrets(body, d.logger)
	if err != nil {
		return "", nil, err
	}
	d.logger.Info("discovered app identity", zap.Int("secrets", len(secrets)))
	return appID, secrets, nil
}

func (d *WebDiscoverer) fetch(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: bad status code: %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(body), nil
}

func extractAppID(body string) (string, error) {
	if m := appIDPattern.FindStringSubmatch(body); len(m) >= 2 {
		return m[1], nil
	}
	// Strict match failed; the vendor may have reordered config keys.
	return appIDFromConfigLiteral(body)
}

// extractSecrets assembles the per-region secrets from seed/info/extras
// fragments scattered through the bundle.
//
// Region order is load-bearing: the second timezone encountered moves to the
// front before secrets are tried against the server. This matches the web
// player's own probing order and must not be "fixed".
func extractSecrets(body string, logger *zap.Logger) ([]string, error) {
	seedMatches := seedPattern.FindAllStringSubmatch(body, -1)
	entries := make([]seedEntry, 0, len(seedMatches))
	index := make(map[string]int, len(seedMatches))
	for _, m := range seedMatches {
		seed, timezone := m[1], m[2]
		if i, seen := index[timezone]; seen {
			// Later occurrences replace the seed but keep discovery position.
			entries[i].parts = []string{seed}
			continue
		}
		index[timezone] = len(entries)
		entries = append(entries, seedEntry{timezone: timezone, parts: []string{seed}})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no secret seeds found in bundle")
	}

	if len(entries) > 1 {
		reordered := make([]seedEntry, 0, len(entries))
		reordered = append(reordered, entries[1])
		reordered = append(reordered, entries[0])
		reordered = append(reordered, entries[2:]...)
		entries = reordered
		index = make(map[string]int, len(entries))
		for i, e := range entries {
			index[e.timezone] = i
		}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, capitalize(e.timezone))
	}
	infoPattern, err := regexp.Compile(
		`name:"\w+/(` + strings.Join(names, "|") + `)",info:"([\w=]+)",extras:"([\w=]+)"`)
	if err != nil {
		return nil, fmt.Errorf("build info pattern: %w", err)
	}

	for _, m := range infoPattern.FindAllStringSubmatch(body, -1) {
		timezone := strings.ToLower(m[1])
		i, ok := index[timezone]
		if !ok {
			continue
		}
		entries[i].parts = append(entries[i].parts, m[2], m[3])
	}

	secrets := make([]string, 0, len(entries))
	for _, e := range entries {
		joined := strings.Join(e.parts, "")
		if len(joined) <= 44 {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(joined[:len(joined)-44])
		if err != nil {
			logger.Debug("secret decode failed", zap.String("timezone", e.timezone), zap.Error(err))
			continue
		}
		if len(decoded) == 0 {
			continue
		}
		secrets = append(secrets, string(decoded))
	}
	if len(secrets) == 0 {
		return nil, fmt.Errorf("no usable secrets in bundle")
	}
	return secrets, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
