package client

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/famomatic/qbz/internal/bundle"
	"github.com/famomatic/qbz/internal/config"
)

// Credentials is the user-supplied identity. Immutable once set; never logged.
type Credentials struct {
	// EmailOrUserID is the account email, or the numeric user id when
	// UseAuthToken is set.
	EmailOrUserID string

	// PasswordOrToken is the account password, or a user auth token when
	// UseAuthToken is set.
	PasswordOrToken string

	// UseAuthToken switches the login handshake to token authentication.
	UseAuthToken bool
}

// Config holds configuration for the vendor client.
type Config struct {
	// HTTPClient is the client used for all requests.
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client

	// ProxyURL is the optional proxy URL to use for requests.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// Credentials is the user identity to authenticate with.
	Credentials Credentials

	// AppID and Secrets pin a previously discovered app identity.
	// When either is empty, Login runs discovery and fills them in.
	AppID   string
	Secrets []string

	// RequestsPerMinute caps outbound API calls. Zero disables the cap.
	RequestsPerMinute int

	// RequestTimeout bounds each network call when the caller's context
	// carries no deadline. Zero means no default timeout.
	RequestTimeout time.Duration

	// BaseURL overrides the vendor API base path (tests).
	BaseURL string

	// PlayerBaseURL overrides the web player host used by discovery (tests).
	PlayerBaseURL string

	// Discoverer overrides the production bundle scraper.
	// If nil, a WebDiscoverer against PlayerBaseURL is used.
	Discoverer bundle.Discoverer

	// Store, when set, receives discovered app identity so the owning
	// process can persist it.
	Store *config.Store

	// Logger is the optional structured logger. If nil, logging is disabled.
	Logger *zap.Logger
}

// FromStore builds a Config from a loaded config store.
func FromStore(store *config.Store) Config {
	q := store.Qobuz()
	return Config{
		Credentials: Credentials{
			EmailOrUserID:   q.EmailOrUserID,
			PasswordOrToken: q.PasswordOrToken,
			UseAuthToken:    q.UseAuthToken,
		},
		AppID:             q.AppID,
		Secrets:           q.Secrets,
		RequestsPerMinute: q.RequestsPerMinute,
		Store:             store,
	}
}
