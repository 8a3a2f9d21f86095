package client

import "errors"

// The vendor failure taxonomy. Callers branch on these with errors.Is; every
// login/resolve/probe failure wraps exactly one of them.
var (
	// ErrMissingCredentials indicates no identity or secret/token was supplied.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidAppID indicates the vendor rejected the discovered/stored app id.
	ErrInvalidAppID = errors.New("invalid app id")
	// ErrInvalidAppSecret indicates no secret in the discovered set validates.
	ErrInvalidAppSecret = errors.New("invalid app secret")
	// ErrAuthentication indicates wrong user credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrIneligible indicates the account lacks download entitlement.
	ErrIneligible = errors.New("account not eligible for downloads")
	// ErrNonStreamable indicates the track/quality combination is unavailable.
	ErrNonStreamable = errors.New("track not streamable")
	// ErrDiscovery indicates the vendor page/bundle no longer matches the
	// expected patterns.
	ErrDiscovery = errors.New("app identity discovery failed")
	// ErrInvalidQuality indicates a quality level outside 1..4 (caller bug).
	ErrInvalidQuality = errors.New("invalid quality level")
	// ErrNotLoggedIn indicates a call that requires an authenticated session.
	ErrNotLoggedIn = errors.New("not logged in")
)
