package client

import "net/http"

// Source is the vendor tag attached to every Downloadable.
const Source = "qobuz"

// Session is the immutable result of a successful Login. It is passed
// explicitly into resolve/probe calls; nothing mutates it afterwards, so a
// single Session may be shared across goroutines.
type Session struct {
	appID         string
	userAuthToken string
	secret        string
	userID        int64
	country       string
}

// AppID returns the app id the session authenticated with.
func (s *Session) AppID() string { return s.appID }

// UserID returns the vendor account id.
func (s *Session) UserID() int64 { return s.userID }

// Country returns the account's country code.
func (s *Session) Country() string { return s.country }

func (s *Session) header() http.Header {
	h := make(http.Header, 2)
	h.Set("X-App-Id", s.appID)
	h.Set("X-User-Auth-Token", s.userAuthToken)
	return h
}

// Downloadable is a resolved, time-limited streamable artifact handle. It is
// a plain value; fetching bytes from URL is the downstream executor's job.
type Downloadable struct {
	URL    string
	Codec  string
	Source string
}

// TrackQuality reports availability of one quality tier for a track.
type TrackQuality struct {
	QualityLevel int
	FormatID     int
	Available    bool
	BitDepth     int
	SamplingRate float64
	Err          string
}

// OpenURL builds the public open.qobuz.com URL for a media item.
func OpenURL(mediaType, id string) string {
	if id == "" {
		return ""
	}
	return "https://open.qobuz.com/" + mediaType + "/" + id
}
