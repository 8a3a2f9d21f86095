package api

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"
)

// FileURLSignature computes the request signature for track/getFileUrl.
// The concatenation order is fixed by the vendor and must match exactly,
// otherwise the server rejects the request with "Invalid Request Signature".
func FileURLSignature(trackID string, formatID int, ts int64, secret string) string {
	payload := "trackgetFileUrlformat_id" + strconv.Itoa(formatID) +
		"intentstream" + "track_id" + trackID +
		strconv.FormatInt(ts, 10) + secret
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// FileURLParams builds the signed query parameters for track/getFileUrl.
func FileURLParams(trackID string, formatID int, ts int64, secret string) url.Values {
	params := url.Values{}
	params.Set("request_ts", strconv.FormatInt(ts, 10))
	params.Set("request_sig", FileURLSignature(trackID, formatID, ts, secret))
	params.Set("track_id", trackID)
	params.Set("format_id", strconv.Itoa(formatID))
	params.Set("intent", "stream")
	return params
}
