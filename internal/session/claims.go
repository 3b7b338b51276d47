package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// segmentParser re-pads segments before decoding, so both padded and raw
// encodings are accepted.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// expClaim reads the optional numeric exp claim from the middle segment of
// token. The signature is not checked; the remote service stays the authority.
func expClaim(token string) (float64, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[1] == "" {
		return 0, false
	}
	// standard alphabet -> URL-safe, the decoder only speaks the latter
	seg := strings.NewReplacer("+", "-", "/", "_").Replace(parts[1])
	raw, err := segmentParser.DecodeSegment(seg)
	if err != nil {
		return 0, false
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return 0, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok || exp == 0 {
		return 0, false
	}
	return exp, true
}

// expired reports whether token carries an exp claim at or before now,
// taken in whole seconds. A fractional exp is compared as is.
// Tokens without a numeric exp never expire locally.
func expired(token string, now time.Time) bool {
	exp, ok := expClaim(token)
	if !ok {
		return false
	}
	return exp <= float64(now.Unix())
}
