package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/vidlens/backend/internal/state"
)

var (
	// ErrInvalidFormat indicates the value is not a structurally valid JWT.
	ErrInvalidFormat = errors.New("token is not a 3-segment jwt")
)

// DefaultTTL is assumed when the upstream response does not carry an
// explicit lifetime.
const DefaultTTL = 24 * time.Hour

// refreshWindow is how close to expiry a token must be before a proactive
// refresh is worthwhile.
const refreshWindow = time.Hour

// Claims is the subset of guest-token claims the dashboard reads.
type Claims struct {
	Exp      int64  `json:"exp"`
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

// Store persists the upstream guest bearer token alongside an absolute
// expiry timestamp. Decode and parse failures never escape: they degrade to
// "absent" or "expired" so callers can always fall back to a fresh login.
type Store struct {
	state *state.File
	now   func() time.Time
}

// NewStore constructs a token store backed by the provided state file.
func NewStore(st *state.File) *Store {
	return &Store{state: st, now: time.Now}
}

// WithNowFunc overrides the time source. Useful for tests.
func (s *Store) WithNowFunc(now func() time.Time) *Store {
	s.now = now
	return s
}

// SetToken validates and persists a token together with its absolute expiry.
// A zero or negative ttl falls back to DefaultTTL. The underlying state file
// already clears itself and retries once on a failed write.
func (s *Store) SetToken(tok string, ttl time.Duration) error {
	if !IsValidFormat(tok) {
		return ErrInvalidFormat
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := s.state.Set(state.KeyAuthToken, tok); err != nil {
		return err
	}
	return s.state.Set(state.KeyTokenExpiry, s.now().Add(ttl).UnixMilli())
}

// Token returns the stored token. A token whose exp claim has passed is
// removed as a side effect and reported as absent.
func (s *Store) Token() (string, bool) {
	var tok string
	if !s.state.Get(state.KeyAuthToken, &tok) || tok == "" {
		return "", false
	}

	if s.expired(tok) {
		s.Clear()
		return "", false
	}
	return tok, true
}

// ShouldRefresh reports whether the stored token has between zero and one
// hour of lifetime remaining.
func (s *Store) ShouldRefresh() bool {
	var tok string
	if !s.state.Get(state.KeyAuthToken, &tok) || tok == "" {
		return false
	}

	var expiryMillis int64
	if !s.state.Get(state.KeyTokenExpiry, &expiryMillis) {
		return false
	}

	remaining := time.UnixMilli(expiryMillis).Sub(s.now())
	return remaining > 0 && remaining <= refreshWindow
}

// Clear removes the persisted token and its expiry.
func (s *Store) Clear() {
	_ = s.state.Delete(state.KeyAuthToken)
	_ = s.state.Delete(state.KeyTokenExpiry)
}

// IsExpired reports whether the token's exp claim is in the past. Any
// decode failure, including a missing exp claim, counts as expired.
func IsExpired(tok string, now time.Time) bool {
	claims, err := Decode(tok)
	if err != nil || claims.Exp == 0 {
		return true
	}
	return time.Unix(claims.Exp, 0).Before(now)
}

func (s *Store) expired(tok string) bool {
	return IsExpired(tok, s.now())
}

// IsValidFormat reports whether the value looks like a JWT: three
// dot-separated, non-empty segments.
func IsValidFormat(tok string) bool {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}

// Decode extracts the claims from the token's payload segment without
// verifying the signature; verification belongs to the upstream issuer.
func Decode(tok string) (Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidFormat
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		// Some issuers pad their segments.
		payload, err = base64.URLEncoding.DecodeString(parts[1])
		if err != nil {
			return Claims{}, err
		}
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
