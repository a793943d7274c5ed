package auth

import (
	"net/http"
	"time"

	"github.com/campushub/backend/types"
)

// CookieName is the session cookie set at login and cleared at logout.
const CookieName = "token"

// DefaultSessionTTL bounds how long a session token is accepted.
const DefaultSessionTTL = 24 * time.Hour

// SessionManager binds signed tokens to an HTTP cookie. No session
// state is kept server side: a token stays valid until its expiry, and
// logout only clears the client's copy. Rotating the signing secret
// invalidates every outstanding session at once.
type SessionManager struct {
	codec  *TokenCodec
	ttl    time.Duration
	secure bool
}

// NewSessionManager constructs a manager over the given codec. secure
// controls the Secure cookie attribute and should be true whenever the
// service is reached over TLS.
func NewSessionManager(codec *TokenCodec, ttl time.Duration, secure bool) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{codec: codec, ttl: ttl, secure: secure}
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a session token for the user and wraps it in a cookie
// the transport layer should set. The cookie is HttpOnly and
// SameSite=Strict so page scripts cannot read it and cross-site
// requests never carry it.
func (m *SessionManager) Issue(user types.User) (*http.Cookie, error) {
	token, err := m.codec.IssueSession(user.ID, user.Role, m.ttl)
	if err != nil {
		return nil, err
	}
	cookie := m.baseCookie()
	cookie.Value = token
	cookie.MaxAge = int(m.ttl.Seconds())
	return cookie, nil
}

// Clear returns a cookie that expires immediately, with the same
// attributes as an issued one so clients accept the clearing
// instruction.
func (m *SessionManager) Clear() *http.Cookie {
	cookie := m.baseCookie()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}

func (m *SessionManager) baseCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
