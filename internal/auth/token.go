package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/campushub/backend/types"
	"github.com/golang-jwt/jwt/v5"
)

// Verification failures, collapsed from the jwt library's error set.
// The gate treats them all as unauthenticated; the password-reset flow
// keeps ErrTokenExpired distinct because it is user-actionable.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Claims is the verified content of a signed token. Role is empty for
// reset tokens, which carry only the subject.
type Claims struct {
	Role types.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c Claims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id < 1 {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// TokenCodec issues and verifies HMAC-signed tokens. The secret and
// clock are injected at construction; nothing is read from the
// environment here, so tests can run with per-test secrets and a
// frozen clock.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec constructs a codec over the given signing secret.
// A nil clock defaults to time.Now.
func NewTokenCodec(secret []byte, now func() time.Time) *TokenCodec {
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: secret, now: now}
}

// IssueSession signs a session token carrying the subject and a role
// snapshot taken at issuance.
func (c *TokenCodec) IssueSession(userID int, role types.Role, ttl time.Duration) (string, error) {
	return c.sign(Claims{
		Role:             role,
		RegisteredClaims: c.registered(userID, ttl),
	})
}

// IssueReset signs a reset token. The claim set is the subject and
// expiry only; no role is embedded.
func (c *TokenCodec) IssueReset(userID int, ttl time.Duration) (string, error) {
	return c.sign(Claims{RegisteredClaims: c.registered(userID, ttl)})
}

func (c *TokenCodec) registered(userID int, ttl time.Duration) jwt.RegisteredClaims {
	now := c.now()
	return jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (c *TokenCodec) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks the signature before trusting any embedded field, then
// checks expiry against the codec's clock with zero leeway: a token is
// already expired at the instant now == exp.
func (c *TokenCodec) Verify(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return c.secret, nil
		},
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		default:
			return Claims{}, ErrTokenInvalid
		}
	}
	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
