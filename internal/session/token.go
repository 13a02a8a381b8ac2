// Package session signs and verifies the identity claims carried in the
// portal's session cookies.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

// Cookie names for the two session claims. Both must verify for a request
// to be treated as authenticated.
const (
	CookieOwnerID     = "owner_id"
	CookieDisplayName = "display_name"
)

// ErrTokenInvalid is returned for any token that fails verification:
// tampering, wrong signing method, or age beyond the allowed maximum.
// Callers treat it exactly like a missing session.
var ErrTokenInvalid = errors.New("invalid session token")

// identityClaims carries one identity value plus the issue time. No expiry
// is embedded; the maximum age is a verification-time decision.
type identityClaims struct {
	Identity string `json:"idy"`
	jwt.RegisteredClaims
}

// Signer issues and verifies signed identity claims with an HS256 MAC.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// New returns a Signer keyed by secret. When secret is empty a random one is
// generated for the lifetime of this process; tokens signed with it will not
// verify after a restart, which is logged rather than hidden.
func New(secret string) *Signer {
	key := []byte(secret)
	if len(key) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("session: generating secret: %v", err)
		}
		key = []byte(hex.EncodeToString(buf))
		log.Println("session: SESSION_SECRET not set; generated a process-local secret, existing sessions will not survive a restart")
	}
	return &Signer{secret: key, now: time.Now}
}

// Sign embeds identity and the current time into a signed token.
func (s *Signer) Sign(identity string) (string, error) {
	if identity == "" {
		return "", errors.New("empty identity")
	}
	claims := identityClaims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's MAC and age and returns the embedded identity.
// Any failure collapses to ErrTokenInvalid; no partial data comes back. The
// MAC comparison inside the JWT library is constant time.
func (s *Signer) Verify(token string, maxAge time.Duration) (string, error) {
	var claims identityClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrTokenInvalid
	}
	if claims.Identity == "" || claims.IssuedAt == nil {
		return "", ErrTokenInvalid
	}
	if s.now().Sub(claims.IssuedAt.Time) > maxAge {
		return "", ErrTokenInvalid
	}
	return claims.Identity, nil
}
