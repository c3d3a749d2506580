package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/dhkim-dev/markethub-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed token, or past expiry. Callers never learn which.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the decoded identity a verified token asserts.
type Claims struct {
	UserID   uint
	Username string
	Provider string
}

// Issuer signs and verifies bearer tokens with a single process-wide
// HS256 secret. There is no rotation and no per-user key.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token asserting the user's identity, valid for the
// issuer's TTL from now.
func (i *Issuer) Issue(user *models.User) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.LoginName(),
		"provider": user.Provider,
		"iat":      now.Unix(),
		"exp":      now.Add(i.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify checks signature, structure, and expiry against the issuer's
// clock and returns the decoded claims.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)

	t, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{UserID: uint(id)}
	if username, ok := mapClaims["username"].(string); ok {
		claims.Username = username
	}
	if provider, ok := mapClaims["provider"].(string); ok {
		claims.Provider = provider
	}
	return claims, nil
}
