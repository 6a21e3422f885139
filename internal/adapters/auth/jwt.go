// Package auth verifies connection credentials before a session is
// allowed to register. Identity issuance lives outside this service;
// the verifier only maps a signed token to a stable user id.
package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Parley/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type signalClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// Verify parses the token and returns the user identity: the subject
// is the user id, the optional name claim the display name. Any parse,
// signature, or expiry failure rejects the connection.
func (v *Verifier) Verify(token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrInvalidToken
	}

	var claims signalClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return domain.User{}, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return domain.User{}, ErrInvalidToken
	}
	name := claims.Name
	if name == "" {
		name = "guest"
	}
	user, err := domain.NewUser(domain.UserID(claims.Subject), name)
	if err != nil {
		return domain.User{}, errors.Join(ErrInvalidToken, err)
	}
	return *user, nil
}
