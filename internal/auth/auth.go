// Package auth resolves the caller of a request from its bearer token.
//
// Tokens are issued elsewhere; this package only verifies HS256 tokens
// carrying "user_id" and "role" claims.
package auth

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Principal is the resolved caller. The zero value is an anonymous visitor.
type Principal struct {
	UserID string
	Email  string
	Role   string
	admin  bool
}

// Anonymous is the principal of requests without credentials.
var Anonymous = Principal{}

func (p Principal) IsAdmin() bool {
	return p.admin
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != ""
}

// NewAdmin builds an admin principal. Handler tests use it to skip token parsing.
func NewAdmin(userID string) Principal {
	return Principal{UserID: userID, Role: "admin", admin: true}
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom returns the principal stored by the auth middleware or Anonymous.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(ctxKey{}).(Principal); ok {
		return p
	}
	return Anonymous
}

var (
	ErrMalformedHeader = errors.New("authorization header must be 'Bearer <token>'")
	ErrInvalidToken    = errors.New("invalid token")
)

// Verifier checks bearer tokens signed with a shared secret.
type Verifier struct {
	secret    []byte
	adminRole string
}

func NewVerifier(secret, adminRole string) *Verifier {
	return &Verifier{secret: []byte(secret), adminRole: adminRole}
}

// FromHeader resolves an Authorization header value. An empty header is
// Anonymous without error.
func (v *Verifier) FromHeader(header string) (Principal, error) {
	if header == "" {
		return Anonymous, nil
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Anonymous, ErrMalformedHeader
	}
	return v.Verify(parts[1])
}

func (v *Verifier) Verify(tokenString string) (Principal, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Anonymous, errors.Wrap(ErrInvalidToken, errMessage(err))
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return Anonymous, errors.Wrap(ErrInvalidToken, "missing user_id or role claim")
	}
	email, _ := claims["email"].(string)

	return Principal{
		UserID: userID,
		Email:  email,
		Role:   role,
		admin:  role == v.adminRole,
	}, nil
}

func errMessage(err error) string {
	if err == nil {
		return "token not valid"
	}
	return err.Error()
}
