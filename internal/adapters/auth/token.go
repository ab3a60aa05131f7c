package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"communityhub/internal/domain"
)

// jwtClaims carries the principal's role and subscription tier alongside the
// registered subject claim.
type jwtClaims struct {
	jwt.RegisteredClaims
	Role         string `json:"role"`
	Subscription string `json:"subscription,omitempty"`
}

// JWTProvider signs and verifies HS256 bearer tokens. The external auth
// system issues these tokens; the core only consumes them through the
// TokenVerifier interface.
type JWTProvider struct {
	secret []byte
}

// NewJWTProvider returns a provider keyed with the given shared secret.
func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

var (
	_ domain.TokenIssuer   = (*JWTProvider)(nil)
	_ domain.TokenVerifier = (*JWTProvider)(nil)
)

func (p *JWTProvider) Issue(principal domain.Principal, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Role:         string(principal.Role),
		Subscription: string(principal.Subscription),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (p *JWTProvider) Verify(tokenString string) (domain.Principal, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	role := domain.Role(claims.Role)
	if role == "" {
		role = domain.RoleMember
	}
	return domain.Principal{
		ID:           claims.Subject,
		Role:         role,
		Subscription: domain.Track(claims.Subscription),
	}, nil
}
