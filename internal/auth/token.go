package auth

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/examforge/mcq-portal/internal/user"
)

// ErrInvalidToken is the only verification error callers ever see. Expired,
// tampered and malformed tokens are indistinguishable at the API boundary;
// the underlying cause is logged server-side.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	ProfileImage string `json:"profile_image,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the portal's session tokens. One secret,
// one TTL: the login-issued token and every other token follow the same
// policy.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

func (s *TokenService) Issue(u user.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    "mcq-portal",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify fails closed: any signature mismatch, structural corruption or
// past-expiry timestamp yields ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		log.Printf("token verify failed: %v", err)
		return nil, ErrInvalidToken
	}
	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return c, nil
}
