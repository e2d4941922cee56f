package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification errors.
var (
	ErrMissingToken     = errors.New("missing token")
	ErrInvalidSignature = errors.New("invalid token")
	ErrExpired          = errors.New("token expired")
)

const bearerScheme = "bearer"

// Claims is the JWT payload. Subject carries the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
// It is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. A ttl of zero issues tokens without expiry.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for userID.
func (s *TokenService) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("issue token: empty user id")
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its user ID.
func (s *TokenService) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalidSignature
	}

	if claims.Subject == "" {
		return "", ErrInvalidSignature
	}
	return claims.Subject, nil
}

// VerifyHeader extracts the bearer token from an Authorization header value
// and verifies it.
func (s *TokenService) VerifyHeader(header string) (string, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return "", err
	}
	return s.Verify(token)
}

// ParseBearer returns the second space-separated field of the header.
// The header is split on single spaces, so "Bearer  tok" has an empty token.
// A missing header or empty token is ErrMissingToken; a present token under
// any scheme other than Bearer is ErrInvalidSignature.
func ParseBearer(header string) (string, error) {
	scheme, rest, _ := strings.Cut(header, " ")
	token, _, _ := strings.Cut(rest, " ")
	if token == "" {
		return "", ErrMissingToken
	}
	if !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrInvalidSignature
	}
	return token, nil
}
