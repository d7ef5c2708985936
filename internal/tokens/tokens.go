// Package tokens issues and verifies the signed session tokens handed out at login.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTTL = time.Hour

var ErrInvalidToken = errors.New("invalid token")

type Identity struct {
	No   uint
	ID   string
	Nick string
}

type Claims struct {
	No   uint   `json:"no"`
	ID   string `json:"id"`
	Nick string `json:"nick"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{No: c.No, ID: c.ID, Nick: c.Nick}
}

// JTI is the revocation key of the token.
func (c *Claims) JTI() string {
	return c.RegisteredClaims.ID
}

func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

type Service struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewService(secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{Secret: secret, TTL: ttl, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Issue(id Identity) (string, *Claims, error) {
	if len(s.Secret) == 0 {
		return "", nil, errors.New("tokens: empty secret")
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := s.now()
	claims := &Claims{
		No:   id.No,
		ID:   id.ID,
		Nick: id.Nick,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm and expiry. Every failure collapses to ErrInvalidToken.
func (s *Service) Verify(raw string) (*Claims, error) {
	if raw == "" || len(s.Secret) == 0 {
		return nil, ErrInvalidToken
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.Secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.JTI() == "" || claims.No == 0 {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
