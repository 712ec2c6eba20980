package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret = errors.New("jwt: secret vacío")
	ErrNoSubject   = errors.New("jwt: token sin usuario")
)

// Identity quién ejecuta la acción. UserID termina en created_by/deleted_by del ledger.
type Identity struct {
	UserID string
	Role   string
}

// Claims claims estándar más el rol; el usuario viaja en sub.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Signer firma y verifica tokens HS256 de un emisor.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner construye el firmador. ttl es la validez de los tokens emitidos.
func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Sign emite un token para la identidad.
func (s *Signer) Sign(id Identity) (string, error) {
	return s.SignFor(id, s.ttl)
}

// SignFor emite un token con una validez distinta a la por defecto.
func (s *Signer) SignFor(id Identity, ttl time.Duration) (string, error) {
	if id.UserID == "" {
		return "", ErrNoSubject
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify valida firma, emisor y expiración y devuelve la identidad del token.
func (s *Signer) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("jwt: %w", err)
	}
	if claims.Subject == "" {
		return Identity{}, ErrNoSubject
	}
	return Identity{UserID: claims.Subject, Role: claims.Role}, nil
}
