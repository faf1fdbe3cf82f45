package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rzbill/sluice/internal/ledger"
)

// ErrNoCredentials is returned when a request carries no bearer token.
var ErrNoCredentials = errors.New("auth: no credentials")

// Claims are the token claims; Subject carries the caller's address.
type Claims struct {
	jwt.RegisteredClaims
}

// Config selects the HS256 secret and optional issuer/audience checks.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
}

// Verifier checks bearer tokens and resolves them to addresses.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer, audience: cfg.Audience, now: time.Now}
}

// Enabled reports whether a secret is configured. Without one every caller
// is anonymous.
func (v *Verifier) Enabled() bool { return v != nil && len(v.secret) > 0 }

func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	return v.secret, nil
}

// Verify validates token and returns the address in its subject.
func (v *Verifier) Verify(token string) (ledger.Address, error) {
	if !v.Enabled() {
		return ledger.Address{}, errors.New("auth: verification disabled (no secret configured)")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, v.keyFunc, opts...); err != nil {
		return ledger.Address{}, fmt.Errorf("auth: invalid token: %w", err)
	}
	addr, err := ledger.ParseAddress(claims.Subject)
	if err != nil {
		return ledger.Address{}, fmt.Errorf("auth: bad subject: %w", err)
	}
	return addr, nil
}

// Issue mints an HS256 token for addr valid for ttl.
func Issue(cfg Config, addr ledger.Address, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("auth: secret is required to issue tokens")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   addr.String(),
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("auth: authorization header must be 'Bearer <token>'")
	}
	return strings.TrimSpace(token), nil
}

// Authenticate resolves an Authorization header. A missing header yields
// ErrNoCredentials so callers can proceed anonymously.
func (v *Verifier) Authenticate(header string) (ledger.Address, error) {
	token, err := BearerToken(header)
	if err != nil {
		return ledger.Address{}, err
	}
	return v.Verify(token)
}

type callerKey struct{}

// WithCaller attaches an authenticated caller to ctx.
func WithCaller(ctx context.Context, addr ledger.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, addr)
}

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(ctx context.Context) (ledger.Address, bool) {
	addr, ok := ctx.Value(callerKey{}).(ledger.Address)
	return addr, ok
}

// ContextOracle answers witness checks from the caller stored in ctx.
type ContextOracle struct{}

func (ContextOracle) CheckWitness(ctx context.Context, addr ledger.Address) bool {
	caller, ok := CallerFrom(ctx)
	return ok && caller == addr
}

// RequireCaller fails unless the authenticated caller is addr.
func RequireCaller(ctx context.Context, op string, addr ledger.Address) error {
	if !(ContextOracle{}).CheckWitness(ctx, addr) {
		return ledger.Unauthorized(op, "caller does not control %s", addr)
	}
	return nil
}
