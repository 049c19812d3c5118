package auth

import (
	"context"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/errs"
)

// JWTValidator verifies bearer tokens against a provider's JWKS, cached and
// auto-refreshed, adapted from the teacher's JWKS-cache validator and
// generalized to emit a Principal instead of a provider-specific Claims
// struct.
type JWTValidator struct {
	jwksURL  string
	issuer   string
	audience string
	cache    *jwk.Cache
}

// NewJWTValidator builds a validator from cfg and performs an initial JWKS
// fetch to fail fast on misconfiguration.
func NewJWTValidator(ctx context.Context, cfg config.AuthConfig) (*JWTValidator, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(cfg.JWKSURL, jwk.WithMinRefreshInterval(cfg.JWKSRefresh)); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "auth: register jwks url", err)
	}
	if _, err := cache.Refresh(ctx, cfg.JWKSURL); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "auth: fetch jwks", err)
	}

	return &JWTValidator{jwksURL: cfg.JWKSURL, issuer: cfg.Issuer, audience: cfg.Audience, cache: cache}, nil
}

// ValidateToken verifies tokenString's signature, expiry, issuer, and
// audience, then extracts a Principal from its claims. A token that fails
// verification is Unauthenticated; a failure to fetch the JWKS keyset is
// Unavailable.
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (Principal, error) {
	keyset, err := v.cache.Get(ctx, v.jwksURL)
	if err != nil {
		return Principal{}, errs.Wrap(errs.Unavailable, "auth: fetch jwks keyset", err)
	}

	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKeySet(keyset),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return Principal{}, errs.Wrap(errs.Unauthenticated, "auth: invalid token", err)
	}

	principal := Principal{
		UserID:      token.Subject(),
		UserType:    Public,
		Permissions: map[string]bool{},
	}

	if email, ok := token.Get("email"); ok {
		if s, ok := email.(string); ok {
			principal.Email = s
		}
	}

	if userType, ok := token.Get("user_type"); ok {
		if s, ok := userType.(string); ok {
			switch UserType(s) {
			case JobSeeker, Partner, Admin, Public:
				principal.UserType = UserType(s)
			}
		}
	}

	if perms, ok := token.Get("permissions"); ok {
		if list, ok := perms.([]interface{}); ok {
			for _, p := range list {
				if s, ok := p.(string); ok {
					principal.Permissions[s] = true
				}
			}
		}
	}

	return principal, nil
}

// Close does nothing. The underlying cache has no explicit close; the
// JWKS auto-refresh goroutine stops when the context passed to
// NewJWTValidator is cancelled.
func (v *JWTValidator) Close() {}
