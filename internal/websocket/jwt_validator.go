package websocket

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email string `json:"email"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// tokenValidator is the part of validator.Validator used here
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// Auth0JWTValidator validates Auth0 JWT tokens for WebSocket connections.
// Browsers cannot set headers on the upgrade request, so the token arrives
// as a query parameter.
type Auth0JWTValidator struct {
	validator tokenValidator
}

// NewAuth0JWTValidator creates a new Auth0JWTValidator
func NewAuth0JWTValidator(domain, audience string) (*Auth0JWTValidator, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Auth0JWTValidator{validator: jwtValidator}, nil
}

// ValidateToken validates a JWT token and returns the session it identifies
func (v *Auth0JWTValidator) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return sessionFromClaims(validatedClaims), nil
}

func sessionFromClaims(claims *validator.ValidatedClaims) *domain.Session {
	var email string
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		email = custom.Email
	}
	return domain.NewSession(claims.RegisteredClaims.Subject, email)
}
