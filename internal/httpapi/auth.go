package httpapi

import (
	"errors"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

var errInvalidToken = errors.New("invalid or expired token")

// AuthConfig configures bearer token verification. Tokens are HS256 and
// their subject claim names the principal.
type AuthConfig struct {
	JWTSecret string
	// Issuer, when set, must match the iss claim.
	Issuer string
}

// Auth rejects requests without a valid bearer token and stores the
// principal for handlers.
func Auth(cfg AuthConfig) fiber.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "missing authorization header")
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return unauthorized(c, "invalid authorization header format")
		}

		principal, err := verify(parser, strings.TrimSpace(token), cfg.JWTSecret)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func verify(parser *jwt.Parser, token, secret string) (domain.Principal, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return domain.Principal{}, errInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Principal{}, errors.New("token has no subject")
	}
	return domain.Principal{ID: claims.Subject}, nil
}

// principalFrom returns the principal set by Auth.
func principalFrom(c *fiber.Ctx) domain.Principal {
	p, _ := c.Locals(principalKey).(domain.Principal)
	return p
}
