package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// Claims checks issuer, audience and time-based claims of a parsed token.
type Claims struct {
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

func (c Claims) validate(tok jwt.Token, now time.Time) error {
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
	}
	if c.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(c.ClockSkew))
	}
	if c.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.Issuer))
	}
	if c.Audience != "" {
		options = append(options, jwt.WithAudience(c.Audience))
	}
	return jwt.Validate(tok, options...)
}

// Verifier resolves bearer tokens issued by the storefront into user ids.
// Only HMAC tokens signed with Secret are accepted.
type Verifier struct {
	Secret    []byte
	Algorithm jwa.SignatureAlgorithm
	Claims    Claims
	Now       func() time.Time
}

// NewVerifier builds an HS256 verifier.
func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{
		Secret:    []byte(secret),
		Algorithm: jwa.HS256,
		Claims:    Claims{Issuer: issuer, Audience: audience, ClockSkew: 30 * time.Second},
	}
}

// Subject verifies token and returns its subject claim.
func (v *Verifier) Subject(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", unauthorized("missing token", nil)
	}
	algorithm, err := tokenAlgorithm(trimmed)
	if err != nil {
		return "", unauthorized("invalid token", err)
	}
	if v.Algorithm != "" && algorithm != v.Algorithm {
		return "", unauthorized("invalid token", fmt.Errorf("auth: unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, v.Secret), jwt.WithValidate(false))
	if err != nil {
		return "", unauthorized("invalid token", err)
	}
	if err := v.Claims.validate(parsed, v.now()); err != nil {
		return "", unauthorized("invalid token", err)
	}
	if parsed.Subject() == "" {
		return "", unauthorized("invalid token", errors.New("auth: token has no subject"))
	}
	return parsed.Subject(), nil
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func tokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) != 1 {
		return "", errors.New("auth: token must carry exactly one signature")
	}
	headers := signatures[0].ProtectedHeaders()
	if headers == nil {
		return "", errors.New("auth: token missing protected headers")
	}
	alg := headers.Algorithm()
	switch alg {
	case "":
		return "", errors.New("auth: token missing algorithm")
	case jwa.NoSignature:
		return "", errors.New("auth: token uses none algorithm")
	}
	return alg, nil
}

func unauthorized(message string, err error) *common.AppError {
	return common.NewAppError(common.CodeUnauthorized, message, http.StatusUnauthorized, err)
}
