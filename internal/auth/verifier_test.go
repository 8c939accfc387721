package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/toko-checkout/internal/common"
)

const testSecret = "test-secret"

func signToken(t *testing.T, alg jwa.SignatureAlgorithm, build func(*jwt.Builder) *jwt.Builder) string {
	t.Helper()
	now := time.Now()
	b := jwt.NewBuilder().
		Issuer("issuer").
		Audience([]string{"aud"}).
		Subject("42").
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(time.Minute))
	if build != nil {
		b = build(b)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(alg, []byte(testSecret)))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func TestVerifierSubject(t *testing.T) {
	v := NewVerifier(testSecret, "issuer", "aud")
	sub, err := v.Subject(signToken(t, jwa.HS256, nil))
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if sub != "42" {
		t.Fatalf("expected subject 42, got %q", sub)
	}
}

func TestVerifierRejects(t *testing.T) {
	v := NewVerifier(testSecret, "issuer", "aud")
	now := time.Now()
	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong alg":      signToken(t, jwa.HS384, nil),
		"wrong issuer":   signToken(t, jwa.HS256, func(b *jwt.Builder) *jwt.Builder { return b.Issuer("other") }),
		"wrong audience": signToken(t, jwa.HS256, func(b *jwt.Builder) *jwt.Builder { return b.Audience([]string{"x"}) }),
		"expired": signToken(t, jwa.HS256, func(b *jwt.Builder) *jwt.Builder {
			return b.IssuedAt(now.Add(-2 * time.Hour)).NotBefore(now.Add(-2 * time.Hour)).Expiration(now.Add(-time.Minute))
		}),
		"not yet valid": signToken(t, jwa.HS256, func(b *jwt.Builder) *jwt.Builder {
			return b.NotBefore(now.Add(5 * time.Minute)).Expiration(now.Add(10 * time.Minute))
		}),
		"no subject": signToken(t, jwa.HS256, func(b *jwt.Builder) *jwt.Builder { return b.Subject("") }),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Subject(token)
			if err == nil {
				t.Fatal("expected error")
			}
			if !common.IsAppError(err) {
				t.Fatalf("expected AppError, got %T", err)
			}
		})
	}
}

func TestVerifierWrongSecret(t *testing.T) {
	v := NewVerifier("another-secret", "issuer", "aud")
	if _, err := v.Subject(signToken(t, jwa.HS256, nil)); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestVerifierClock(t *testing.T) {
	v := NewVerifier(testSecret, "issuer", "aud")
	token := signToken(t, jwa.HS256, nil)
	v.Now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := v.Subject(token); err == nil {
		t.Fatal("expected expiry relative to injected clock")
	}
}

func TestMiddleware(t *testing.T) {
	m := Middleware{Verifier: NewVerifier(testSecret, "issuer", "aud")}
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = common.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwa.HS256, nil))
	rec := httptest.NewRecorder()
	m.RequireAuth(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != "42" {
		t.Fatalf("expected authenticated pass-through, got %d user %q", rec.Code, seen)
	}

	seen = ""
	rec = httptest.NewRecorder()
	m.RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec = httptest.NewRecorder()
	m.Authenticate(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != "" {
		t.Fatalf("expected anonymous pass-through, got %d user %q", rec.Code, seen)
	}
}
