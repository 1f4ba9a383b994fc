package tokens

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-32-bytes-should-be-long-enough"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssue_ValidAndClaims(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(testSecret, 24*time.Hour).WithClock(fixedClock(issued))

	tokenStr, err := m.Issue()
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	claims, err := m.Verify(tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("unexpected role: %q", claims.Role)
	}
	if claims.Issuer != Issuer {
		t.Fatalf("unexpected issuer: %q", claims.Issuer)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 24*time.Hour {
		t.Fatalf("unexpected lifetime: %v", got)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tokenStr, err := NewManager(testSecret, 24*time.Hour).WithClock(fixedClock(issued)).Issue()
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	justBefore := NewManager(testSecret, 24*time.Hour).WithClock(fixedClock(issued.Add(23*time.Hour + 59*time.Minute)))
	if _, err := justBefore.Verify(tokenStr); err != nil {
		t.Fatalf("token should still be valid at T+23h59m: %v", err)
	}

	justAfter := NewManager(testSecret, 24*time.Hour).WithClock(fixedClock(issued.Add(24*time.Hour + time.Minute)))
	_, err = justAfter.Verify(tokenStr)
	if err == nil {
		t.Fatalf("token should be expired at T+24h01m")
	}
	if !errors.Is(err, ErrInvalidToken) || !Expired(err) {
		t.Fatalf("expected expired invalid-token error, got %v", err)
	}
}

func TestVerify_WrongSecretFails(t *testing.T) {
	tokenStr, err := NewManager("secret-one-32-bytes-xxxxxxxxxxxxxxxx", time.Hour).Issue()
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	_, err = NewManager("different-secret-xxxxxxxxxxxxxxxx", time.Hour).Verify(tokenStr)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token with wrong secret, got %v", err)
	}
	if Expired(err) {
		t.Fatalf("signature failure must not be reported as expiry")
	}
}

func TestVerify_Malformed(t *testing.T) {
	if _, err := NewManager(testSecret, time.Hour).Verify("not.a.jwt"); err == nil {
		t.Fatalf("expected verify to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestVerify_AlgNoneRejected(t *testing.T) {
	payload := `{"role":"admin","iss":"portfolio-api","exp":9999999999}`
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(payload))
	tok := headerEnc + "." + payloadEnc + "."
	if _, err := NewManager(testSecret, time.Hour).Verify(tok); err == nil {
		t.Fatalf("expected verify to reject alg=none token")
	}
}

// Tampering with payload must fail signature verification
func TestVerify_TamperedPayload(t *testing.T) {
	m := NewManager(testSecret, 5*time.Minute)
	tokenStr, err := m.Issue()
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, _ := base64.RawURLEncoding.DecodeString(parts[1])
	payloadStr := strings.Replace(string(payloadBytes), `"role":"admin"`, `"role":"root"`, 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(payloadStr))
	if _, err := m.Verify(strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}

func TestVerify_WrongIssuerOrRole(t *testing.T) {
	sign := func(c Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	m := NewManager(testSecret, time.Hour)

	if _, err := m.Verify(sign(Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: exp}})); err == nil {
		t.Fatalf("expected foreign issuer to be rejected")
	}
	if _, err := m.Verify(sign(Claims{Role: "viewer", RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: exp}})); err == nil {
		t.Fatalf("expected non-admin role to be rejected")
	}
	if _, err := m.Verify(sign(Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer}})); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}
}
