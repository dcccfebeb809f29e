package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/lifecourse/lifecourse/internal/common"
)

func testIssuer(t *testing.T, opts ...IssuerOption) *Issuer {
	t.Helper()
	i, err := NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, opts...)
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}
	return i
}

func sampleClaims() Claims {
	orgID := int64(7)
	return Claims{
		UserID:           42,
		Username:         "instructor.jane",
		Role:             RoleInstructor,
		OrganizationID:   &orgID,
		OrganizationName: "City Red Cross",
		TokenVersion:     3,
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)
	pair, err := issuer.Issue(sampleClaims())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	got, err := issuer.Verify(pair.AccessToken, ClassAccess)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	want := sampleClaims()
	if got.UserID != want.UserID || got.Username != want.Username || got.Role != want.Role {
		t.Fatalf("claims mismatch: got %+v", got)
	}
	if got.OrganizationID == nil || *got.OrganizationID != *want.OrganizationID {
		t.Fatalf("organization id mismatch: %+v", got.OrganizationID)
	}
	if got.OrganizationName != want.OrganizationName {
		t.Fatalf("organization name mismatch: %q", got.OrganizationName)
	}
	if got.TokenVersion != want.TokenVersion {
		t.Fatalf("token version mismatch: %d", got.TokenVersion)
	}
	if got.SessionID == "" {
		t.Fatalf("expected generated session id")
	}
}

func TestIssue_PairSharesSessionID(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)
	pair, err := issuer.Issue(sampleClaims())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	access, err := issuer.Verify(pair.AccessToken, ClassAccess)
	if err != nil {
		t.Fatalf("Verify access error: %v", err)
	}
	refresh, err := issuer.Verify(pair.RefreshToken, ClassRefresh)
	if err != nil {
		t.Fatalf("Verify refresh error: %v", err)
	}
	if access.SessionID != refresh.SessionID {
		t.Fatalf("session ids differ: %q vs %q", access.SessionID, refresh.SessionID)
	}
}

func TestVerify_CrossSecretRejection(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)
	pair, err := issuer.Issue(sampleClaims())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := issuer.Verify(pair.AccessToken, ClassRefresh); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("access token verified as refresh: %v", err)
	}
	if _, err := issuer.Verify(pair.RefreshToken, ClassAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("refresh token verified as access: %v", err)
	}
}

func TestVerify_Expiry(t *testing.T) {
	t.Parallel()

	clock := time.Now()
	issuer := testIssuer(t, WithNowTime(func() time.Time { return clock }))

	pair, err := issuer.Issue(sampleClaims())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Still valid just before expiry.
	clock = clock.Add(14 * time.Minute)
	if _, err := issuer.Verify(pair.AccessToken, ClassAccess); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	// Rejected after, even though the signature is intact.
	clock = clock.Add(2 * time.Minute)
	if _, err := issuer.Verify(pair.AccessToken, ClassAccess); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}

	// The refresh token outlives the access token.
	if _, err := issuer.Verify(pair.RefreshToken, ClassRefresh); err != nil {
		t.Fatalf("refresh token rejected early: %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)
	for _, tok := range []string{"", "not.a.jwt", "a.b"} {
		if _, err := issuer.Verify(tok, ClassAccess); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("Verify(%q): want ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestNewIssuer_SecretValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewIssuer("", "r", time.Minute, time.Hour); err == nil {
		t.Fatalf("expected error for empty access secret")
	}
	if _, err := NewIssuer("a", "", time.Minute, time.Hour); err == nil {
		t.Fatalf("expected error for empty refresh secret")
	}
	if _, err := NewIssuer("same", "same", time.Minute, time.Hour); err == nil {
		t.Fatalf("expected error for identical secrets")
	}
}

func TestExtractBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Basic dXNlcg==", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
	}

	for _, tt := range tests {
		token, ok := ExtractBearer(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Fatalf("ExtractBearer(%q) = (%q, %v), want (%q, %v)", tt.header, token, ok, tt.token, tt.ok)
		}
	}
}

func TestValidRole(t *testing.T) {
	t.Parallel()

	for _, role := range []string{RoleAdmin, RoleInstructor, RoleAccountant, RoleOrganization} {
		if !ValidRole(role) {
			t.Fatalf("ValidRole(%q) = false", role)
		}
	}
	if ValidRole("superuser") {
		t.Fatalf("ValidRole accepted an unknown role")
	}
}
