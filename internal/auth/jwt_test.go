package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/user"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	raw, err := m.GenerateToken("user-1", "a@b.test", user.RoleEditor)

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyToken(raw)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.UserID)
	}

	if claims.Role != user.RoleEditor {
		t.Errorf("role = %q, want editor", claims.Role)
	}

	if claims.Email != "a@b.test" {
		t.Errorf("email = %q", claims.Email)
	}
}

func TestExpiredTokenFails(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	raw, err := m.GenerateToken("user-1", "a@b.test", user.RoleAdmin)

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = m.VerifyToken(raw)

	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestWrongSecretFails(t *testing.T) {
	m1 := NewManager("secret-one", time.Hour)
	m2 := NewManager("secret-two", time.Hour)

	raw, err := m1.GenerateToken("user-1", "a@b.test", user.RoleAdmin)

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m2.VerifyToken(raw); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestGarbageTokenFails(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.VerifyToken(raw); err == nil {
			t.Errorf("VerifyToken(%q) accepted garbage", raw)
		}
	}
}

func TestDemoProviderMatch(t *testing.T) {
	p := NewDemoProvider(true, "demo@site.test", "pass123")

	if !p.Match("demo@site.test", "pass123") {
		t.Fatal("exact demo credentials must match")
	}

	if p.Match("demo@site.test", "wrong") {
		t.Fatal("wrong password must not match")
	}

	if p.Match("other@site.test", "pass123") {
		t.Fatal("wrong email must not match")
	}
}

func TestDemoProviderDisabled(t *testing.T) {
	p := NewDemoProvider(false, "demo@site.test", "pass123")

	if p.Match("demo@site.test", "pass123") {
		t.Fatal("disabled provider must match nothing")
	}

	if _, ok := p.Resolve(user.DemoUserID); ok {
		t.Fatal("disabled provider must not resolve the sentinel")
	}
}

func TestDemoProviderResolve(t *testing.T) {
	p := NewDemoProvider(true, "demo@site.test", "pass123")

	u, ok := p.Resolve(user.DemoUserID)

	if !ok {
		t.Fatal("sentinel subject must resolve")
	}

	if u.Role != user.RoleAdmin || !u.Active {
		t.Fatalf("demo identity = %+v, want active admin", u)
	}

	if _, ok := p.Resolve("some-real-user"); ok {
		t.Fatal("non-sentinel subject must not resolve via demo provider")
	}
}

func TestDemoIdentityTokenRoundTrip(t *testing.T) {
	p := NewDemoProvider(true, "demo@site.test", "pass123")
	m := NewManager("test-secret", time.Hour)

	id := p.Identity()

	raw, err := m.GenerateToken(id.ID, id.Email, id.Role)

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyToken(raw)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != user.DemoUserID || claims.Role != user.RoleAdmin {
		t.Fatalf("claims = %+v, want demo admin", claims)
	}
}
