package auth

import (
	"crypto/subtle"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/user"
)

// DemoProvider is the pseudo-identity strategy for zero-config deployments:
// a fixed admin identity that exists only in memory and never touches the
// user store. A disabled provider matches nothing and resolves nothing.
type DemoProvider struct {
	enabled  bool
	email    string
	password string
}

func NewDemoProvider(enabled bool, email, password string) *DemoProvider {
	return &DemoProvider{
		enabled:  enabled,
		email:    email,
		password: password,
	}
}

func (p *DemoProvider) Enabled() bool {
	return p != nil && p.enabled
}

// Match reports whether the given credentials are the demo credentials.
func (p *DemoProvider) Match(email, password string) bool {
	if !p.Enabled() {
		return false
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(p.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(p.password)) == 1

	return emailOK && passOK
}

// Resolve returns the synthetic identity for the reserved demo subject, or
// false when the subject is not the demo sentinel (or demo is off).
func (p *DemoProvider) Resolve(subjectID string) (user.User, bool) {
	if !p.Enabled() || subjectID != user.DemoUserID {
		return user.User{}, false
	}

	return p.Identity(), true
}

// Identity is the fixed in-memory admin the demo login hands out.
func (p *DemoProvider) Identity() user.User {
	now := time.Now().UTC()

	return user.User{
		ID:        user.DemoUserID,
		Email:     p.email,
		Name:      "Demo Admin",
		Role:      user.RoleAdmin,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
