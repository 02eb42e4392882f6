package domain

import "strings"

// AnonymousTenant is used when the identity carries neither email nor subject
const AnonymousTenant = "anonymous"

// Session is the authenticated caller, passed explicitly to services
type Session struct {
	Subject  string `json:"subject"`
	Email    string `json:"email,omitempty"`
	TenantID string `json:"tenantId"`
}

// NewSession derives the tenant id from the identity
func NewSession(subject, email string) *Session {
	return &Session{
		Subject:  subject,
		Email:    email,
		TenantID: TenantIDFor(subject, email),
	}
}

// TenantIDFor sanitises the email, or the subject when there is no email
func TenantIDFor(subject, email string) string {
	if email != "" {
		return SanitizeTenantID(email)
	}
	if subject != "" {
		return SanitizeTenantID(subject)
	}
	return AnonymousTenant
}

// SanitizeTenantID replaces every rune outside [A-Za-z0-9] with '_'
func SanitizeTenantID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
