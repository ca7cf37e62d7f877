package auth

// Profile is the authenticated identity produced by an identity client.
// It is what gets cached under the session id.
type Profile struct {
	ID            string         `json:"id"`                    // client-scoped subject
	ClientName    string         `json:"client_name"`           // client that produced it
	UserID        string         `json:"user_id,omitempty"`     // internal user, when linked
	Email         string         `json:"email,omitempty"`       // as asserted by the provider
	EmailVerified bool           `json:"email_verified"`        // provider asserts ownership
	DisplayName   string         `json:"display_name,omitempty"`
	Roles         []string       `json:"roles,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}

// TypedID qualifies the subject with the client name so ids from different
// clients never collide.
func (p *Profile) TypedID() string {
	return p.ClientName + "#" + p.ID
}

// HasRole reports whether the profile carries role.
func (p *Profile) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
