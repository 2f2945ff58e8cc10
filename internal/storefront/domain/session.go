package domain

// Credentials is the stored credential pair for a storefront session. The
// token and email are treated as one atomic unit: both present or both
// absent, never one without the other.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// IsAuthenticated reports whether a token is present. The token is not
// validated against the backend here; a stale token surfaces as a 403 on the
// next guarded call.
func (c *Credentials) IsAuthenticated() bool {
	return c != nil && c.Token != ""
}
