package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, credential string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {
	// No authentication applied
}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, credential string) {
	req.Header.Set("Authorization", "Bearer "+credential)
}

// SchemeAuth sends the credential in the Authorization header behind an
// arbitrary scheme, e.g. Okta's "SSWS <token>".
type SchemeAuth struct {
	Scheme string
}

// Apply implements the Authenticator interface for SchemeAuth.
func (a *SchemeAuth) Apply(req *http.Request, credential string) {
	if a.Scheme == "" {
		req.Header.Set("Authorization", credential)
		return
	}
	req.Header.Set("Authorization", a.Scheme+" "+credential)
}

// SSWS returns the authenticator for Okta API tokens.
func SSWS() Authenticator {
	return &SchemeAuth{Scheme: "SSWS"}
}
