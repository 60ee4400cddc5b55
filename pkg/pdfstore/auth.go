package pdfstore

import (
	"crypto/subtle"
)

// Authenticator validates a bearer credential against the two configured
// shared secrets and classifies the caller. The admin key is a superset
// credential: it passes every check the standard key passes.
type Authenticator struct {
	apiKey   string
	adminKey string
}

// NewAuthenticator creates an authenticator with the configured secrets.
func NewAuthenticator(apiKey, adminKey string) *Authenticator {
	return &Authenticator{apiKey: apiKey, adminKey: adminKey}
}

// Authenticate validates a raw credential. With adminRequired set, only an
// exact match against the admin secret succeeds. The distinction between a
// missing credential and a wrong one is kept in the returned error for
// diagnostics; callers surface both identically.
func (a *Authenticator) Authenticate(credential string, adminRequired bool) (ClientIdentity, error) {
	if credential == "" {
		return ClientIdentity{}, ErrMissingCredential
	}

	isAdmin := a.adminKey != "" && secureCompare(credential, a.adminKey)

	if adminRequired {
		if isAdmin {
			return ClientIdentity{ID: ClientIDAdmin, IsAdmin: true}, nil
		}
		return ClientIdentity{}, ErrAdminRequired
	}

	if isAdmin {
		return ClientIdentity{ID: ClientIDAdmin, IsAdmin: true}, nil
	}
	if a.apiKey != "" && secureCompare(credential, a.apiKey) {
		return ClientIdentity{ID: ClientIDUser, IsAdmin: false}, nil
	}

	return ClientIdentity{}, ErrInvalidAPIKey
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
