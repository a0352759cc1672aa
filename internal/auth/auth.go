// Package auth verifies Firebase bearer credentials and resolves user emails.
package auth

import "context"

// Identity is a verified caller.
type Identity struct {
	UID   string
	Email string
}

// Authenticator validates bearer tokens and resolves identities to emails.
type Authenticator interface {
	// Verify checks an ID token and returns the identity it encodes.
	Verify(ctx context.Context, idToken string) (*Identity, error)

	// EmailForUID resolves a user identifier to its email address.
	EmailForUID(ctx context.Context, uid string) (string, error)
}
