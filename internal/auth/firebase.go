package auth

import (
	"context"
	"fmt"

	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// FirebaseAuthenticator verifies Firebase ID tokens through the Google
// Identity Toolkit accounts.lookup endpoint, which both validates the token
// signature server-side and returns the account record in one call.
type FirebaseAuthenticator struct {
	svc *identitytoolkit.Service
}

// NewFirebaseAuthenticator creates an authenticator using the project's
// Firebase web API key.
func NewFirebaseAuthenticator(ctx context.Context, apiKey string) (*FirebaseAuthenticator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("firebase api key is empty")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identity toolkit service: %w", err)
	}
	return &FirebaseAuthenticator{svc: svc}, nil
}

func (a *FirebaseAuthenticator) Verify(ctx context.Context, idToken string) (*Identity, error) {
	resp, err := a.svc.Relyingparty.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		IdToken: idToken,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	if len(resp.Users) == 0 {
		return nil, fmt.Errorf("verify id token: no account for token")
	}
	u := resp.Users[0]
	return &Identity{UID: u.LocalId, Email: u.Email}, nil
}

func (a *FirebaseAuthenticator) EmailForUID(ctx context.Context, uid string) (string, error) {
	resp, err := a.svc.Relyingparty.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		LocalId: []string{uid},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("lookup uid %s: %w", uid, err)
	}
	if len(resp.Users) == 0 {
		return "", fmt.Errorf("lookup uid %s: no account", uid)
	}
	return resp.Users[0].Email, nil
}
