package graph

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// AuthConfig holds the Azure AD app registration used for device-code
// sign-in. The app must be configured as a public client.
type AuthConfig struct {
	ClientID string
	TenantID string // "common" when empty
	Scopes   []string
}

// DefaultScopes are the delegated permissions the workbook client needs.
var DefaultScopes = []string{"Files.ReadWrite", "User.Read"}

func (a AuthConfig) oauthConfig() *oauth2.Config {
	tenant := a.TenantID
	if tenant == "" {
		tenant = "common"
	}
	scopes := a.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	base := "https://login.microsoftonline.com/" + tenant + "/oauth2/v2.0"
	return &oauth2.Config{
		ClientID: a.ClientID,
		Scopes:   scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:       base + "/authorize",
			TokenURL:      base + "/token",
			DeviceAuthURL: base + "/devicecode",
		},
	}
}

// Authenticate runs the OAuth device-code flow. prompt receives the user
// code and verification URI to display; the call blocks until the user
// completes sign-in or ctx expires.
func Authenticate(ctx context.Context, cfg AuthConfig, prompt func(userCode, verificationURI string)) (*oauth2.Token, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("graph auth: client id is required")
	}
	oc := cfg.oauthConfig()

	da, err := oc.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initiate device flow: %w", err)
	}
	if prompt != nil {
		prompt(da.UserCode, da.VerificationURI)
	}

	tok, err := oc.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("device flow sign-in: %w", err)
	}
	return tok, nil
}
