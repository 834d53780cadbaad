package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// AuthConfig selects and parameterizes the Drive authentication mode.
type AuthConfig struct {
	Mode        string // "oauth" or "service_account"
	Credentials string // OAuth client secrets file
	Token       string // cached OAuth token file
	SAKey       string // service account key file
}

// NewGoogleDrive builds a gateway with the configured auth mode. A missing
// credentials file or an unknown mode is a fatal setup error.
func NewGoogleDrive(ctx context.Context, cfg AuthConfig) (*GoogleDrive, error) {
	switch cfg.Mode {
	case "oauth":
		return fromOAuth(ctx, cfg.Credentials, cfg.Token)
	case "service_account":
		return fromServiceAccount(ctx, cfg.SAKey)
	default:
		return nil, fmt.Errorf("NewGoogleDrive: unsupported auth mode: %q", cfg.Mode)
	}
}

func fromServiceAccount(ctx context.Context, keyPath string) (*GoogleDrive, error) {
	if _, err := os.Stat(keyPath); err != nil {
		return nil, fmt.Errorf("fromServiceAccount: service account key %q: %w", keyPath, err)
	}

	svc, err := drivev3.NewService(ctx,
		option.WithCredentialsFile(keyPath),
		option.WithScopes(drivev3.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("fromServiceAccount: creating drive service: %w", err)
	}
	return &GoogleDrive{service: svc}, nil
}

func fromOAuth(ctx context.Context, credsPath, tokenPath string) (*GoogleDrive, error) {
	b, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("fromOAuth: reading client secrets %q: %w", credsPath, err)
	}

	oauthCfg, err := google.ConfigFromJSON(b, drivev3.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("fromOAuth: parsing client secrets: %w", err)
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		tok, err = tokenFromWeb(ctx, oauthCfg)
		if err != nil {
			return nil, fmt.Errorf("fromOAuth: %w", err)
		}
		if err := saveToken(tokenPath, tok); err != nil {
			return nil, fmt.Errorf("fromOAuth: %w", err)
		}
	}

	svc, err := drivev3.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("fromOAuth: creating drive service: %w", err)
	}
	return &GoogleDrive{service: svc}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token file %q: %w", path, err)
	}
	return tok, nil
}

// tokenFromWeb runs the interactive installed-app flow: print the consent
// URL, read the authorization code from stdin, exchange it for a token.
func tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser, then paste the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating token file %q: %w", path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("writing token file %q: %w", path, err)
	}
	return nil
}
