package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/tchasinga/adminjobposter/config"
)

var ErrUnverifiedEmail = errors.New("google account email is not verified")

// GoogleProfile is the subset of the Google userinfo used to sign in.
type GoogleProfile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// GoogleIdentity exchanges an authorization code for the caller's profile.
type GoogleIdentity struct {
	conf *oauth2.Config
}

func NewGoogleIdentity(cfg *config.Config) *GoogleIdentity {
	return &GoogleIdentity{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				"openid",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (g *GoogleIdentity) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange google code: %w", err)
	}

	svc, err := googleOAuth2.NewService(ctx, option.WithTokenSource(g.conf.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("google oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return nil, ErrUnverifiedEmail
	}

	return &GoogleProfile{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
