package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/repositories"
	"github.com/desertthunder/listbridge/internal/server"
	"github.com/desertthunder/listbridge/internal/services"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// oauthProviders are the providers that can be authorized, in display order.
var oauthProviders = []string{models.ProviderSpotify, models.ProviderYouTube}

func (r *Runner) oauthConfig(provider string) (*oauth2.Config, error) {
	switch provider {
	case models.ProviderSpotify:
		return services.SpotifyOAuthConfig(r.config.Credentials.Spotify)
	case models.ProviderYouTube:
		return services.GoogleOAuthConfig(r.config.Credentials.Google.OAuthClientConfig)
	case "":
		return nil, fmt.Errorf("%w: provider (spotify or youtube)", shared.ErrMissingArgument)
	default:
		return nil, fmt.Errorf("%w: cannot authorize %q (spotify or youtube)", shared.ErrInvalidArgument, provider)
	}
}

// AuthLogin performs the OAuth2 authorization code flow for a provider.
//
// Starts a local HTTP server, opens the browser for consent, and stores the exchanged token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	provider := cmd.StringArg("provider")
	conf, err := r.oauthConfig(provider)
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	var addr string
	if s := r.config.Server; s.Host != "" && s.Port > 0 {
		addr = net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	}

	r.writePlain("Opening the browser to authorize %s...\n", provider)
	token, err := server.Login(ctx, server.LoginOpts{
		Config:   conf,
		Provider: provider,
		Addr:     addr,
		OpenURL:  r.openURL,
		Logger:   shared.WithLogger(r.logger, "component", "oauth"),
	})
	if err != nil {
		return err
	}

	if err := repositories.NewTokenRepository(db).SaveToken(ctx, provider, token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.config.Database.Path)
	r.writePlain("You can now use: listbridge playlists list --from %s\n", provider)
	return nil
}

// AuthLogout deletes the stored token of a provider.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	provider := cmd.StringArg("provider")
	if provider == "" {
		return fmt.Errorf("%w: provider (spotify or youtube)", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	if err := repositories.NewTokenRepository(db).DeleteToken(ctx, provider); err != nil {
		return err
	}

	r.logger.Info("token deleted", "provider", provider)
	return r.writePlain("✓ Logged out of %s\n", provider)
}

// AuthStatus reports the stored credentials of each provider.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	tokens := repositories.NewTokenRepository(db)

	r.writePlainHeader("Authentication")
	for _, provider := range oauthProviders {
		token, err := tokens.LoadToken(ctx, provider)
		if err != nil {
			return err
		}

		switch {
		case token == nil:
			r.writePlain("%-8s ✗ Not authenticated\n", provider)
		case token.Expiry.IsZero() || token.Expiry.After(time.Now()):
			r.writePlain("%-8s ✓ Authenticated\n", provider)
		case token.RefreshToken != "":
			r.writePlain("%-8s ✓ Authenticated (access token refreshes on next use)\n", provider)
		default:
			r.writePlain("%-8s ✗ Token expired\n", provider)
		}
	}
	return nil
}
