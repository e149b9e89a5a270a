package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listbridge/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	googleAuthURL   = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL  = "https://oauth2.googleapis.com/token"
)

var (
	spotifyScopes = []string{
		"user-read-private",
		"playlist-read-private",
		"playlist-read-collaborative",
		"playlist-modify-private",
		"playlist-modify-public",
	}
	googleScopes = []string{"https://www.googleapis.com/auth/youtube"}
)

// TokenStore persists OAuth tokens per provider.
type TokenStore interface {
	LoadToken(ctx context.Context, provider string) (*oauth2.Token, error)
	SaveToken(ctx context.Context, provider string, token *oauth2.Token) error
}

// SpotifyOAuthConfig builds the authorization code config for Spotify.
func SpotifyOAuthConfig(c shared.OAuthClientConfig) (*oauth2.Config, error) {
	return oauthConfig(c, oauth2.Endpoint{AuthURL: spotifyAuthURL, TokenURL: spotifyTokenURL}, spotifyScopes)
}

// GoogleOAuthConfig builds the authorization code config for the YouTube Data API.
func GoogleOAuthConfig(c shared.OAuthClientConfig) (*oauth2.Config, error) {
	return oauthConfig(c, oauth2.Endpoint{AuthURL: googleAuthURL, TokenURL: googleTokenURL}, googleScopes)
}

func oauthConfig(c shared.OAuthClientConfig, endpoint oauth2.Endpoint, scopes []string) (*oauth2.Config, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	redirect := c.RedirectURI
	if redirect == "" {
		redirect = "http://127.0.0.1:3000/callback"
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  redirect,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}, nil
}

// NewOAuthClient returns an HTTP client that refreshes token as needed and
// reports every new access token to onRefresh.
//
// The client's transport is rate limited and retried (see [Transport]).
func NewOAuthClient(ctx context.Context, conf *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token)) *http.Client {
	base := &http.Client{Transport: NewTransport(nil, DefaultRequestRate)}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	src := &refreshableTokenSource{source: conf.TokenSource(ctx, token), callback: onRefresh}
	if token != nil {
		src.last = token.AccessToken
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, src))
}

// ClientFromStore loads the stored token for provider and returns a client that
// writes refreshed tokens back to store. Failed writes are logged to logger, which may be nil.
func ClientFromStore(ctx context.Context, conf *oauth2.Config, store TokenStore, provider string, logger *log.Logger) (*http.Client, error) {
	token, err := store.LoadToken(ctx, provider)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: run `listbridge auth login %s`", shared.ErrAuthRequired, provider)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	save := func(t *oauth2.Token) {
		if err := store.SaveToken(context.WithoutCancel(ctx), provider, t); err != nil {
			logger.Warn("failed to save refreshed token", "provider", provider, "error", err)
		}
	}
	return NewOAuthClient(ctx, conf, token, save), nil
}

// refreshableTokenSource calls callback whenever the underlying source yields a new access token.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)

	mu   sync.Mutex
	last string
	seen bool
}

// Token implements [oauth2.TokenSource].
func (s *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := !s.seen || token.AccessToken != s.last
	s.seen = true
	s.last = token.AccessToken
	s.mu.Unlock()

	if changed && s.callback != nil {
		s.notify(token)
	}
	return token, nil
}

func (s *refreshableTokenSource) notify(token *oauth2.Token) {
	defer func() { _ = recover() }()
	s.callback(token)
}
