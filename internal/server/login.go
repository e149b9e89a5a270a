package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listbridge/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultLoginTimeout bounds how long Login waits for the browser callback.
const DefaultLoginTimeout = 5 * time.Minute

// LoginOpts configures an interactive OAuth login.
type LoginOpts struct {
	Config   *oauth2.Config
	Provider string

	// Addr overrides the listen address. Defaults to the host and port of the redirect URL.
	Addr string

	// OpenURL is called with the consent page URL, usually [shared.OpenBrowser].
	OpenURL func(url string) error

	Timeout time.Duration
	Logger  *log.Logger
}

// Login runs the authorization code flow: it serves the redirect URL locally,
// opens the consent page and waits for the callback.
func Login(ctx context.Context, opts LoginOpts) (*oauth2.Token, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: oauth config", shared.ErrMissingArgument)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}

	addr := opts.Addr
	if addr == "" {
		u, err := url.Parse(opts.Config.RedirectURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("%w: redirect uri %q", shared.ErrInvalidConfig, opts.Config.RedirectURL)
		}
		addr = u.Host
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	handler := NewOAuthHandler(opts.Config, opts.Provider, state)

	router := NewBasicRouter()
	router.Use(Recoverer(logger), RequestLogger(logger))
	router.Handler(handler)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := handler.AuthCodeURL()
	logger.Info("waiting for authorization", "provider", opts.Provider, "addr", ln.Addr().String())
	if opts.OpenURL != nil {
		if err := opts.OpenURL(authURL); err != nil {
			logger.Warn("could not open browser, visit the URL manually", "url", authURL, "error", err)
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-handler.Result():
		if err := res.Error(); err != nil {
			return nil, err
		}
		return res.Token, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: no callback after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
