// Package server runs the short-lived local HTTP server behind `listbridge auth login`.
//
// [Login] listens on the host of the provider's redirect URL (127.0.0.1:3000
// unless configured otherwise), hands the consent URL to the caller's opener
// and returns the exchanged token. It stops on the first callback, on timeout
// or when the context is cancelled. Spotify and Google share the flow.
//
// [OAuthHandler] serves the callback path. It checks the state parameter,
// exchanges the code using a PKCE verifier and accepts a single result; later
// callbacks get an error page.
//
// [BasicRouter] mounts handlers on an [http.ServeMux] with method patterns and
// wraps them in [Middleware]. The last middleware added runs innermost.
// [RequestLogger] and [Recoverer] are the two [Login] installs.
package server
