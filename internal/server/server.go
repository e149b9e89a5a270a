package server

import "net/http"

// Middleware decorates a handler registered on a [BasicRouter].
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which GET paths it answers,
// so the login server can mount it without repeating its routes.
type Handler interface {
	http.Handler
	Routes() []string
}
