package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")
	ErrNotSupported   = fmt.Errorf("operation not supported by provider")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthRequired  = fmt.Errorf("authentication required")
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrTokenExpired  = fmt.Errorf("access token expired")
	ErrStateMismatch = fmt.Errorf("oauth state mismatch")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// Provider errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrSearch           = fmt.Errorf("search failed")
	ErrProviderWrite    = fmt.Errorf("provider write failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrQuotaExceeded    = fmt.Errorf("quota exceeded")

	// Transfer errors
	ErrTransferRunning = fmt.Errorf("a transfer is already running")
	ErrCheckpoint      = fmt.Errorf("checkpoint persistence failed")
	ErrReviewNotFound  = fmt.Errorf("pending review not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrUnknownFormat   = fmt.Errorf("unknown format")
)
