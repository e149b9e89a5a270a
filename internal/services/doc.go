// Package services defines the [Provider] interface for music catalogs and implements it for Spotify and YouTube.
//
// # Provider Interface
//
// Every catalog exposes the same six operations (list playlists, read tracks, create a playlist,
// add items, search and describe its [Capabilities]), so the transfer engine never depends on a
// concrete client. Pagination and chunking are internal to each provider.
//
// # Spotify
//
// [SpotifyProvider] wraps github.com/zmb3/spotify/v2 over an OAuth2 HTTP client.
// Track ids handed to [SpotifyProvider.AddItems] are Spotify URIs and are added in chunks of 100.
//
// # YouTube
//
// [YouTubeProvider] wraps google.golang.org/api/youtube/v3 over an OAuth2 HTTP client and keeps an
// advisory [QuotaUsage] based on the documented unit cost of each endpoint. [PublicYouTubeReader] reads public playlists
// without credentials through github.com/kkdai/youtube/v2 and supports no write operations.
//
// # Transport
//
// [Transport] rate limits every request with golang.org/x/time/rate and retries transport
// failures and 429/5xx responses of reads with exponential [Backoff]. Writes pass through once
// and are retried per item or chunk by the provider instead.
//
// # Error Handling
//
// Providers wrap failures with sentinels from the shared package:
//   - [shared.ErrAuthRequired] : missing or expired credential (HTTP 401); never retried
//   - [shared.ErrAPIRequest] : any other non-2xx response, see [StatusError]
//   - [shared.ErrNotSupported] : capability absent on a read-only provider
package services
