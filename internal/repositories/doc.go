// package repositories provides the SQLite persistence layer.
//
// Each repository wraps a *sql.DB opened by [shared.OpenDatabase] and stores
// one concern: transfer checkpoints and reports, match decisions, pending
// reviews, OAuth tokens and YouTube quota usage. Structured values (tracks,
// candidates, failures) are stored as JSON text columns.
package repositories
