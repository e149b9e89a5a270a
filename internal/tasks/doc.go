// Package tasks orchestrates playlist operations between music providers with synchronous progress reporting.
//
// # Core Operations
//
// The [Orchestrator] exposes three operations:
//
//  1. [Orchestrator.TransferCollection] : Full collection transfer to a target provider
//     - Creates one destination playlist per source playlist, in order
//     - Reuses accepted match decisions and searches only for undecided tracks
//     - Adds matched ids once per playlist and checkpoints after each playlist
//     - Returns a [models.TransferReport] with every unmatched track
//
//  2. [Orchestrator.AutoMap] : Matching pass without writes to the target
//     - Records auto-accepted decisions
//     - Queues everything below the threshold for manual review
//
//  3. [Orchestrator.ResolveReview] / [Orchestrator.SkipReview] : Manual review
//     - Resolving records a manual decision so later transfers reuse it
//
// [BulkExport] writes playlists of any provider to files with a rate-limited worker pool.
//
// # Progress Reporting
//
// Progress is delivered to an [Observer] on the calling goroutine, after every
// track and every playlist. The [ProgressUpdate] struct contains phase, step
// counters, messages, and optional data for advanced UI rendering.
//
// # Resuming
//
// Checkpoints are written through a [CheckpointStore] after each playlist and
// cleared when a run completes. Passing the last checkpoint as
// [TransferRequest.ResumeFrom] skips the playlists it covers.
//
// # Implementation
//
// [Orchestrator] depends on:
//   - [mapping.Searcher] : candidate search and scoring with an LRU cache
//   - [Target] : destination provider operations (see [TargetFromProvider])
//   - [CheckpointStore], [MatchStore], [ReviewStore], [ReportStore] : optional persistence (the repositories package)
package tasks
