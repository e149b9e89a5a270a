// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two entry points sharing one [Model]:
//  1. [TransferView] : Monitor a running transfer with a progress bar and a log pane
//  2. [ResultView] : Display the transfer report and the tracks left without a match
//  3. [ReviewListView] : Browse pending reviews queued by the matcher
//  4. [CandidateView] : Inspect the scored candidates of one review and accept or skip
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates from the orchestrator are forwarded through a buffered channel and read one message at a time,
// so the transfer goroutine never touches model state.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
