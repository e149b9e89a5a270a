package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgReviewsLoaded MsgKind = iota
	MsgReviewHandled
	MsgProgressUpdate
	MsgTransferComplete
)

type reviewsLoaded struct {
	reviews []*models.PendingReview
	err     error
}

type reviewHandled struct {
	title  string
	action string
	err    error
}

type transferComplete struct {
	report *models.TransferReport
	err    error
}

// reviewsLoadedMsg is the constructor for [MsgReviewsLoaded]
func reviewsLoadedMsg(reviews []*models.PendingReview, err error) Msg {
	return Msg{kind: MsgReviewsLoaded, data: reviewsLoaded{reviews, err}}
}

// reviewHandledMsg is the constructor for [MsgReviewHandled]
func reviewHandledMsg(title, action string, err error) Msg {
	return Msg{kind: MsgReviewHandled, data: reviewHandled{title, action, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// transferCompleteMsg is the constructor for [MsgTransferComplete]
func transferCompleteMsg(report *models.TransferReport, err error) Msg {
	return Msg{kind: MsgTransferComplete, data: transferComplete{report, err}}
}
