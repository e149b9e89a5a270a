package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/tasks"
)

type fakeReviewer struct {
	mu       sync.Mutex
	pending  []*models.PendingReview
	resolved map[string]models.Track
	skipped  []string
	err      error
}

func (f *fakeReviewer) Pending(ctx context.Context) ([]*models.PendingReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]*models.PendingReview(nil), f.pending...), nil
}

func (f *fakeReviewer) Resolve(ctx context.Context, id string, choice models.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved == nil {
		f.resolved = make(map[string]models.Track)
	}
	f.resolved[id] = choice
	f.remove(id)
	return nil
}

func (f *fakeReviewer) Skip(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skipped = append(f.skipped, id)
	f.remove(id)
	return nil
}

func (f *fakeReviewer) remove(id string) {
	for i, r := range f.pending {
		if r.ID == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}

func newReviews() []*models.PendingReview {
	return []*models.PendingReview{
		{
			ID:             "r1",
			TargetProvider: "youtube",
			Track:          models.Track{Title: "Lost Song", Artists: []string{"Nobody"}},
			Candidates: []models.CandidateScore{
				{Track: models.Track{ID: "yt9", Title: "Lost Song (Live)", Artists: []string{"Nobody"}}, Score: 68},
				{Track: models.Track{ID: "yt8", Title: "Lost", Artists: []string{"Somebody"}}, Score: 40},
			},
		},
		{
			ID:             "r2",
			TargetProvider: "youtube",
			Track:          models.Track{Title: "Quiet Hours", Artists: []string{"Dusk"}},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive applies msg and then runs returned commands until none produce a [Msg].
func drive(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	for i := 0; msg != nil && i < 100; i++ {
		_, cmd := m.Update(msg)
		if cmd == nil {
			return
		}
		next := cmd()
		if _, ok := next.(Msg); !ok {
			return
		}
		msg = next
	}
}

func TestReviewFlow(t *testing.T) {
	t.Run("loads pending reviews on init", func(t *testing.T) {
		r := &fakeReviewer{pending: newReviews()}
		m := NewModel(context.Background(), Options{Reviewer: r})

		if m.ViewState() != ReviewListView {
			t.Fatalf("expected ReviewListView, got %v", m.ViewState())
		}
		drive(t, m, m.Init()())

		if len(m.reviews) != 2 {
			t.Fatalf("expected 2 reviews, got %d", len(m.reviews))
		}
		if !strings.Contains(m.View(), "Lost Song") {
			t.Errorf("expected review list to show track title, got %q", m.View())
		}
	})

	t.Run("accepting a candidate resolves the review", func(t *testing.T) {
		r := &fakeReviewer{pending: newReviews()}
		m := NewModel(context.Background(), Options{Reviewer: r})
		drive(t, m, m.Init()())

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.ViewState() != CandidateView {
			t.Fatalf("expected CandidateView, got %v", m.ViewState())
		}
		if !strings.Contains(m.View(), "score 68") {
			t.Errorf("expected selected candidate score in view, got %q", m.View())
		}

		drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		choice, ok := r.resolved["r1"]
		if !ok {
			t.Fatal("expected review r1 to be resolved")
		}
		if choice.ID != "yt9" {
			t.Errorf("expected yt9, got %s", choice.ID)
		}
		if m.ViewState() != ReviewListView {
			t.Errorf("expected ReviewListView after resolving, got %v", m.ViewState())
		}
		if len(m.reviews) != 1 {
			t.Errorf("expected 1 remaining review, got %d", len(m.reviews))
		}
	})

	t.Run("skip from the list", func(t *testing.T) {
		r := &fakeReviewer{pending: newReviews()}
		m := NewModel(context.Background(), Options{Reviewer: r})
		drive(t, m, m.Init()())

		drive(t, m, runes("s"))

		if len(r.skipped) != 1 || r.skipped[0] != "r1" {
			t.Errorf("expected r1 skipped, got %v", r.skipped)
		}
		if !strings.Contains(m.status, "skipped") {
			t.Errorf("expected status to mention skip, got %q", m.status)
		}
	})

	t.Run("esc returns to the list", func(t *testing.T) {
		r := &fakeReviewer{pending: newReviews()}
		m := NewModel(context.Background(), Options{Reviewer: r})
		drive(t, m, m.Init()())

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.ViewState() != ReviewListView {
			t.Errorf("expected ReviewListView, got %v", m.ViewState())
		}
		if len(r.resolved) != 0 || len(r.skipped) != 0 {
			t.Error("expected no review to be settled")
		}
	})

	t.Run("empty queue", func(t *testing.T) {
		m := NewModel(context.Background(), Options{Reviewer: &fakeReviewer{}})
		drive(t, m, m.Init()())

		if !strings.Contains(m.View(), "Nothing to review") {
			t.Errorf("expected empty state, got %q", m.View())
		}
	})

	t.Run("load error", func(t *testing.T) {
		m := NewModel(context.Background(), Options{Reviewer: &fakeReviewer{err: errors.New("db closed")}})
		drive(t, m, m.Init()())

		if m.Err() == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(m.View(), "db closed") {
			t.Errorf("expected error in view, got %q", m.View())
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := NewModel(context.Background(), Options{Reviewer: &fakeReviewer{}})
		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestTransferFlow(t *testing.T) {
	report := &models.TransferReport{
		RunID:          "run-1",
		Source:         "spotify",
		TargetProvider: "youtube",
		Processed:      2,
		Total:          2,
		Failures: []models.FailureRecord{
			{Track: models.Track{Title: "Lost Song", Artists: []string{"Nobody"}}, Reason: models.ReasonNoConfidentMatch},
		},
	}

	t.Run("progress then result", func(t *testing.T) {
		run := func(ctx context.Context, observe tasks.Observer) (*models.TransferReport, error) {
			observe(tasks.ProgressUpdate{Phase: tasks.MatchTrack, Step: 1, Total: 2, Message: "[1/2] ✓ City Lights"})
			observe(tasks.ProgressUpdate{Phase: tasks.SaveCheckpoint, Step: 1, Total: 2, Message: "Checkpoint saved (50%)"})
			observe(tasks.ProgressUpdate{Phase: tasks.MatchTrack, Step: 2, Total: 2, Message: "[2/2] ✗ Lost Song"})
			return report, nil
		}
		m := NewModel(context.Background(), Options{Transfer: run, Reviewer: &fakeReviewer{}})
		if m.ViewState() != TransferView {
			t.Fatalf("expected TransferView, got %v", m.ViewState())
		}

		drive(t, m, m.Init()())

		if m.ViewState() != ResultView {
			t.Fatalf("expected ResultView, got %v", m.ViewState())
		}
		if m.Report() != report {
			t.Error("expected report to be kept")
		}
		if len(m.logLines) != 2 {
			t.Errorf("expected checkpoint updates to stay out of the log pane, got %v", m.logLines)
		}
		view := m.View()
		if !strings.Contains(view, "Transfer complete") || !strings.Contains(view, "Lost Song") {
			t.Errorf("unexpected result view: %q", view)
		}
	})

	t.Run("log pane keeps the latest lines", func(t *testing.T) {
		run := func(ctx context.Context, observe tasks.Observer) (*models.TransferReport, error) {
			for i := 1; i <= 12; i++ {
				observe(tasks.ProgressUpdate{Phase: tasks.MatchTrack, Step: i, Total: 12, Message: strings.Repeat("x", i)})
			}
			return report, nil
		}
		m := NewModel(context.Background(), Options{Transfer: run})
		drive(t, m, m.Init()())

		if len(m.logLines) != logPaneLines {
			t.Fatalf("expected %d lines, got %d", logPaneLines, len(m.logLines))
		}
		if m.logLines[logPaneLines-1] != strings.Repeat("x", 12) {
			t.Errorf("expected last update at the bottom, got %q", m.logLines[logPaneLines-1])
		}
	})

	t.Run("failure keeps checkpoint hint", func(t *testing.T) {
		run := func(ctx context.Context, observe tasks.Observer) (*models.TransferReport, error) {
			return nil, errors.New("quota exceeded")
		}
		m := NewModel(context.Background(), Options{Transfer: run})
		drive(t, m, m.Init()())

		if m.Err() == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(m.View(), "transfer resume") {
			t.Errorf("expected resume hint, got %q", m.View())
		}
	})

	t.Run("r opens the review queue", func(t *testing.T) {
		run := func(ctx context.Context, observe tasks.Observer) (*models.TransferReport, error) {
			return report, nil
		}
		r := &fakeReviewer{pending: newReviews()}
		m := NewModel(context.Background(), Options{Transfer: run, Reviewer: r})
		drive(t, m, m.Init()())
		drive(t, m, runes("r"))

		if m.ViewState() != ReviewListView {
			t.Fatalf("expected ReviewListView, got %v", m.ViewState())
		}
		if len(m.reviews) != 2 {
			t.Errorf("expected 2 reviews, got %d", len(m.reviews))
		}
	})
}

func TestKeyHelp(t *testing.T) {
	k := newKeyMap()

	tc := []struct {
		name      string
		view      ViewState
		canReview bool
		want      int
	}{
		{name: "review list", view: ReviewListView, want: 3},
		{name: "candidates", view: CandidateView, want: 4},
		{name: "transfer", view: TransferView, want: 1},
		{name: "result without failures", view: ResultView, want: 1},
		{name: "result with failures", view: ResultView, canReview: true, want: 2},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := k.helpFor(tt.view, tt.canReview)
			if len(got) != tt.want {
				t.Fatalf("expected %d bindings, got %d", tt.want, len(got))
			}
			if last := got[len(got)-1]; last.Help().Key != "q" {
				t.Errorf("expected quit last, got %q", last.Help().Key)
			}
		})
	}
}
