package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listbridge/internal/mapping"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ReviewListView ViewState = iota
	CandidateView
	TransferView
	ResultView
)

const logPaneLines = 8

// Reviewer lists and settles pending reviews.
type Reviewer interface {
	Pending(ctx context.Context) ([]*models.PendingReview, error)
	Resolve(ctx context.Context, id string, choice models.Track) error
	Skip(ctx context.Context, id string) error
}

// TransferFunc runs a transfer, reporting progress to observer.
type TransferFunc func(ctx context.Context, observer tasks.Observer) (*models.TransferReport, error)

// Options configures a [Model]. Reviewer enables the review views; Transfer starts in the transfer view.
type Options struct {
	Reviewer   Reviewer
	Transfer   TransferFunc
	Thresholds mapping.Thresholds
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	reviewer   Reviewer
	transfer   TransferFunc
	thresholds mapping.Thresholds
	width      int
	height     int

	reviewList    list.Model
	candidateList list.Model
	reviews       []*models.PendingReview
	selected      *models.PendingReview
	status        string

	events   chan Msg
	progress tasks.ProgressUpdate
	logLines []string
	bar      progress.Model
	report   *models.TransferReport

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	th := opts.Thresholds
	if th.AutoAccept == 0 {
		th = mapping.DefaultThresholds()
	}
	view := ReviewListView
	if opts.Transfer != nil {
		view = TransferView
	}

	m := &Model{
		ctx:        ctx,
		view:       view,
		reviewer:   opts.Reviewer,
		transfer:   opts.Transfer,
		thresholds: th,
		width:      80,
		height:     24,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:       help.New(),
		keys:       newKeyMap(),
	}
	m.reviewList = m.newList("Pending reviews", nil)
	m.candidateList = m.newList("Candidates", nil)
	return m
}

// ViewState reports the active view.
func (m *Model) ViewState() ViewState {
	return m.view
}

// Err returns the error that stopped the TUI, if any.
func (m *Model) Err() error {
	return m.err
}

// Report returns the transfer report once the run completes.
func (m *Model) Report() *models.TransferReport {
	return m.report
}

func (m *Model) newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init starts the transfer when one is configured, otherwise loads pending reviews.
func (m *Model) Init() tea.Cmd {
	if m.transfer != nil {
		return m.startTransfer()
	}
	return m.loadReviews()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.reviewList.SetSize(msg.Width-4, msg.Height-8)
		m.candidateList.SetSize(msg.Width-4, msg.Height-10)
		m.bar.Width = min(60, max(10, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ReviewListView:
			return m.handleReviewListKeys(msg)
		case CandidateView:
			return m.handleCandidateKeys(msg)
		case TransferView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgReviewsLoaded:
		data := msg.data.(reviewsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.reviews = data.reviews
		items := make([]list.Item, len(data.reviews))
		for i, r := range data.reviews {
			items[i] = reviewItem{review: r}
		}
		m.reviewList.Title = fmt.Sprintf("Pending reviews (%d)", len(items))
		return m, m.reviewList.SetItems(items)

	case MsgReviewHandled:
		data := msg.data.(reviewHandled)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("✗ %q not %s: %v", data.title, data.action, data.err))
		} else {
			m.status = styles.ok.Render(fmt.Sprintf("✓ %q %s", data.title, data.action))
		}
		m.view = ReviewListView
		m.selected = nil
		return m, m.loadReviews()

	case MsgProgressUpdate:
		u := msg.data.(tasks.ProgressUpdate)
		m.progress = u
		if u.Phase != tasks.SaveCheckpoint {
			m.logLines = append(m.logLines, u.Message)
			if len(m.logLines) > logPaneLines {
				m.logLines = m.logLines[len(m.logLines)-logPaneLines:]
			}
		}
		return m, m.waitForEvent()

	case MsgTransferComplete:
		data := msg.data.(transferComplete)
		m.report = data.report
		m.err = data.err
		m.view = ResultView
		m.events = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ReviewListView:
		return m.renderReviewList()
	case CandidateView:
		return m.renderCandidates()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleReviewListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.reviewList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.reviewList.SelectedItem().(reviewItem); ok {
			m.openReview(item.review)
		}
		return m, nil
	case key.Matches(msg, m.keys.skip):
		if item, ok := m.reviewList.SelectedItem().(reviewItem); ok {
			return m, m.skip(item.review)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleCandidateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ReviewListView
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.accept):
		if item, ok := m.candidateList.SelectedItem().(candidateItem); ok && m.selected != nil {
			return m, m.resolve(m.selected, item.candidate.Track)
		}
		return m, nil
	case key.Matches(msg, m.keys.skip):
		if m.selected != nil {
			return m, m.skip(m.selected)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.review) && m.reviewer != nil && m.err == nil:
		m.view = ReviewListView
		return m, m.loadReviews()
	}
	return m, nil
}

func (m *Model) openReview(r *models.PendingReview) {
	m.selected = r
	items := make([]list.Item, len(r.Candidates))
	for i, c := range r.Candidates {
		items[i] = candidateItem{candidate: c}
	}
	m.candidateList = m.newList(fmt.Sprintf("Candidates for %q", r.Track.Title), items)
	m.candidateList.SetSize(m.width-4, m.height-10)
	m.view = CandidateView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ReviewListView:
		m.reviewList, cmd = m.reviewList.Update(msg)
	case CandidateView:
		m.candidateList, cmd = m.candidateList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadReviews() tea.Cmd {
	return func() tea.Msg {
		if m.reviewer == nil {
			return reviewsLoadedMsg(nil, nil)
		}
		reviews, err := m.reviewer.Pending(m.ctx)
		return reviewsLoadedMsg(reviews, err)
	}
}

func (m *Model) resolve(r *models.PendingReview, choice models.Track) tea.Cmd {
	return func() tea.Msg {
		return reviewHandledMsg(r.Track.Title, "resolved", m.reviewer.Resolve(m.ctx, r.ID, choice))
	}
}

func (m *Model) skip(r *models.PendingReview) tea.Cmd {
	return func() tea.Msg {
		return reviewHandledMsg(r.Track.Title, "skipped", m.reviewer.Skip(m.ctx, r.ID))
	}
}

func (m *Model) startTransfer() tea.Cmd {
	events := make(chan Msg, 64)
	m.events = events
	run := m.transfer
	ctx := m.ctx

	go func() {
		defer close(events)
		report, err := run(ctx, func(u tasks.ProgressUpdate) {
			select {
			case events <- progressUpdateMsg(u):
			case <-ctx.Done():
			}
		})
		events <- transferCompleteMsg(report, err)
	}()

	return m.waitForEvent()
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) renderReviewList() string {
	helpView := m.help.ShortHelpView(m.keys.helpFor(ReviewListView, false))
	if len(m.reviews) == 0 {
		return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", styles.title.Render("Pending reviews"), styles.ok.Render("✓ Nothing to review"), m.status, helpView)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.reviewList.View(), m.status, helpView)
}

func (m *Model) renderCandidates() string {
	r := m.selected
	header := styles.title.Render(fmt.Sprintf("%s by %s", r.Track.Title, artistLine(r.Track)))
	if len(r.Candidates) == 0 {
		body := styles.warn.Render("No candidates were found for this track.")
		helpView := m.help.ShortHelpView(m.keys.helpFor(CandidateView, false)[1:])
		return fmt.Sprintf("%s\n%s\n\n%s", header, body, helpView)
	}

	var best string
	if item, ok := m.candidateList.SelectedItem().(candidateItem); ok {
		s := item.candidate.Score
		best = styles.Score(s, m.thresholds.AutoAccept, m.thresholds.Review).Render(fmt.Sprintf("score %d", s))
	}
	helpView := m.help.ShortHelpView(m.keys.helpFor(CandidateView, false))
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, m.candidateList.View(), best, helpView)
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render("Transferring playlists")

	percent := 0.0
	if m.progress.Total > 0 {
		percent = float64(m.progress.Step) / float64(m.progress.Total)
	}
	counter := fmt.Sprintf("%d/%d tracks • %s", m.progress.Step, m.progress.Total, m.progress.Phase)
	pane := styles.pane.Render(strings.Join(m.logLines, "\n"))

	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s", title, m.bar.ViewAs(percent), counter, pane, m.help.ShortHelpView(m.keys.helpFor(TransferView, false)))
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Transfer failed: %v\n\nThe checkpoint was kept; run `listbridge transfer resume` to continue.\nPress q to quit", m.err))
	}
	if m.report == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	r := m.report
	title := styles.ok.Render("✓ Transfer complete")
	info := fmt.Sprintf("\nRun: %s\nSource: %s → %s\nProcessed: %d/%d", r.RunID, r.Source, r.TargetProvider, r.Processed, r.Total)

	var failed string
	if n := len(r.Failures); n > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("%d tracks without a confident match:", n))
		for i, f := range r.Failures {
			if i == 10 {
				failed += fmt.Sprintf("\n  … and %d more", n-10)
				break
			}
			failed += fmt.Sprintf("\n  • %s - %s", artistLine(f.Track), f.Track.Title)
		}
	}

	keys := m.keys.helpFor(ResultView, m.reviewer != nil && len(r.Failures) > 0)
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, m.help.ShortHelpView(keys))
}
