package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listbridge/internal/mapping"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/services"
	"github.com/desertthunder/listbridge/internal/shared"
)

// DefaultAppName is appended to destination playlist names and attribution lines.
const DefaultAppName = "ListBridge"

// OrchestratorOpts configures an [Orchestrator]. Only Searcher is required.
type OrchestratorOpts struct {
	Searcher    *mapping.Searcher
	Checkpoints CheckpointStore
	Matches     MatchStore
	Reviews     ReviewStore
	Reports     ReportStore
	Observer    Observer
	Logger      *log.Logger

	AppName           string
	Locale            string
	DefaultVisibility models.Visibility

	// Now overrides the clock used for attribution lines and timestamps.
	Now func() time.Time
}

// TransferRequest describes one run.
type TransferRequest struct {
	Collection *models.Collection
	Target     Target

	// RunID identifies the run. Defaults to ResumeFrom's run or a new uuid.
	RunID string

	// ResumeFrom skips every playlist up to and including the checkpoint's playlist.
	ResumeFrom *models.TransferCheckpoint
}

// Orchestrator moves collections between providers.
//
// A single run may be active at a time: callers must not invoke
// TransferCollection concurrently on the same Orchestrator.
type Orchestrator struct {
	searcher    *mapping.Searcher
	checkpoints CheckpointStore
	matches     MatchStore
	reviews     ReviewStore
	reports     ReportStore
	observer    Observer
	logger      *log.Logger

	appName    string
	locale     string
	visibility models.Visibility
	now        func() time.Time

	mu     sync.Mutex
	status models.TransferStatus
	books  map[string]models.MatchBook
}

// NewOrchestrator creates an Orchestrator in the idle state.
func NewOrchestrator(opts OrchestratorOpts) (*Orchestrator, error) {
	if opts.Searcher == nil {
		return nil, fmt.Errorf("%w: searcher", shared.ErrMissingArgument)
	}

	o := &Orchestrator{
		searcher:    opts.Searcher,
		checkpoints: opts.Checkpoints,
		matches:     opts.Matches,
		reviews:     opts.Reviews,
		reports:     opts.Reports,
		observer:    opts.Observer,
		logger:      opts.Logger,
		appName:     opts.AppName,
		locale:      opts.Locale,
		visibility:  opts.DefaultVisibility,
		now:         opts.Now,
		status:      models.StatusIdle,
		books:       make(map[string]models.MatchBook),
	}
	if o.checkpoints == nil {
		o.checkpoints = &memoryCheckpoints{}
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.appName == "" {
		o.appName = DefaultAppName
	}
	if o.locale == "" {
		o.locale = mapping.DefaultLocale
	}
	if o.visibility == "" {
		o.visibility = models.VisibilityPrivate
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// Status reports the state of the most recent run.
func (o *Orchestrator) Status() models.TransferStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) setStatus(s models.TransferStatus) {
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
}

func (o *Orchestrator) notify(u ProgressUpdate) {
	if o.observer != nil {
		o.observer(u)
	}
}

// TransferCollection copies every playlist of the collection to the target.
//
// Each track is resolved from an accepted decision when one exists, otherwise
// through the Searcher; unmatched tracks and failed searches become failures
// and never stop the run. Provider write and checkpoint errors, and search
// errors caused by auth, quota or cancellation, abort the run, leave the last
// checkpoint in place and are returned wrapped in [shared.ErrProviderWrite],
// [shared.ErrCheckpoint] or [shared.ErrSearch].
func (o *Orchestrator) TransferCollection(ctx context.Context, req TransferRequest) (*models.TransferReport, error) {
	if req.Collection == nil {
		return nil, fmt.Errorf("%w: collection", shared.ErrMissingArgument)
	}
	if err := req.Target.validate(); err != nil {
		return nil, err
	}

	c := req.Collection
	target := req.Target
	total := c.TotalTracks()
	runID := req.RunID
	if runID == "" && req.ResumeFrom != nil {
		runID = req.ResumeFrom.RunID
	}
	if runID == "" {
		runID = shared.GenerateID()
	}
	logger := o.logger.With("run", runID, "target", target.ProviderName)

	book, err := o.book(ctx, target.ProviderName)
	if err != nil {
		return nil, err
	}

	o.setStatus(models.StatusRunning)

	cp := models.TransferCheckpoint{RunID: runID, Total: total, Failures: []models.FailureRecord{}}
	skipThrough := -1
	if r := req.ResumeFrom; r != nil {
		skipThrough = slices.IndexFunc(c.Playlists, func(p models.Playlist) bool { return p.ID == r.PlaylistID })
		if skipThrough >= 0 {
			for _, p := range c.Playlists[:skipThrough+1] {
				cp.Processed += len(p.Tracks)
			}
			cp.PlaylistID = r.PlaylistID
			cp.TargetPlaylistID = r.TargetPlaylistID
			cp.Failures = append(cp.Failures, r.Failures...)
			logger.Info("resuming transfer", "after", r.PlaylistID, "processed", cp.Processed)
		}
	}

	o.notify(transferStartedUpdate(cp.Processed, total, runID))
	if err := o.saveCheckpoint(ctx, &cp); err != nil {
		return nil, o.fail(cp, err)
	}

	for i, p := range c.Playlists {
		if i <= skipThrough {
			continue
		}

		opts := o.playlistOptions(p, c.Source)
		targetID, err := target.CreatePlaylist(ctx, opts)
		if err != nil {
			return nil, o.fail(cp, wrap(shared.ErrProviderWrite, err, "create playlist %q", opts.Name))
		}
		logger.Info("created playlist", "name", opts.Name, "id", targetID)
		o.notify(createPlaylistUpdate(cp.Processed, total, opts.Name, targetID))

		ids := make([]string, 0, len(p.Tracks))
		for _, t := range p.Tracks {
			outcome, err := o.resolve(ctx, t, c.Source, target, book)
			if err != nil {
				return nil, o.fail(cp, err)
			}
			if outcome.Matched != nil {
				if id := outcome.Matched.TargetID(target.ProviderName); id != "" {
					ids = append(ids, id)
				}
			}
			if outcome.Failure != nil {
				cp.Failures = append(cp.Failures, *outcome.Failure)
			}
			cp.Processed++
			o.notify(matchTrackUpdate(cp.Processed, total, outcome))
		}

		if len(ids) > 0 {
			if err := target.AddItems(ctx, targetID, ids); err != nil {
				return nil, o.fail(cp, wrap(shared.ErrProviderWrite, err, "add %d items to %s", len(ids), targetID))
			}
			o.notify(addItemsUpdate(cp.Processed, total, len(ids), targetID))
		}

		cp.PlaylistID = p.ID
		cp.TargetPlaylistID = targetID
		if err := o.saveCheckpoint(ctx, &cp); err != nil {
			return nil, o.fail(cp, err)
		}
	}

	report := &models.TransferReport{
		RunID:          runID,
		Source:         c.Source,
		TargetProvider: target.ProviderName,
		Processed:      cp.Processed,
		Total:          total,
		Failures:       slices.Clone(cp.Failures),
		CompletedAt:    o.now().UTC(),
	}
	o.setStatus(models.StatusCompleted)

	if o.reports != nil {
		if err := o.reports.Save(ctx, *report); err != nil {
			logger.Error("failed to persist report", "error", err)
		}
	}
	if err := o.checkpoints.Clear(ctx); err != nil {
		logger.Warn("failed to clear checkpoint", "error", err)
	}

	logger.Info("transfer completed", "processed", report.Processed, "failures", len(report.Failures))
	o.notify(transferCompletedUpdate(report))
	return report, nil
}

// fail moves the run to failed. The checkpoint store is left untouched.
func (o *Orchestrator) fail(cp models.TransferCheckpoint, err error) error {
	o.setStatus(models.StatusFailed)
	o.logger.Error("transfer aborted", "run", cp.RunID, "processed", cp.Processed, "error", err)
	o.notify(transferFailedUpdate(cp.Processed, cp.Total, err))
	return err
}

func (o *Orchestrator) saveCheckpoint(ctx context.Context, cp *models.TransferCheckpoint) error {
	cp.SavedAt = o.now().UTC()
	snapshot := *cp
	snapshot.Failures = slices.Clone(cp.Failures)
	if err := o.checkpoints.Save(ctx, snapshot); err != nil {
		return wrap(shared.ErrCheckpoint, err, "save after %q", cp.PlaylistID)
	}
	o.notify(checkpointUpdate(snapshot))
	return nil
}

// playlistOptions names the destination playlist and appends the attribution line.
func (o *Orchestrator) playlistOptions(p models.Playlist, source string) services.CreatePlaylistOptions {
	if source == "" {
		source = "unknown"
	}
	attribution := fmt.Sprintf("Imported from %s via %s on %s", source, o.appName, o.now().UTC().Format(time.RFC3339))
	visibility := p.Visibility
	if visibility == "" {
		visibility = o.visibility
	}
	return services.CreatePlaylistOptions{
		Name:        fmt.Sprintf("%s · via %s", p.Name, o.appName),
		Description: strings.TrimSpace(p.Description + "\n\n" + attribution),
		Visibility:  visibility,
	}
}

// book returns the decisions for a target provider, loading persisted ones on first use.
func (o *Orchestrator) book(ctx context.Context, targetProvider string) (models.MatchBook, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if b, ok := o.books[targetProvider]; ok {
		return b, nil
	}
	b := models.MatchBook{}
	if o.matches != nil {
		stored, err := o.matches.Book(ctx, targetProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to load match decisions: %w", err)
		}
		for k, v := range stored {
			b[k] = v
		}
	}
	o.books[targetProvider] = b
	return b, nil
}

// resolve finds the target track for t. A nil Matched with a Failure means no confident match.
func (o *Orchestrator) resolve(ctx context.Context, t models.Track, source string, target Target, book models.MatchBook) (TrackOutcome, error) {
	key := TrackKey(t, source, target.ProviderName, o.locale)
	if m, ok := book.Lookup(key); ok {
		return TrackOutcome{Track: t, Matched: &m, Reused: true}, nil
	}

	res, err := o.searcher.FindCandidates(ctx, t, mapping.SearchContext{
		ProviderName: target.ProviderName,
		Search:       target.Search,
		Locale:       o.locale,
	})
	if err != nil {
		if abortsRun(ctx, err) {
			return TrackOutcome{}, wrap(shared.ErrSearch, err, "%q", t.Title)
		}
		o.logger.Warn("search failed", "title", t.Title, "artist", t.PrimaryArtist(), "error", err)
		failure := &models.FailureRecord{Track: t, Reason: fmt.Sprintf("%s: %v", models.ReasonSearchFailed, err)}
		return TrackOutcome{Track: t, Failure: failure}, nil
	}

	if res.Best != nil {
		matched := res.Best.Track
		if err := o.accept(ctx, key, source, target.ProviderName, matched, res.Best.Score, false, book); err != nil {
			return TrackOutcome{}, err
		}
		return TrackOutcome{Track: t, Matched: &matched}, nil
	}

	failure := &models.FailureRecord{Track: t, Reason: models.ReasonNoConfidentMatch, Candidates: res.Candidates}
	o.logger.Warn("no confident match", "title", t.Title, "artist", t.PrimaryArtist(), "candidates", len(res.Candidates))
	if o.reviews != nil {
		shortlist := res.ReviewCandidates()
		review := models.PendingReview{
			TargetProvider: target.ProviderName,
			TrackKey:       key,
			Track:          t,
			Candidates:     shortlist[:min(len(shortlist), services.SearchLimit)],
			CreatedAt:      o.now().UTC(),
		}
		if _, err := o.reviews.Enqueue(ctx, review); err != nil {
			o.logger.Warn("failed to queue review", "title", t.Title, "error", err)
		}
	}
	return TrackOutcome{Track: t, Failure: failure}, nil
}

// accept records a decision in memory and, when configured, in the match store.
func (o *Orchestrator) accept(ctx context.Context, key, source, targetProvider string, matched models.Track, score int, manual bool, book models.MatchBook) error {
	book[key] = matched
	if o.matches == nil {
		return nil
	}
	d := models.MatchDecision{
		TrackKey:       key,
		SourceProvider: source,
		TargetProvider: targetProvider,
		Target:         matched,
		Score:          score,
		Manual:         manual,
		DecidedAt:      o.now().UTC(),
	}
	if err := o.matches.Save(ctx, d); err != nil {
		return fmt.Errorf("failed to record match decision: %w", err)
	}
	return nil
}

// abortsRun reports whether a search error ends the whole run rather than one track.
func abortsRun(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, shared.ErrAuthRequired) ||
		errors.Is(err, shared.ErrQuotaExceeded)
}

// wrap prefixes err with sentinel unless it already carries it.
func wrap(sentinel, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, sentinel) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, msg, err)
}

// memoryCheckpoints is used when no [CheckpointStore] is configured.
type memoryCheckpoints struct {
	mu sync.Mutex
	cp *models.TransferCheckpoint
}

func (m *memoryCheckpoints) Save(_ context.Context, cp models.TransferCheckpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cp = &cp
	return nil
}

func (m *memoryCheckpoints) Load(context.Context) (*models.TransferCheckpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cp == nil {
		return nil, nil
	}
	cp := *m.cp
	return &cp, nil
}

func (m *memoryCheckpoints) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cp = nil
	return nil
}
