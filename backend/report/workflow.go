// Package report implements the incident report form: a single draft, the
// background tasks feeding it, and submission into the durable report list.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/geo"
	"mangrovewatch/backend/photo"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// UserSource yields the authenticated user. *auth.Session satisfies it.
type UserSource interface {
	User() (api.User, bool)
}

type Deps struct {
	Users     UserSource
	Reports   *Repository
	Location  geo.Provider
	Extractor photo.Extractor
	Policy    geo.Policy
}

type Options struct {
	SubmitDelay    time.Duration
	ExtractTimeout time.Duration
	Location       geo.Options
	Now            func() time.Time
}

var DefaultOptions = Options{
	SubmitDelay:    1500 * time.Millisecond,
	ExtractTimeout: 5 * time.Second,
	Location:       geo.DefaultOptions,
}

// Workflow owns one report draft. All methods are safe for concurrent use;
// RequestCurrentLocation and Submit block only their calling goroutine.
//
// Every draft instance carries a generation token. Background work records
// the token it started under and drops its result once the token changes,
// so nothing from before a Reset can touch the fresh draft.
type Workflow struct {
	deps Deps
	opts Options

	mu        sync.Mutex
	gen       uuid.UUID
	photoSeq  uint64
	draft     Draft
	resolver  *geo.Resolver
	status    Status
	message   string
	submitted *api.Report

	tasks   context.Context
	cancel  context.CancelFunc
	pending int        // Background tasks not yet finished, guarded by mu.
	idle    *sync.Cond // Signaled on mu when pending drops to zero.
}

// NewWorkflow starts an empty draft. Users and Reports are required; a nil
// Extractor never finds coordinates and a nil Location is unsupported.
func NewWorkflow(deps Deps, opts Options) (*Workflow, error) {
	if deps.Users == nil {
		return nil, fmt.Errorf("%w: user source", ErrMissingDependency)
	}
	if deps.Reports == nil {
		return nil, fmt.Errorf("%w: report repository", ErrMissingDependency)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Extractor == nil {
		deps.Extractor = photo.None{}
	}
	if deps.Location == nil {
		deps.Location = geo.Unsupported{}
	}
	w := &Workflow{
		deps:     deps,
		opts:     opts,
		resolver: geo.NewResolver(deps.Policy),
	}
	w.idle = sync.NewCond(&w.mu)
	w.resetLocked()
	return w, nil
}

// resetLocked starts a new draft instance and abandons tasks of the old one.
func (w *Workflow) resetLocked() {
	if w.cancel != nil {
		w.cancel()
	}
	w.tasks, w.cancel = context.WithCancel(context.Background())
	w.gen = uuid.New()
	w.draft = newDraft()
	w.resolver.Reset()
	w.status = Idle
	w.message = ""
	w.submitted = nil
}

func (w *Workflow) editableLocked() error {
	if w.status == Submitting || w.status == Succeeded {
		return ErrDraftLocked
	}
	return nil
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := State{
		Status:  w.status,
		Message: w.message,
		Draft:   w.draft,
	}
	if w.draft.GPS != nil {
		c := *w.draft.GPS
		st.Draft.GPS = &c
	}
	if w.submitted != nil {
		r := *w.submitted
		st.Report = &r
	}
	return st
}

// Wait blocks until no background task is running. It may be called
// concurrently with SelectPhoto.
func (w *Workflow) Wait() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waitLocked()
}

func (w *Workflow) waitLocked() {
	for w.pending > 0 {
		w.idle.Wait()
	}
}

// Close abandons background tasks and waits for them to return.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancel()
	w.waitLocked()
}

func (w *Workflow) taskDone() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending--
	if w.pending == 0 {
		w.idle.Broadcast()
	}
}

// SelectPhoto attaches p and starts preview derivation and metadata
// extraction in the background. Results for a photo that has since been
// replaced are discarded.
func (w *Workflow) SelectPhoto(p photo.Photo) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.photoSeq++
	w.draft.Photo = p
	w.draft.Preview = nil

	gen, seq, ctx := w.gen, w.photoSeq, w.tasks
	w.pending += 2
	go w.derivePreview(gen, seq, p)
	go w.extractLocation(ctx, gen, seq, p)
	return nil
}

func (w *Workflow) current(gen uuid.UUID, seq uint64) bool {
	return w.gen == gen && w.photoSeq == seq
}

func (w *Workflow) derivePreview(gen uuid.UUID, seq uint64, p photo.Photo) {
	defer w.taskDone()
	preview, err := photo.Preview(p.Data)
	if err != nil {
		log.WithField("photo", p.Name).Warnf("No preview: %v", err)
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.current(gen, seq) {
		return
	}
	w.draft.Preview = preview
}

func (w *Workflow) extractLocation(ctx context.Context, gen uuid.UUID, seq uint64, p photo.Photo) {
	defer w.taskDone()
	if w.opts.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.ExtractTimeout)
		defer cancel()
	}
	c, err := w.deps.Extractor.Extract(ctx, p)
	if err != nil {
		log.WithField("photo", p.Name).Warnf("Photo location extraction failed: %v", err)
		return
	}
	if c == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.current(gen, seq) {
		log.WithField("photo", p.Name).Debug("Dropping stale photo location")
		return
	}
	if w.editableLocked() != nil {
		return
	}
	w.acceptLocked(geo.SourcePhoto, *c)
}

func (w *Workflow) acceptLocked(src geo.Source, c api.GPSCoordinates) bool {
	u, ok := w.resolver.Offer(src, c)
	if !ok {
		return false
	}
	w.draft.GPS = &u.Coords
	w.draft.GPSSource = u.Source
	w.draft.Location = geo.FormatLocation(u.Coords)
	return true
}

// RequestCurrentLocation asks the device for a fix. On failure the
// LocationError message is recorded and the location text is left as is.
func (w *Workflow) RequestCurrentLocation(ctx context.Context) error {
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	gen := w.gen
	w.mu.Unlock()

	c, err := w.deps.Location.CurrentPosition(ctx, w.opts.Location)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return ErrStaleDraft
	}
	if err != nil {
		var le *geo.LocationError
		if errors.As(err, &le) {
			w.message = le.Message()
		}
		log.Warnf("Current location unavailable: %v", err)
		return err
	}
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.acceptLocked(geo.SourceDevice, c)
	w.message = ""
	return nil
}

func (w *Workflow) SetDescription(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.draft.Description = s
	return nil
}

func (w *Workflow) SetSeverity(level string) error {
	sev, err := api.ParseSeverity(level)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.draft.Severity = sev
	return nil
}

// SetLocation replaces the location text. Coordinates are kept.
func (w *Workflow) SetLocation(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.draft.Location = s
	return nil
}

// Submit validates the draft and appends it to the report list. A failed
// attempt leaves the draft intact and may be retried.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch w.status {
	case Submitting:
		w.mu.Unlock()
		return ErrSubmitInProgress
	case Succeeded:
		w.mu.Unlock()
		return ErrAlreadySubmitted
	}
	user, ok := w.deps.Users.User()
	if !ok {
		w.mu.Unlock()
		return ErrNotAuthenticated
	}
	if verr := w.validateLocked(); verr != nil {
		w.status = Idle
		w.message = verr.Message
		w.mu.Unlock()
		return verr
	}

	now := w.opts.Now()
	rep := api.Report{
		ID:          api.ClientID(now),
		UserID:      user.ID,
		Username:    user.Username,
		Timestamp:   api.FormatTimestamp(now),
		Description: w.draft.Description,
		Location:    w.draft.Location,
		Severity:    w.draft.Severity,
		Photo:       w.draft.Photo.Name,
		Status:      api.StatusPending,
	}
	if w.draft.GPS != nil {
		c := *w.draft.GPS
		rep.GPSCoordinates = &c
	}
	w.status = Submitting
	w.message = ""
	w.mu.Unlock()

	logger := log.WithFields(log.Fields{"report_id": rep.ID, "username": rep.Username})
	logger.Info("Submitting report")

	err := w.deliver(ctx, rep)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		logger.Errorf("Report submission failed: %v", err)
		w.status = Failed
		w.message = MsgSubmitFailed
		return &SubmissionError{Err: err}
	}
	w.status = Succeeded
	w.submitted = &rep
	return nil
}

func (w *Workflow) validateLocked() *api.ValidationError {
	if w.draft.Photo.Empty() {
		return &api.ValidationError{Field: "photo", Message: MsgPhotoRequired}
	}
	if strings.TrimSpace(w.draft.Location) == "" {
		return &api.ValidationError{Field: "location", Message: MsgLocationRequired}
	}
	return nil
}

// deliver waits out the submission latency and persists rep.
func (w *Workflow) deliver(ctx context.Context, rep api.Report) error {
	if w.opts.SubmitDelay > 0 {
		t := time.NewTimer(w.opts.SubmitDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	_, err := w.deps.Reports.Append(ctx, rep)
	return err
}

// Reset discards the draft. It is refused while submitting and after success.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == Submitting || w.status == Succeeded {
		return ErrResetNotAllowed
	}
	w.resetLocked()
	log.Debug("Report draft reset")
	return nil
}
