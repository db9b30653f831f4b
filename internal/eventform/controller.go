package eventform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"evently/internal/domain"
	"evently/internal/widget"
)

// ProfilePath is the page made stale by creating an event.
const ProfilePath = "/profile"

const defaultGuardTTL = 2 * time.Minute

// ErrSubmissionInFlight is returned by Submit while a previous submit of the same form is outstanding.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// Mode selects what Submit persists.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "Update"
	}
	return "Create"
}

// State is the position of the form in its submit lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateUploading
	StatePersisting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateUploading:
		return "uploading"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Outcome summarises one Submit call.
type Outcome int

const (
	// OutcomeDone: the record was persisted and the form reset.
	OutcomeDone Outcome = iota + 1
	// OutcomeInvalid: validation failed; FieldErrors holds every failing field.
	OutcomeInvalid
	// OutcomeAborted: the upload collaborator returned no result. Nothing is shown to the user.
	OutcomeAborted
	// OutcomeFailed: the record store rejected the record; FormError is user visible.
	OutcomeFailed
)

// EventStore persists and reads events.
type EventStore interface {
	CreateEvent(ctx context.Context, params domain.CreateEventParams) (*domain.Event, error)
	UpdateEvent(ctx context.Context, params domain.UpdateEventParams) (*domain.Event, error)
	GetEventByID(ctx context.Context, eventID string) (*domain.Event, error)
}

// CategoryStore lists and creates categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
}

// Uploader stores staged files with the hosted upload service.
// A nil or empty result means the upload failed.
type Uploader interface {
	Upload(ctx context.Context, files []domain.StagedFile) ([]domain.UploadedAsset, error)
}

// Navigator moves the user to another view.
type Navigator interface {
	Push(path string)
}

// ErrorHandler is the centralized sink for errors the form recovers from.
type ErrorHandler interface {
	HandleError(ctx context.Context, err error)
}

// Config identifies one form instance.
type Config struct {
	UserID    string
	UserEmail string
	Mode      Mode
	// EventID is the event being edited in ModeUpdate.
	EventID string
	// FormID keys the cross-request submission guard.
	FormID   string
	Location *time.Location
}

// Deps are the collaborators of a Controller. Guard, Logger, Errors and Now are optional.
type Deps struct {
	Events     EventStore
	Categories CategoryStore
	Uploader   Uploader
	Navigator  Navigator
	Errors     ErrorHandler
	Guard      domain.SubmissionGuard
	GuardTTL   time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

// SubmitResult is the result of Submit.
type SubmitResult struct {
	Outcome     Outcome
	Event       *domain.Event
	FieldErrors FieldErrors
	FormError   string
	Redirect    string
}

// Controller owns the draft of one event form and drives its submission:
// validate, upload staged files, persist, then navigate to the new record.
type Controller struct {
	cfg  Config
	deps Deps

	inFlight atomic.Bool

	mu             sync.Mutex
	state          State
	draft          Draft
	files          []domain.StagedFile
	fieldErrors    FieldErrors
	categories     []*domain.Category
	categoryDialog widget.Dialog
	categoryError  string
}

// New returns a controller holding the default draft.
func New(cfg Config, deps Deps) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Errors == nil {
		deps.Errors = LogErrorHandler{Logger: deps.Logger}
	}
	if deps.GuardTTL <= 0 {
		deps.GuardTTL = defaultGuardTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Controller{
		cfg:   cfg,
		deps:  deps,
		draft: Defaults(deps.Now().In(cfg.Location).Truncate(time.Minute)),
	}
}

// Mode returns the mode the controller was created with.
func (c *Controller) Mode() Mode { return c.cfg.Mode }

// FormID returns the form instance ID.
func (c *Controller) FormID() string { return c.cfg.FormID }

// Load fetches the categories and, in update mode, pre-fills the draft from the
// stored event. A failed or empty category fetch leaves the list empty.
func (c *Controller) Load(ctx context.Context) error {
	cats, err := c.deps.Categories.ListCategories(ctx)
	if err != nil {
		c.deps.Errors.HandleError(ctx, fmt.Errorf("load categories: %w", err))
	} else if cats != nil {
		c.mu.Lock()
		c.categories = cats
		c.mu.Unlock()
	}

	if c.cfg.Mode != ModeUpdate {
		return nil
	}
	event, err := c.deps.Events.GetEventByID(ctx, c.cfg.EventID)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	if event.OrganizerID != c.cfg.UserID {
		return domain.ErrForbidden
	}
	c.mu.Lock()
	c.draft = DraftFromEvent(event)
	c.mu.Unlock()
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submitting reports whether a submission is in flight; the submit trigger is disabled while true.
func (c *Controller) Submitting() bool {
	return c.inFlight.Load()
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// FieldErrors returns a copy of the errors currently attached to fields.
func (c *Controller) FieldErrors() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.fieldErrors)
}

// SetField updates one field and revalidates it, along with any field whose
// rule depends on it. It contacts no collaborator.
func (c *Controller) SetField(name, value string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.draft.set(name, value, c.cfg.Location); err != nil {
		return []string{err.Error()}
	}
	c.leaveInvalid()
	errs := ValidateField(c.draft, name)
	c.setFieldErrorsLocked(name, errs)
	if dep, ok := dependentFields[name]; ok {
		c.setFieldErrorsLocked(dep, ValidateField(c.draft, dep))
	}
	return errs
}

// dependentFields maps a field to the field whose rule reads it.
var dependentFields = map[string]string{
	FieldStartDateTime: FieldEndDateTime,
	FieldIsFree:        FieldPrice,
}

// SetDraft replaces the whole draft, as when a form is posted back.
func (c *Controller) SetDraft(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = d
	c.leaveInvalid()
}

// Revalidate runs the full schema over the draft and records the field errors.
func (c *Controller) Revalidate() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, fe := Validate(c.draft)
	c.fieldErrors = fe
	return maps.Clone(fe)
}

// StageFiles holds files in memory until the next submit.
func (c *Controller) StageFiles(files []domain.StagedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = slices.Clone(files)
}

// StagedFiles returns the number of files waiting for upload.
func (c *Controller) StagedFiles() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

// Submit validates the draft, uploads staged files, persists the record and
// navigates to it. Every failure is contained in the result; the only error is
// ErrSubmissionInFlight. A started submission cannot be cancelled by the caller.
func (c *Controller) Submit(ctx context.Context) (SubmitResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return SubmitResult{}, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	ctx = context.WithoutCancel(ctx)
	log := c.deps.Logger.With("form_id", c.cfg.FormID, "mode", c.cfg.Mode.String())

	if c.deps.Guard != nil && c.cfg.FormID != "" {
		key := "submit:" + c.cfg.FormID
		token, ok, err := c.deps.Guard.Acquire(ctx, key, c.deps.GuardTTL)
		switch {
		case err != nil:
			// the local flag still holds for this instance
			log.WarnContext(ctx, "submission guard unavailable", "err", err)
		case !ok:
			return SubmitResult{}, ErrSubmissionInFlight
		default:
			defer func() {
				if err := c.deps.Guard.Release(ctx, key, token); err != nil {
					log.WarnContext(ctx, "release submission guard", "err", err)
				}
			}()
		}
	}

	c.mu.Lock()
	c.state = StateValidating
	draft := c.draft
	files := slices.Clone(c.files)
	c.mu.Unlock()

	event, fe := Validate(draft)
	if fe != nil {
		c.mu.Lock()
		c.state = StateInvalid
		c.fieldErrors = fe
		c.mu.Unlock()
		log.DebugContext(ctx, "event form invalid", "fields", fe.Fields())
		return SubmitResult{Outcome: OutcomeInvalid, FieldErrors: maps.Clone(fe)}, nil
	}

	if len(files) > 0 {
		c.setState(StateUploading)
		var assets []domain.UploadedAsset
		var err error
		if c.deps.Uploader != nil {
			assets, err = c.deps.Uploader.Upload(ctx, files)
		}
		if err != nil || len(assets) == 0 {
			log.WarnContext(ctx, "image upload returned no result, submission aborted", "files", len(files), "err", err)
			c.setState(StateIdle)
			return SubmitResult{Outcome: OutcomeAborted}, nil
		}
		event.ImageURL = assets[0].URL
	}

	c.setState(StatePersisting)
	saved, err := c.persist(ctx, event)
	if err == nil && saved == nil {
		err = errors.New("record store returned no event")
	}
	if err != nil {
		c.deps.Errors.HandleError(ctx, fmt.Errorf("%s event: %w", c.cfg.Mode, err))
		c.mu.Lock()
		// the files are stored; keep their URL so a retry does not need them again
		if len(files) > 0 {
			c.draft.ImageURL = event.ImageURL
			c.files = nil
		}
		c.fieldErrors = nil
		c.state = StateIdle
		c.mu.Unlock()
		return SubmitResult{Outcome: OutcomeFailed, FormError: persistMessage(err)}, nil
	}

	path := "/events/" + saved.ID
	c.mu.Lock()
	c.draft = Defaults(c.deps.Now().In(c.cfg.Location).Truncate(time.Minute))
	c.files = nil
	c.fieldErrors = nil
	c.categoryDialog = widget.Dialog{}
	c.categoryError = ""
	c.state = StateDone
	c.mu.Unlock()

	log.InfoContext(ctx, "event saved", "event_id", saved.ID)
	if c.deps.Navigator != nil {
		c.deps.Navigator.Push(path)
	}
	return SubmitResult{Outcome: OutcomeDone, Event: saved, Redirect: path}, nil
}

func (c *Controller) persist(ctx context.Context, event domain.Event) (*domain.Event, error) {
	if c.cfg.Mode == ModeUpdate {
		return c.deps.Events.UpdateEvent(ctx, domain.UpdateEventParams{
			EventID: c.cfg.EventID,
			Event:   event,
			UserID:  c.cfg.UserID,
			Path:    "/events/" + c.cfg.EventID,
		})
	}
	return c.deps.Events.CreateEvent(ctx, domain.CreateEventParams{
		Event:          event,
		UserID:         c.cfg.UserID,
		OrganizerEmail: c.cfg.UserEmail,
		Path:           ProfilePath,
	})
}

func persistMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return "You can only update events you organise."
	case errors.Is(err, domain.ErrNotFound):
		return "This event no longer exists."
	default:
		return "We could not save your event. Your changes are kept, please try again."
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// leaveInvalid returns an invalid form to idle once the user edits it. Callers hold mu.
func (c *Controller) leaveInvalid() {
	if c.state == StateInvalid || c.state == StateDone {
		c.state = StateIdle
	}
}

func (c *Controller) setFieldErrorsLocked(name string, errs []string) {
	if len(errs) == 0 {
		delete(c.fieldErrors, name)
		return
	}
	if c.fieldErrors == nil {
		c.fieldErrors = make(FieldErrors)
	}
	c.fieldErrors[name] = errs
}

// LogErrorHandler reports recovered form errors to a structured logger.
type LogErrorHandler struct {
	Logger *slog.Logger
}

func (h LogErrorHandler) HandleError(ctx context.Context, err error) {
	h.Logger.ErrorContext(ctx, "event form error", "err", err)
}
