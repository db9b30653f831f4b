package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"evently/internal/delivery/http/middleware"
	"evently/internal/delivery/http/views"
	"evently/internal/domain"
	"evently/internal/eventform"
)

// MaxImageSize is the largest image accepted by the event form.
const MaxImageSize = 4 << 20

// Event form actions posted in the "action" field.
const (
	actionSubmit         = "submit"
	actionOpenCategory   = "open_category"
	actionApplyCategory  = "apply_category"
	actionCancelCategory = "cancel_category"
	actionSelectCategory = "select_category"
)

const (
	formIDField       = "form_id"
	imageField        = "image"
	categoryNameField = "categoryName"
)

var errInvalidImage = errors.New("image must be an image file of at most 4MB")

// EventFormOptions configures EventFormController.
type EventFormOptions struct {
	SignInURL string
	// Location is the time zone datetime-local inputs are read in.
	Location *time.Location
	GuardTTL time.Duration
	Now      func() time.Time
}

// EventFormController serves the create and update event form. Each request
// builds an eventform.Controller for the posted form instance.
type EventFormController struct {
	pageWriter
	Events     domain.EventService
	Categories domain.CategoryService
	Uploader   eventform.Uploader
	Guard      domain.SubmissionGuard
	opts       EventFormOptions
}

func NewEventFormController(logger *slog.Logger, renderer *views.Renderer, events domain.EventService, categories domain.CategoryService, uploader eventform.Uploader, guard domain.SubmissionGuard, opts EventFormOptions) *EventFormController {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &EventFormController{
		pageWriter: pageWriter{logger: logger, views: renderer, signInURL: opts.SignInURL},
		Events:     events,
		Categories: categories,
		Uploader:   uploader,
		Guard:      guard,
		opts:       opts,
	}
}

// redirectNavigator records the path the form navigates to; the handler answers with 303 See Other.
type redirectNavigator struct {
	path string
}

func (n *redirectNavigator) Push(path string) { n.path = path }

// NewEvent renders an empty form in create mode.
func (c *EventFormController) NewEvent(w http.ResponseWriter, r *http.Request) {
	c.show(w, r, eventform.ModeCreate, "")
}

// CreateEvent handles a post of the create form.
func (c *EventFormController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	c.post(w, r, eventform.ModeCreate, "")
}

// EditEvent renders the form pre-filled with a stored event. Only its organizer may edit it.
func (c *EventFormController) EditEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		c.renderError(w, r, http.StatusNotFound, "event not found")
		return
	}
	c.show(w, r, eventform.ModeUpdate, eventID)
}

// UpdateEvent handles a post of the update form.
func (c *EventFormController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		c.renderError(w, r, http.StatusNotFound, "event not found")
		return
	}
	c.post(w, r, eventform.ModeUpdate, eventID)
}

func (c *EventFormController) show(w http.ResponseWriter, r *http.Request, mode eventform.Mode, eventID string) {
	ctrl, _, ok := c.load(w, r, mode, eventID, uuid.NewString())
	if !ok {
		return
	}
	c.renderForm(w, r, http.StatusOK, ctrl, "", false)
}

func (c *EventFormController) post(w http.ResponseWriter, r *http.Request, mode eventform.Mode, eventID string) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(MaxImageSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.logger.InfoContext(r.Context(), "bad event form post", "path", r.URL.Path, "err", err)
		c.renderError(w, r, http.StatusBadRequest, "The form could not be read. Images must be at most 4MB.")
		return
	}
	formID := r.PostFormValue(formIDField)
	if formID == "" {
		formID = uuid.NewString()
	}
	ctrl, nav, ok := c.load(w, r, mode, eventID, formID)
	if !ok {
		return
	}
	ctrl.SetDraft(eventform.DraftFromForm(r.PostForm, c.opts.Location))

	ctx := r.Context()
	switch r.PostFormValue("action") {
	case actionOpenCategory:
		ctrl.OpenCategoryDialog()
		c.renderForm(w, r, http.StatusOK, ctrl, "", false)
	case actionCancelCategory:
		ctrl.OpenCategoryDialog()
		_ = ctrl.CancelCategoryDialog()
		c.renderForm(w, r, http.StatusOK, ctrl, "", false)
	case actionApplyCategory:
		ctrl.OpenCategoryDialog()
		ctrl.ChangeCategoryInput(r.PostFormValue(categoryNameField))
		cat, errs := ctrl.ApplyCategoryDialog(ctx)
		if len(errs) > 0 {
			c.renderForm(w, r, http.StatusUnprocessableEntity, ctrl, "", false)
			return
		}
		ctrl.SelectCategory(cat.ID)
		c.renderForm(w, r, http.StatusOK, ctrl, "", false)
	case actionSelectCategory:
		ctrl.SelectCategory(r.PostFormValue(eventform.FieldCategoryID))
		c.renderForm(w, r, http.StatusOK, ctrl, "", false)
	default:
		c.submit(w, r, ctrl, nav)
	}
}

func (c *EventFormController) submit(w http.ResponseWriter, r *http.Request, ctrl *eventform.Controller, nav *redirectNavigator) {
	ctx := r.Context()
	files, err := stagedImage(r)
	if err != nil {
		c.logger.InfoContext(ctx, "image rejected", "path", r.URL.Path, "err", err)
		c.renderForm(w, r, http.StatusUnprocessableEntity, ctrl, errInvalidImage.Error(), false)
		return
	}
	ctrl.StageFiles(files)

	res, err := ctrl.Submit(ctx)
	if errors.Is(err, eventform.ErrSubmissionInFlight) {
		c.renderForm(w, r, http.StatusConflict, ctrl, "", true)
		return
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		c.renderForm(w, r, http.StatusInternalServerError, ctrl, "Something went wrong. Please try again.", false)
		return
	}

	switch res.Outcome {
	case eventform.OutcomeDone:
		http.Redirect(w, r, nav.path, http.StatusSeeOther)
	case eventform.OutcomeInvalid:
		c.renderForm(w, r, http.StatusUnprocessableEntity, ctrl, "", false)
	case eventform.OutcomeAborted:
		c.renderForm(w, r, http.StatusOK, ctrl, "", false)
	default:
		c.renderForm(w, r, http.StatusInternalServerError, ctrl, res.FormError, false)
	}
}

// load builds the form controller for this request. It writes the error page and
// returns ok=false when the form cannot be shown.
func (c *EventFormController) load(w http.ResponseWriter, r *http.Request, mode eventform.Mode, eventID, formID string) (*eventform.Controller, *redirectNavigator, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.UserID == "" {
		http.Redirect(w, r, middleware.SignInRedirect(c.signInURL, r.URL.RequestURI()), http.StatusSeeOther)
		return nil, nil, false
	}
	nav := &redirectNavigator{}
	ctrl := eventform.New(eventform.Config{
		UserID:    identity.UserID,
		UserEmail: identity.Email,
		Mode:      mode,
		EventID:   eventID,
		FormID:    formID,
		Location:  c.opts.Location,
	}, eventform.Deps{
		Events:     c.Events,
		Categories: c.Categories,
		Uploader:   c.Uploader,
		Navigator:  nav,
		Guard:      c.Guard,
		GuardTTL:   c.opts.GuardTTL,
		Logger:     c.logger,
		Now:        c.opts.Now,
	})
	if err := ctrl.Load(r.Context()); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.renderError(w, r, http.StatusNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			c.renderError(w, r, http.StatusForbidden, "You can only update events you organise.")
		default:
			c.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			c.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return nil, nil, false
	}
	return ctrl, nav, true
}

func (c *EventFormController) renderForm(w http.ResponseWriter, r *http.Request, status int, ctrl *eventform.Controller, formError string, submitting bool) {
	draft := ctrl.Draft()
	mode := ctrl.Mode().String()
	c.render(w, r, status, views.PageEventForm, views.EventFormPage{
		Layout:     c.layout(r, mode+" Event"),
		Mode:       mode,
		Action:     r.URL.Path,
		FormID:     ctrl.FormID(),
		Values:     draft.Values(),
		IsFree:     draft.IsFree,
		Errors:     ctrl.FieldErrors(),
		FormError:  formError,
		Category:   ctrl.CategoryDropdown(),
		Submitting: submitting || ctrl.Submitting(),
	})
}

// stagedImage reads the optional image part of a multipart post.
func stagedImage(r *http.Request) ([]domain.StagedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidImage, err)
	}
	defer file.Close()
	if header.Size == 0 {
		return nil, nil
	}
	if header.Size > MaxImageSize {
		return nil, errInvalidImage
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidImage, err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if len(data) > MaxImageSize || !strings.HasPrefix(contentType, "image/") {
		return nil, errInvalidImage
	}
	return []domain.StagedFile{{Name: header.Filename, ContentType: contentType, Data: data}}, nil
}
