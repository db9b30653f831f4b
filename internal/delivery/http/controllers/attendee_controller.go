package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"evently/internal/delivery/http/helpers"
	"evently/internal/delivery/http/middleware"
	"evently/internal/delivery/http/views"
	"evently/internal/domain"
)

type AttendeeController struct {
	pageWriter
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, renderer *views.Renderer, signInURL string, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		pageWriter: pageWriter{logger: logger, views: renderer, signInURL: signInURL},
		Service:    svc,
	}
}

// RegisterForEventSuccessResponse is the success response envelope for POST /api/events/{eventID}/registrations (200 or 201).
type RegisterForEventSuccessResponse struct {
	Data  *domain.EventRegistration `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// RegisterForEvent godoc
// @Summary Register the current user for an event
// @Description Registers the authenticated user for the specified event. Idempotent: returns 201 when a new registration is created, 200 when already registered.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RegisterForEventSuccessResponse "Already registered"
// @Success 201 {object} controllers.RegisterForEventSuccessResponse "New registration created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID}/registrations [post]
func (c *AttendeeController) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reg, created, err := c.Service.RegisterForEvent(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	if created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// RegisterFromPage handles the "Get Ticket" button of the event page and returns the user to it.
func (c *AttendeeController) RegisterFromPage(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		c.renderError(w, r, http.StatusNotFound, "event not found")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.SignInRedirect(c.signInURL, "/events/"+eventID), http.StatusSeeOther)
		return
	}

	_, created, err := c.Service.RegisterForEvent(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.renderError(w, r, http.StatusNotFound, "event not found")
			return
		}
		c.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		c.renderError(w, r, http.StatusInternalServerError, "We could not register you. Please try again.")
		return
	}
	c.logger.InfoContext(r.Context(), "registered for event", "event_id", eventID, "created", created)
	http.Redirect(w, r, "/events/"+eventID, http.StatusSeeOther)
}

// ListMyRegisteredEventsSuccessResponse is the success response envelope for GET /api/me/registrations (200).
type ListMyRegisteredEventsSuccessResponse struct {
	Data  []*domain.EventRegistrationWithEvent `json:"data"`
	Error *helpers.APIError                    `json:"error"`
}

// ListMyRegisteredEvents godoc
// @Summary Get events the current user is registered for
// @Description Returns the list of events the authenticated user is registered for, including registration metadata.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyRegisteredEventsSuccessResponse "data is an array of event + registration objects"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/me/registrations [get]
func (c *AttendeeController) ListMyRegisteredEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	items, err := c.Service.ListMyRegisteredEvents(r.Context(), userID)
	if err != nil {
		c.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	if items == nil {
		items = []*domain.EventRegistrationWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}
