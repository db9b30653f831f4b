package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"evently/internal/delivery/http/helpers"
	"evently/internal/delivery/http/middleware"
	"evently/internal/delivery/http/views"
	"evently/internal/domain"
)

const anonymousViewer = "anon"

// PageOptions configures PageController.
type PageOptions struct {
	CacheTTL time.Duration
	// SignInURL is where anonymous visitors are sent to authenticate.
	SignInURL string
	// ProviderURL is the hosted auth provider the sign-in page links to.
	ProviderURL string
}

// PageController serves the browse, detail, profile and sign-in pages.
// Rendered pages are cached per path, query and viewer.
type PageController struct {
	pageWriter
	Events      domain.EventService
	Attendees   domain.AttendeeService
	Cache       domain.PageCache
	cacheTTL    time.Duration
	providerURL string
}

func NewPageController(logger *slog.Logger, renderer *views.Renderer, events domain.EventService, attendees domain.AttendeeService, cache domain.PageCache, opts PageOptions) *PageController {
	return &PageController{
		pageWriter:  pageWriter{logger: logger, views: renderer, signInURL: opts.SignInURL},
		Events:      events,
		Attendees:   attendees,
		Cache:       cache,
		cacheTTL:    opts.CacheTTL,
		providerURL: opts.ProviderURL,
	}
}

// Home renders the paginated list of upcoming events.
func (c *PageController) Home(w http.ResponseWriter, r *http.Request) {
	c.serveCached(w, r, func() (int, []byte, error) {
		params := helpers.ParsePagination(r, helpers.EventGridLimits)
		events, total, err := c.Events.ListEvents(r.Context(), params)
		if err != nil {
			return 0, nil, err
		}
		page := views.HomePage{
			Layout: c.layout(r, ""),
			Events: events,
			Pager:  helpers.NewPager(r, params, total),
		}
		body, err := c.renderBytes(views.PageHome, page)
		return http.StatusOK, body, err
	})
}

// EventDetail renders one event with its registration state for the viewer.
func (c *PageController) EventDetail(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		c.renderError(w, r, http.StatusNotFound, "event not found")
		return
	}
	c.serveCached(w, r, func() (int, []byte, error) {
		event, err := c.Events.GetEventByID(r.Context(), eventID)
		if errors.Is(err, domain.ErrNotFound) {
			return http.StatusNotFound, nil, nil
		}
		if err != nil {
			return 0, nil, err
		}
		attendees, err := c.Attendees.CountRegistrations(r.Context(), eventID)
		if err != nil {
			return 0, nil, err
		}
		page := views.EventDetailPage{
			Layout:    c.layout(r, event.Title),
			Event:     event,
			Attendees: attendees,
		}
		if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
			page.CanEdit = event.OrganizerID == userID
			if page.Registered, err = c.Attendees.IsRegistered(r.Context(), eventID, userID); err != nil {
				return 0, nil, err
			}
		}
		body, err := c.renderBytes(views.PageEventDetail, page)
		return http.StatusOK, body, err
	})
}

// Profile renders the events the viewer organises and the events they registered for.
func (c *PageController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, c.layout(r, "").SignInURL, http.StatusSeeOther)
		return
	}
	c.serveCached(w, r, func() (int, []byte, error) {
		organized, err := c.Events.ListEventsByOrganizer(r.Context(), userID)
		if err != nil {
			return 0, nil, fmt.Errorf("list organized events: %w", err)
		}
		registered, err := c.Attendees.ListMyRegisteredEvents(r.Context(), userID)
		if err != nil {
			return 0, nil, fmt.Errorf("list registered events: %w", err)
		}
		body, err := c.renderBytes(views.PageProfile, views.ProfilePage{
			Layout:     c.layout(r, "Profile"),
			Organized:  organized,
			Registered: registered,
		})
		return http.StatusOK, body, err
	})
}

// SignIn renders the auth layout with a link to the hosted provider.
func (c *PageController) SignIn(w http.ResponseWriter, r *http.Request) {
	back := r.URL.Query().Get("redirect_url")
	if back == "" {
		back = "/"
	}
	c.render(w, r, http.StatusOK, views.PageSignIn, views.SignInPage{
		Layout:      c.layout(r, "Sign in"),
		ProviderURL: middleware.SignInRedirect(c.providerURL, back),
	})
}

// NotFound renders the error page for unmatched routes.
func (c *PageController) NotFound(w http.ResponseWriter, r *http.Request) {
	c.renderError(w, r, http.StatusNotFound, "page not found")
}

// serveCached answers from the page cache or renders with build and stores a 200 result.
// build returning a non-200 status with no body renders the error page for that status.
func (c *PageController) serveCached(w http.ResponseWriter, r *http.Request, build func() (int, []byte, error)) {
	ctx := r.Context()
	viewer, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		viewer = anonymousViewer
	}
	key := domain.PageCacheKey(r.URL.Path, r.URL.RawQuery, viewer)

	if c.Cache != nil {
		body, hit, err := c.Cache.Get(ctx, key)
		if err != nil {
			c.logger.WarnContext(ctx, "page cache get failed", "key", key, "err", err)
		}
		if hit {
			w.Header().Set("X-Cache", "HIT")
			writeHTML(w, http.StatusOK, body)
			return
		}
	}

	status, body, err := build()
	if err != nil {
		c.logger.ErrorContext(ctx, "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		c.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	if status != http.StatusOK {
		c.renderError(w, r, status, http.StatusText(status))
		return
	}
	if c.Cache != nil {
		if err := c.Cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "page cache set failed", "key", key, "err", err)
		}
	}
	w.Header().Set("X-Cache", "MISS")
	writeHTML(w, http.StatusOK, body)
}
