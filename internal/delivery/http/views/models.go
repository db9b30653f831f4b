package views

import (
	"strings"

	"evently/internal/delivery/http/helpers"
	"evently/internal/domain"
	"evently/internal/eventform"
	"evently/internal/widget"
)

// NavLink is one entry of the header and mobile navigation.
type NavLink struct {
	Label  string
	Route  string
	Active bool
}

var navLinks = []NavLink{
	{Label: "Home", Route: "/"},
	{Label: "Create Event", Route: "/events/create"},
	{Label: "My Profile", Route: "/profile"},
}

// Layout is the data every page shares with its layout.
type Layout struct {
	Title     string
	Path      string
	Viewer    *domain.Identity
	SignInURL string
}

// SignedIn reports whether the page is rendered for an authenticated user.
func (l Layout) SignedIn() bool {
	return l.Viewer != nil && l.Viewer.UserID != ""
}

// ViewerName is the display name shown in the header.
func (l Layout) ViewerName() string {
	if l.Viewer == nil {
		return ""
	}
	if l.Viewer.Name != "" {
		return l.Viewer.Name
	}
	return l.Viewer.Email
}

// Nav returns the navigation links with the current one marked active.
func (l Layout) Nav() []NavLink {
	links := make([]NavLink, len(navLinks))
	for i, link := range navLinks {
		link.Active = l.Path == link.Route || (link.Route != "/" && strings.HasPrefix(l.Path, link.Route+"/"))
		links[i] = link
	}
	return links
}

type HomePage struct {
	Layout
	helpers.Pager
	Events []*domain.Event
}

type EventDetailPage struct {
	Layout
	Event      *domain.Event
	Attendees  int
	Registered bool
	CanEdit    bool
}

// EventFormPage is the create/update event form.
type EventFormPage struct {
	Layout
	Mode   string
	Action string
	FormID string
	// Values holds the textual value of every field, keyed by field name.
	Values     map[string]string
	IsFree     bool
	Errors     eventform.FieldErrors
	FormError  string
	Category   widget.Dropdown
	Submitting bool
}

// SubmitLabel is the label of the submit button.
func (p EventFormPage) SubmitLabel() string {
	if p.Submitting {
		return "Submitting..."
	}
	return p.Mode + " Event"
}

type ProfilePage struct {
	Layout
	Organized  []*domain.Event
	Registered []*domain.EventRegistrationWithEvent
}

type SignInPage struct {
	Layout
	ProviderURL string
}

type ErrorPage struct {
	Layout
	Status  int
	Message string
}
