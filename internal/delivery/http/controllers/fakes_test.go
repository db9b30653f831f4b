package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"evently/internal/delivery/http/middleware"
	"evently/internal/delivery/http/views"
	"evently/internal/domain"

	"github.com/stretchr/testify/require"
)

const (
	eventID1 = "11111111-1111-1111-1111-111111111111"
	eventID2 = "22222222-2222-2222-2222-222222222222"
)

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	testNow    = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	organizer  = domain.Identity{UserID: "user-1", Email: "ada@example.com", Name: "Ada"}
	visitor    = domain.Identity{UserID: "user-2", Email: "bob@example.com", Name: "Bob"}
)

func newRenderer(t *testing.T) *views.Renderer {
	t.Helper()
	r, err := views.NewRenderer()
	require.NoError(t, err)
	return r
}

func withIdentity(r *http.Request, id domain.Identity) *http.Request {
	return r.WithContext(middleware.SetIdentity(r.Context(), id))
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func multipartRequest(t *testing.T, target string, values url.Values, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sampleEvent(id, organizerID string) *domain.Event {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	return &domain.Event{
		ID:            id,
		Title:         "Go Meetup",
		Description:   "Talks about Go",
		Location:      "Berlin",
		StartDateTime: start,
		EndDateTime:   start.Add(2 * time.Hour),
		CategoryID:    "cat-1",
		Category:      &domain.Category{ID: "cat-1", Name: "Tech"},
		Price:         "10",
		URL:           "https://example.com/meetup",
		OrganizerID:   organizerID,
	}
}

type fakeEventService struct {
	mu        sync.Mutex
	events    map[string]*domain.Event
	total     int
	listErr   error
	createErr error
	created   []domain.CreateEventParams
	updated   []domain.UpdateEventParams
	listCalls int
}

func newFakeEventService(events ...*domain.Event) *fakeEventService {
	f := &fakeEventService{events: make(map[string]*domain.Event)}
	for _, e := range events {
		f.events[e.ID] = e
	}
	f.total = len(events)
	return f
}

func (f *fakeEventService) CreateEvent(ctx context.Context, params domain.CreateEventParams) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	e := params.Event
	e.ID = eventID2
	e.OrganizerID = params.UserID
	f.events[e.ID] = &e
	return &e, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, params domain.UpdateEventParams) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, params)
	existing, ok := f.events[params.EventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if existing.OrganizerID != params.UserID {
		return nil, domain.ErrForbidden
	}
	e := params.Event
	e.ID = existing.ID
	e.OrganizerID = existing.OrganizerID
	f.events[e.ID] = &e
	return &e, nil
}

func (f *fakeEventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	out := make([]*domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, f.total, nil
}

func (f *fakeEventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeCategoryService struct {
	mu      sync.Mutex
	cats    []*domain.Category
	listErr error
	err     error
}

func newFakeCategoryService() *fakeCategoryService {
	return &fakeCategoryService{cats: []*domain.Category{{ID: "cat-1", Name: "Tech"}}}
}

func (f *fakeCategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*domain.Category(nil), f.cats...), nil
}

func (f *fakeCategoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, c := range f.cats {
		if strings.EqualFold(c.Name, name) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateCategory, name)
		}
	}
	c := &domain.Category{ID: fmt.Sprintf("cat-%d", len(f.cats)+1), Name: name}
	f.cats = append(f.cats, c)
	return c, nil
}

type fakeAttendeeService struct {
	mu         sync.Mutex
	registered map[string]bool
	count      int
	err        error
	items      []*domain.EventRegistrationWithEvent
}

func newFakeAttendeeService() *fakeAttendeeService {
	return &fakeAttendeeService{registered: make(map[string]bool)}
}

func (f *fakeAttendeeService) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.EventRegistration, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	key := eventID + "|" + userID
	created := !f.registered[key]
	f.registered[key] = true
	return &domain.EventRegistration{ID: "reg-1", EventID: eventID, UserID: userID}, created, nil
}

func (f *fakeAttendeeService) ListMyRegisteredEvents(ctx context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeAttendeeService) IsRegistered(ctx context.Context, eventID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered[eventID+"|"+userID], f.err
}

func (f *fakeAttendeeService) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	return f.count, f.err
}

type fakeUploader struct {
	mu     sync.Mutex
	assets []domain.UploadedAsset
	err    error
	got    []domain.StagedFile
}

func (f *fakeUploader) Upload(ctx context.Context, files []domain.StagedFile) ([]domain.UploadedAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, files...)
	return f.assets, f.err
}
