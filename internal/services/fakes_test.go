package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"evently/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create and Update return this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	all := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartDateTime.Before(all[j].StartDateTime) })
	start := min(params.Offset(), len(all))
	end := min(start+params.PageSize, len(all))
	return all[start:end], len(all), nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeCategoryRepo struct {
	byID      map[string]*domain.Category
	createErr error
	listErr   error
}

func newFakeCategoryRepo(cats ...*domain.Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{byID: make(map[string]*domain.Category)}
	for _, c := range cats {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Category
	for _, c := range f.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategoryRepo) Create(ctx context.Context, name string) (*domain.Category, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, c := range f.byID {
		if strings.EqualFold(c.Name, name) {
			return nil, domain.ErrDuplicateCategory
		}
	}
	c := &domain.Category{ID: fmt.Sprintf("cat-%d", len(f.byID)+1), Name: name}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

type fakeRegistrationRepo struct {
	byKey     map[string]*domain.EventRegistration
	createErr error
	getErr    error
	nextID    int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{byKey: make(map[string]*domain.EventRegistration)}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.EventRegistration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.byKey[reg.EventID+":"+reg.UserID] = reg
	return nil
}

func (f *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if reg, ok := f.byKey[eventID+":"+userID]; ok {
		return reg, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.EventRegistration, error) {
	var out []*domain.EventRegistration
	for _, reg := range f.byKey {
		if reg.UserID == userID {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	n := 0
	for _, reg := range f.byKey {
		if reg.EventID == eventID {
			n++
		}
	}
	return n, nil
}

type fakeEmailService struct {
	sent []*domain.EventPublishedEmailData
	err  error
}

func (f *fakeEmailService) SendEventPublished(ctx context.Context, data *domain.EventPublishedEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

type fakePageCache struct {
	mu          sync.Mutex
	invalidated []string
	err         error
}

func (f *fakePageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (f *fakePageCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	return nil
}

func (f *fakePageCache) Invalidate(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, path)
	return f.err
}
