package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/coproconnect/panel/internal/domain/model"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

// ResidentStore caches the last server response for the two resident views:
// the paginated window and the full collection. All reads come from the
// cache; every mutation goes to the backend and is followed by a re-fetch so
// pagination metadata and server-side sort/filter state are always derived
// from the backend, never patched locally.
//
// Consistency contract: Page, All, and LastError return the most recently
// published state; Changes delivers at least one tick after every published
// transition. A per-view generation guard ensures only the response matching
// the latest issued request is applied, so a slow stale response can never
// overwrite fresher state.
type ResidentStore struct {
	client   driven.BackendClient
	session  *SessionManager
	settings driven.SettingsStore
	validate *validator.Validate

	mu        sync.Mutex
	page      model.PagedResidents
	all       []model.Resident
	lastErr   string
	pageGen   uint64
	allGen    uint64
	subs      map[int]chan struct{}
	nextSubID int
}

// NewResidentStore creates a ResidentStore. settings may be nil, in which
// case the built-in default page size is used.
func NewResidentStore(client driven.BackendClient, session *SessionManager, settings driven.SettingsStore) *ResidentStore {
	return &ResidentStore{
		client:   client,
		session:  session,
		settings: settings,
		validate: validator.New(),
		page:     model.EmptyPage(),
		all:      []model.Resident{},
		subs:     make(map[int]chan struct{}),
	}
}

// Start reacts to session transitions: the initial page is loaded when a
// credential appears and all published state is dropped when it goes away.
// Blocks until ctx is cancelled; the session subscription is released on
// return.
func (s *ResidentStore) Start(ctx context.Context) {
	events, unsubscribe := s.session.Subscribe()
	defer unsubscribe()

	if s.session.Authenticated() {
		if _, err := s.LoadPage(ctx, model.PageQuery{Page: 0, Size: s.defaultPageSize(ctx)}); err != nil {
			slog.Error("initial resident load failed", "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("resident store stopped")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case SessionOpened:
				if _, err := s.LoadPage(ctx, model.PageQuery{Page: 0, Size: s.defaultPageSize(ctx)}); err != nil {
					slog.Error("resident load after login failed", "error", err)
				}
			case SessionClosed:
				s.reset()
			}
		}
	}
}

// Page returns the last published paginated view.
func (s *ResidentStore) Page() model.PagedResidents {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// All returns the last published full collection.
func (s *ResidentStore) All() []model.Resident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all
}

// LastError returns the display message of the most recent failed fetch, or
// "" after a successful one.
func (s *ResidentStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Changes registers a change observer. The channel receives at least one
// tick after every published transition; ticks may coalesce. The returned
// function unsubscribes and must be called at teardown.
func (s *ResidentStore) Changes() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

// LoadPage fetches one page and replaces the published view wholesale. On
// failure the empty view is published, the classified message is surfaced
// through LastError, and a session-expired classification additionally
// clears the session. The view is only applied when this is still the
// latest page request.
func (s *ResidentStore) LoadPage(ctx context.Context, q model.PageQuery) (model.PagedResidents, error) {
	if q.Size <= 0 {
		q.Size = s.defaultPageSize(ctx)
	}

	s.mu.Lock()
	s.pageGen++
	gen := s.pageGen
	s.lastErr = ""
	s.mu.Unlock()

	page, err := s.client.FetchResidentsPage(ctx, q)

	s.mu.Lock()
	stale := gen != s.pageGen
	if err != nil {
		if !stale {
			s.page = model.EmptyPage()
			s.lastErr = model.UserMessage(err)
			s.notifyLocked()
		}
		s.mu.Unlock()

		if model.KindOf(err) == model.ErrSessionExpired {
			s.session.Clear(ctx, model.ClearSessionExpired)
		}
		return model.EmptyPage(), err
	}

	if !stale {
		s.page = page
		s.notifyLocked()
	}
	s.mu.Unlock()

	return page, nil
}

// LoadAll fetches the entire unpaginated collection, published separately
// from the paginated view. Same failure and staleness rules as LoadPage.
func (s *ResidentStore) LoadAll(ctx context.Context) ([]model.Resident, error) {
	s.mu.Lock()
	s.allGen++
	gen := s.allGen
	s.lastErr = ""
	s.mu.Unlock()

	residents, err := s.client.FetchAllResidents(ctx)

	s.mu.Lock()
	stale := gen != s.allGen
	if err != nil {
		if !stale {
			s.all = []model.Resident{}
			s.lastErr = model.UserMessage(err)
			s.notifyLocked()
		}
		s.mu.Unlock()

		if model.KindOf(err) == model.ErrSessionExpired {
			s.session.Clear(ctx, model.ClearSessionExpired)
		}
		return nil, err
	}

	if !stale {
		s.all = residents
		s.notifyLocked()
	}
	s.mu.Unlock()

	return residents, nil
}

// Create validates the record locally, assigns occupant UIDs, creates it on
// the backend, then re-fetches the first page so the fresh totals come from
// the backend. A reload failure is returned alongside the created record.
func (s *ResidentStore) Create(ctx context.Context, r model.Resident) (model.Resident, error) {
	if err := s.validateRecord(r); err != nil {
		return model.Resident{}, err
	}
	r = withOccupantUIDs(r)

	created, err := s.client.CreateResident(ctx, r)
	if err != nil {
		return model.Resident{}, err
	}

	_, err = s.LoadPage(ctx, model.PageQuery{Page: 0, Size: s.currentPageSize()})
	return created, err
}

// Update validates and replaces the record on the backend, then re-fetches
// the current page.
func (s *ResidentStore) Update(ctx context.Context, r model.Resident) (model.Resident, error) {
	if r.ID == "" {
		return model.Resident{}, model.NewAppError(model.ErrValidation, "Missing identifier for update.")
	}
	if err := s.validateRecord(r); err != nil {
		return model.Resident{}, err
	}
	r = withOccupantUIDs(r)

	updated, err := s.client.UpdateResident(ctx, r)
	if err != nil {
		return model.Resident{}, err
	}

	page, size := s.currentWindow()
	_, err = s.LoadPage(ctx, model.PageQuery{Page: page, Size: size})
	return updated, err
}

// Delete removes the record on the backend, then re-fetches the current page
// so pagination metadata is re-derived rather than patched.
func (s *ResidentStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.NewAppError(model.ErrValidation, "Missing identifier for deletion.")
	}

	if err := s.client.DeleteResident(ctx, id); err != nil {
		return err
	}

	page, size := s.currentWindow()
	_, err := s.LoadPage(ctx, model.PageQuery{Page: page, Size: size})
	return err
}

// reset drops all published state; used when the session goes away.
func (s *ResidentStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = model.EmptyPage()
	s.all = []model.Resident{}
	s.lastErr = ""
	s.notifyLocked()
}

// notifyLocked ticks every change subscriber. Callers hold s.mu. The
// channels carry capacity-1 coalescing ticks, so a pending tick satisfies
// the contract for any number of transitions.
func (s *ResidentStore) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// currentWindow returns the page index and size of the published view.
func (s *ResidentStore) currentWindow() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := s.page.PageSize
	if size <= 0 {
		size = model.DefaultPageSize
	}
	return s.page.CurrentPage, size
}

func (s *ResidentStore) currentPageSize() int {
	_, size := s.currentWindow()
	return size
}

// defaultPageSize resolves the configured page size, falling back to the
// built-in default.
func (s *ResidentStore) defaultPageSize(ctx context.Context) int {
	if s.settings == nil {
		return model.DefaultPageSize
	}
	raw, err := s.settings.Get(ctx, driven.SettingPageSize)
	if err != nil || raw == "" {
		return model.DefaultPageSize
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		return model.DefaultPageSize
	}
	return size
}

// validateRecord runs local validation; failures are classified and never
// reach the wire.
func (s *ResidentStore) validateRecord(r model.Resident) error {
	err := s.validate.Struct(r)
	if err == nil {
		return nil
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return model.NewAppError(model.ErrValidation, fmt.Sprintf("Invalid value for field %s.", first.Field()))
	}
	return model.NewAppError(model.ErrValidation, "Invalid record. Please check the submitted information.")
}

// withOccupantUIDs returns a copy of the record with a UID assigned to every
// occupant that lacks one. UIDs track occupant rows across edits.
func withOccupantUIDs(r model.Resident) model.Resident {
	if len(r.Occupants) == 0 {
		return r
	}

	occupants := make([]model.Occupant, len(r.Occupants))
	copy(occupants, r.Occupants)
	for i := range occupants {
		if occupants[i].UID == "" {
			occupants[i].UID = uuid.NewString()
		}
	}
	r.Occupants = occupants
	return r
}
