package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hotel_onboarding/internal/app"
	"hotel_onboarding/internal/domain"
	"hotel_onboarding/internal/quality"
)

// ---- fakes ----

type fakeCatalog struct{}

func (f *fakeCatalog) ListAmenities() []domain.AmenityDefinition {
	return []domain.AmenityDefinition{
		{ID: "wifi", Name: "Free WiFi", Category: "connectivity"},
		{ID: "parking", Name: "Parking", Category: "facilities"},
		{ID: "valet-parking", Name: "Valet Parking", Category: "facilities",
			BusinessRules: []domain.BusinessRule{{Type: domain.RuleRequires, AmenityID: "parking"}}},
		{ID: "pool", Name: "Pool", Category: "wellness",
			ApplicablePropertyTypes: []domain.PropertyType{domain.PropertyHotel, domain.PropertyResort}},
		{ID: "restaurant", Name: "Restaurant", Category: "dining"},
		{ID: "breakfast", Name: "Breakfast", Category: "dining",
			BusinessRules: []domain.BusinessRule{{Type: domain.RuleImplies, AmenityID: "restaurant"}}},
		{ID: "pets-allowed", Name: "Pets Allowed", Category: "policies",
			BusinessRules: []domain.BusinessRule{{Type: domain.RuleExcludes, AmenityID: "no-pets"}}},
		{ID: "no-pets", Name: "No Pets", Category: "policies",
			BusinessRules: []domain.BusinessRule{{Type: domain.RuleExcludes, AmenityID: "pets-allowed"}}},
	}
}

// memStore is an in-memory SessionStore with real CAS semantics; values are
// deep-copied through JSON so callers never alias the stored state.
type memStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	versions map[string]int64
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string][]byte{}, versions: map[string]int64{}}
}

func encodeSession(s *domain.OnboardingSession) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return b
}

func decodeSession(b []byte) *domain.OnboardingSession {
	var s domain.OnboardingSession
	if err := json.Unmarshal(b, &s); err != nil {
		panic(err)
	}
	if s.Draft == nil {
		s.Draft = domain.Draft{}
	}
	if s.CompletedSteps == nil {
		s.CompletedSteps = map[domain.StepID]bool{}
	}
	return &s
}

func (m *memStore) Create(ctx context.Context, s *domain.OnboardingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("duplicate session %s", s.ID)
	}
	m.sessions[s.ID] = encodeSession(s)
	m.versions[s.ID] = s.Version
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return decodeSession(b), nil
}

func (m *memStore) Update(ctx context.Context, s *domain.OnboardingSession, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return domain.ErrNotFound
	}
	if m.versions[s.ID] != expectedVersion {
		return domain.ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	m.sessions[s.ID] = encodeSession(s)
	m.versions[s.ID] = s.Version
	return nil
}

func (m *memStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.OnboardingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OnboardingSession
	for _, b := range m.sessions {
		s := decodeSession(b)
		if s.Status == domain.StatusActive && now.After(s.ExpiresAt) {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type fakeCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{m: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

type fakeNotifier struct{ count atomic.Int32 }

func (n *fakeNotifier) SessionCompleted(ctx context.Context, s *domain.OnboardingSession) {
	n.count.Add(1)
}

type fakeDecoder struct{}

func (fakeDecoder) Decode(data []byte) (domain.ImageStats, error) {
	if string(data) == "corrupt" {
		return domain.ImageStats{}, errors.New("decode image: bad bytes")
	}
	return domain.ImageStats{
		Width: 1920, Height: 1080,
		ChannelMeans:  []float64{128, 128, 128},
		ChannelStdevs: []float64{50, 50, 50},
		Gray:          sharpGray(1920, 1080),
	}, nil
}

func sharpGray(w, h int) []float64 {
	g := make([]float64, w*h)
	for i := range g {
		if i%2 == 0 {
			g[i] = 255
		}
	}
	return g
}

// ---- helpers ----

func newService(store *memStore) (*app.OnboardingService, *fakeNotifier) {
	n := &fakeNotifier{}
	svc := app.NewOnboardingService(
		store, newFakeCache(), &fakeCatalog{}, fakeDecoder{}, n,
		quality.DefaultConfig(), 72*time.Hour, time.Minute,
	)
	return svc, n
}

func mustCreate(t *testing.T, svc *app.OnboardingService) *domain.OnboardingSession {
	t.Helper()
	sess, err := svc.CreateSession(context.Background(), "hotel-1", "owner-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return sess
}

func amenitiesPayload() domain.AmenitiesPayload {
	return domain.AmenitiesPayload{PropertyType: domain.PropertyHotel, Selected: []string{"wifi", "parking"}}
}

func imagesPayload() domain.ImagesPayload {
	return domain.ImagesPayload{Images: []domain.ImageRecord{
		{ID: "i1", Category: "exterior", QualityScore: 90, Width: 1920, Height: 1080},
		{ID: "i2", Category: "room", QualityScore: 85, Width: 1920, Height: 1080},
	}}
}

func infoPayload() domain.PropertyInfoPayload {
	return domain.PropertyInfoPayload{
		Description: "A quiet boutique hotel within walking distance of the old town and the harbour.",
		Policies:    &domain.Policies{Cancellation: "Free cancellation up to 48 hours before arrival."},
		Location:    &domain.Location{Address: "1 Harbour St", City: "Lisbon", Country: "PT"},
	}
}

func roomsPayload() domain.RoomsPayload {
	return domain.RoomsPayload{Rooms: []domain.Room{
		{ID: "r1", Name: "Double", PricePerNight: 120, MaxOccupancy: 2},
	}}
}

func completeAllSteps(t *testing.T, svc *app.OnboardingService, id string) {
	t.Helper()
	ctx := context.Background()
	for step, payload := range map[domain.StepID]domain.StepPayload{
		domain.StepAmenities:    amenitiesPayload(),
		domain.StepImages:       imagesPayload(),
		domain.StepPropertyInfo: infoPayload(),
		domain.StepRooms:        roomsPayload(),
	} {
		if _, err := svc.UpdateStep(ctx, id, step, payload); err != nil {
			t.Fatalf("update %s: %v", step, err)
		}
	}
}

// ---- tests ----

func TestCreateSession(t *testing.T) {
	svc, _ := newService(newMemStore())
	sess := mustCreate(t, svc)
	if sess.Status != domain.StatusActive || sess.ID == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != 72*time.Hour {
		t.Fatalf("ttl = %v, want 72h", got)
	}

	if _, err := svc.CreateSession(context.Background(), "", ""); err == nil {
		t.Fatal("expected validation error for missing ids")
	}
}

func TestUpdateStep_RejectionLeavesNoPartialWrite(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	sess := mustCreate(t, svc)

	_, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepRooms, domain.RoomsPayload{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	if _, ok := stored.Draft[domain.StepRooms]; ok {
		t.Fatal("rejected payload must not touch the draft")
	}
	if stored.CompletedSteps[domain.StepRooms] {
		t.Fatal("rejected step must not be marked complete")
	}
	if stored.Version != sess.Version {
		t.Fatal("rejected update must not bump the version")
	}
}

func TestUpdateStep_ConcurrentIdenticalSubmissions(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	sess := mustCreate(t, svc)

	const n = 5
	payload := domain.AmenitiesPayload{PropertyType: domain.PropertyHotel, Selected: []string{"wifi"}}
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepAmenities, payload)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("every concurrent identical submission must succeed: %v", err)
		}
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	sel := stored.Draft[domain.StepAmenities].(domain.AmenitiesPayload).Selected
	if len(sel) != 1 || sel[0] != "wifi" {
		t.Fatalf("expected exactly one wifi entry, got %v", sel)
	}
}

func TestUpdateStep_IdempotentScore(t *testing.T) {
	svc, _ := newService(newMemStore())
	sess := mustCreate(t, svc)

	first, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepImages, imagesPayload())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	second, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepImages, imagesPayload())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if first.QualityScore != second.QualityScore {
		t.Fatalf("resubmitting the same payload changed the score: %v -> %v", first.QualityScore, second.QualityScore)
	}
}

func TestUpdateStep_ConcurrentDistinctStepsBothLand(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	sess := mustCreate(t, svc)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepAmenities, amenitiesPayload()); err != nil {
			t.Errorf("amenities: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepPropertyInfo, infoPayload()); err != nil {
			t.Errorf("property-info: %v", err)
		}
	}()
	wg.Wait()

	stored, _ := store.Get(context.Background(), sess.ID)
	if _, ok := stored.Draft[domain.StepAmenities]; !ok {
		t.Fatal("amenities update lost")
	}
	if _, ok := stored.Draft[domain.StepPropertyInfo]; !ok {
		t.Fatal("property-info update lost")
	}
}

func TestUpdateStep_DifferentSetReplaces(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	sess := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := svc.UpdateStep(ctx, sess.ID, domain.StepAmenities, domain.AmenitiesPayload{
		PropertyType: domain.PropertyHotel, Selected: []string{"wifi", "parking"},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.UpdateStep(ctx, sess.ID, domain.StepAmenities, domain.AmenitiesPayload{
		PropertyType: domain.PropertyHotel, Selected: []string{"pool"},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, _ := store.Get(ctx, sess.ID)
	sel := stored.Draft[domain.StepAmenities].(domain.AmenitiesPayload).Selected
	if len(sel) != 1 || sel[0] != "pool" {
		t.Fatalf("a different set must replace, not union: %v", sel)
	}
}

func TestUpdateStep_WarningsDoNotBlock(t *testing.T) {
	svc, _ := newService(newMemStore())
	sess := mustCreate(t, svc)

	res, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepPropertyInfo, domain.PropertyInfoPayload{
		Description: "Ten chars.",
		Policies:    &domain.Policies{},
	})
	if err != nil {
		t.Fatalf("short description must not block: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a length warning")
	}
}

func TestComplete_MissingStepsIsAtomic(t *testing.T) {
	store := newMemStore()
	svc, n := newService(store)
	sess := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := svc.UpdateStep(ctx, sess.ID, domain.StepAmenities, amenitiesPayload()); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, err := svc.Complete(ctx, sess.ID)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []domain.StepID{domain.StepImages, domain.StepPropertyInfo, domain.StepRooms}
	if len(verr.MissingSteps) != len(want) {
		t.Fatalf("missing steps = %v, want %v", verr.MissingSteps, want)
	}
	for i, s := range want {
		if verr.MissingSteps[i] != s {
			t.Fatalf("missing steps = %v, want %v", verr.MissingSteps, want)
		}
	}

	stored, _ := store.Get(ctx, sess.ID)
	if stored.Status != domain.StatusActive {
		t.Fatalf("failed completion must leave status ACTIVE, got %s", stored.Status)
	}
	if n.count.Load() != 0 {
		t.Fatal("failed completion must not notify")
	}
}

func TestComplete_ConcurrentCallersNotifyOnce(t *testing.T) {
	store := newMemStore()
	svc, n := newService(store)
	sess := mustCreate(t, svc)
	completeAllSteps(t, svc, sess.ID)

	const callers = 5
	scores := make(chan float64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			score, err := svc.Complete(context.Background(), sess.ID)
			if err != nil {
				t.Errorf("complete: %v", err)
				return
			}
			scores <- score
		}()
	}
	wg.Wait()
	close(scores)

	var first float64
	i := 0
	for score := range scores {
		if i == 0 {
			first = score
		} else if score != first {
			t.Fatalf("racing completers saw different scores: %v vs %v", first, score)
		}
		i++
	}
	if n.count.Load() != 1 {
		t.Fatalf("notifier fired %d times, want exactly once", n.count.Load())
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	if stored.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", stored.Status)
	}
}

func TestUpdateStep_AfterCompleteFails(t *testing.T) {
	svc, _ := newService(newMemStore())
	sess := mustCreate(t, svc)
	completeAllSteps(t, svc, sess.ID)
	if _, err := svc.Complete(context.Background(), sess.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepAmenities, amenitiesPayload())
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestExpiry_LazyAbandonOnMutation(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)

	cur := time.Now()
	var mu sync.Mutex
	svc.WithClock(func() time.Time { mu.Lock(); defer mu.Unlock(); return cur })

	sess := mustCreate(t, svc)

	mu.Lock()
	cur = cur.Add(73 * time.Hour)
	mu.Unlock()

	_, err := svc.UpdateStep(context.Background(), sess.ID, domain.StepAmenities, amenitiesPayload())
	if !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	if stored.Status != domain.StatusAbandoned {
		t.Fatalf("status = %s, want ABANDONED", stored.Status)
	}

	if _, err := svc.Complete(context.Background(), sess.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("completing an abandoned session: got %v", err)
	}
}

func TestSweepExpired(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)

	cur := time.Now()
	var mu sync.Mutex
	svc.WithClock(func() time.Time { mu.Lock(); defer mu.Unlock(); return cur })

	a := mustCreate(t, svc)
	b := mustCreate(t, svc)

	mu.Lock()
	cur = cur.Add(73 * time.Hour)
	mu.Unlock()

	n, err := svc.SweepExpired(context.Background(), 10)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Fatalf("swept %d, want 2", n)
	}
	for _, id := range []string{a.ID, b.ID} {
		stored, _ := store.Get(context.Background(), id)
		if stored.Status != domain.StatusAbandoned {
			t.Fatalf("session %s status = %s, want ABANDONED", id, stored.Status)
		}
	}
}

func TestGetStatus(t *testing.T) {
	svc, _ := newService(newMemStore())
	sess := mustCreate(t, svc)
	completeAllSteps(t, svc, sess.ID)

	st, err := svc.GetStatus(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Session.ID != sess.ID {
		t.Fatalf("wrong session: %+v", st.Session)
	}
	if st.Breakdown.Overall != st.Session.QualityScore {
		t.Fatalf("cached score %v does not match recomputed %v", st.Session.QualityScore, st.Breakdown.Overall)
	}
	// Cached read returns the same thing.
	st2, err := svc.GetStatus(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st2.Breakdown.Overall != st.Breakdown.Overall {
		t.Fatalf("cache round trip changed the score")
	}

	if _, err := svc.GetStatus(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidateStep_IsPure(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(store)
	sess := mustCreate(t, svc)

	res := svc.ValidateStep(domain.StepAmenities, amenitiesPayload(), false, nil)
	if !res.IsValid {
		t.Fatalf("expected valid: %+v", res)
	}

	stored, _ := store.Get(context.Background(), sess.ID)
	if len(stored.Draft) != 0 {
		t.Fatal("pure validation must not persist anything")
	}
}

func TestAnalyzeImages_IsolatesFailures(t *testing.T) {
	svc, _ := newService(newMemStore())

	out := svc.AnalyzeImages(context.Background(), []app.ImageUpload{
		{Category: "exterior", URL: "good.jpg", Data: []byte("fine")},
		{Category: "interior", URL: "bad.jpg", Data: []byte("corrupt")},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].Result.Score != 100 || !out[0].Result.Passed {
		t.Fatalf("good image should be clean: %+v", out[0].Result)
	}
	if out[1].Result.Score != 0 || out[1].Result.Passed {
		t.Fatalf("corrupt image must degrade to zero-score failure: %+v", out[1].Result)
	}
	if out[0].Record.ID == "" || out[1].Record.ID == "" {
		t.Fatal("records must get ids")
	}
}
