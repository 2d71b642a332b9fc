package app

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_onboarding/internal/adapters/observability"
	"hotel_onboarding/internal/domain"
	"hotel_onboarding/internal/quality"
)

// casAttempts bounds optimistic-concurrency retries against writers in other
// processes; in-process writers are already serialized by the session lock.
const casAttempts = 3

const lockStripes = 64

// OnboardingService owns the session lifecycle: create, idempotent step
// updates, pure validation, status reads, gated completion and the expiry
// sweep. Per-session serialization is a striped mutex around the
// read-validate-merge-write sequence, backed by a version CAS at the store.
type OnboardingService struct {
	store      domain.SessionStore
	cache      domain.Cache
	decoder    domain.ImageDecoder
	notifier   domain.Notifier
	validators *Validators
	analyzer   *quality.Analyzer
	scorer     *quality.Scorer

	ttl      time.Duration
	cacheTTL time.Duration
	now      func() time.Time

	locks [lockStripes]sync.Mutex
}

func NewOnboardingService(
	store domain.SessionStore,
	cache domain.Cache,
	catalog domain.AmenityCatalog,
	decoder domain.ImageDecoder,
	notifier domain.Notifier,
	qcfg quality.Config,
	ttl, cacheTTL time.Duration,
) *OnboardingService {
	return &OnboardingService{
		store:      store,
		cache:      cache,
		decoder:    decoder,
		notifier:   notifier,
		validators: NewValidators(catalog, qcfg),
		analyzer:   quality.NewAnalyzer(qcfg),
		scorer:     quality.NewScorer(qcfg),
		ttl:        ttl,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

// WithClock overrides the wall clock; tests use it to drive expiry.
func (s *OnboardingService) WithClock(now func() time.Time) *OnboardingService {
	s.now = now
	return s
}

func (s *OnboardingService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *OnboardingService) CreateSession(ctx context.Context, hotelID, ownerID string) (*domain.OnboardingSession, error) {
	res := domain.ValidResult()
	if hotelID == "" {
		res.AddError("hotel id is required")
	}
	if ownerID == "" {
		res.AddError("owner id is required")
	}
	if !res.IsValid {
		return nil, &domain.ValidationError{Errors: res.Errors}
	}

	now := s.now()
	sess := &domain.OnboardingSession{
		ID:             uuid.NewString(),
		HotelID:        hotelID,
		OwnerID:        ownerID,
		Status:         domain.StatusActive,
		Draft:          domain.Draft{},
		CompletedSteps: map[domain.StepID]bool{},
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	observability.ObserveSession("created")
	return sess, nil
}

// UpdateResult is what a successful step submission returns.
type UpdateResult struct {
	QualityScore float64                      `json:"quality_score"`
	Breakdown    domain.QualityScoreBreakdown `json:"breakdown"`
	Warnings     []string                     `json:"warnings,omitempty"`
}

// UpdateStep validates the payload and, only on success, merges it into the
// draft, marks the step complete and refreshes the cached score. The whole
// sequence is atomic per session: validation failures leave no partial
// writes, and the version CAS plus per-session lock make concurrent identical
// submissions converge to a single stored value with every caller succeeding.
func (s *OnboardingService) UpdateStep(ctx context.Context, sessionID string, step domain.StepID, payload domain.StepPayload) (UpdateResult, error) {
	if !domain.KnownStep(step) {
		return UpdateResult{}, &domain.ValidationError{Errors: []string{fmt.Sprintf("unknown step %q", step)}}
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < casAttempts; attempt++ {
		sess, err := s.loadActive(ctx, sessionID)
		if err != nil {
			return UpdateResult{}, err
		}

		res := s.validators.ValidateStep(step, payload, true, sess.Draft)
		if !res.IsValid {
			observability.ObserveValidation(string(step), "rejected")
			return UpdateResult{}, &domain.ValidationError{Errors: res.Errors, Warnings: res.Warnings}
		}

		sess.Draft[step] = canonicalizePayload(payload)
		sess.CompletedSteps[step] = true
		bd := s.scorer.Breakdown(sess.Draft)
		sess.QualityScore = bd.Overall

		if err := s.store.Update(ctx, sess, sess.Version); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				continue
			}
			return UpdateResult{}, err
		}
		s.invalidateStatus(ctx, sessionID)
		observability.ObserveValidation(string(step), "accepted")
		return UpdateResult{QualityScore: bd.Overall, Breakdown: bd, Warnings: res.Warnings}, nil
	}
	return UpdateResult{}, domain.ErrVersionConflict
}

// ValidateStep is the side-effect-free validation entry point for real-time
// checks. Nothing is persisted.
func (s *OnboardingService) ValidateStep(step domain.StepID, payload domain.StepPayload, validateDeps bool, draft domain.Draft) domain.ValidationResult {
	if !domain.KnownStep(step) {
		res := domain.ValidResult()
		res.AddError("unknown step %q", step)
		return res
	}
	return s.validators.ValidateStep(step, payload, validateDeps, draft)
}

// Status is the full read model for one session.
type Status struct {
	Session         *domain.OnboardingSession    `json:"session"`
	Breakdown       domain.QualityScoreBreakdown `json:"breakdown"`
	MissingInfo     []domain.MissingInfo         `json:"missing_info,omitempty"`
	Recommendations []domain.Recommendation      `json:"recommendations,omitempty"`
}

func (s *OnboardingService) GetStatus(ctx context.Context, sessionID string) (*Status, error) {
	key := statusKey(sessionID)
	var cached Status
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		// A cached ACTIVE snapshot may predate expiry; recheck before serving.
		if cached.Session != nil && !(cached.Session.Status == domain.StatusActive && cached.Session.Expired(s.now())) {
			return &cached, nil
		}
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.StatusActive && sess.Expired(s.now()) {
		s.abandon(ctx, sess)
	}

	st := &Status{
		Session:         sess,
		Breakdown:       s.scorer.Breakdown(sess.Draft),
		MissingInfo:     s.scorer.MissingInfo(sess.Draft),
		Recommendations: s.scorer.Recommendations(sess.Draft),
	}
	_ = s.cache.Set(ctx, key, st, int(s.cacheTTL.Seconds()))
	return st, nil
}

// Complete finalizes the session once every required step is done. At most
// one caller performs the ACTIVE -> COMPLETED transition (and triggers the
// notifier); racing callers observe the already-completed session instead.
// A missing step leaves the session exactly as it was.
func (s *OnboardingService) Complete(ctx context.Context, sessionID string) (float64, error) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < casAttempts; attempt++ {
		sess, err := s.store.Get(ctx, sessionID)
		if err != nil {
			return 0, err
		}
		switch sess.Status {
		case domain.StatusCompleted:
			return sess.QualityScore, nil
		case domain.StatusAbandoned:
			return 0, domain.ErrInvalidState
		}
		if sess.Expired(s.now()) {
			s.abandon(ctx, sess)
			return 0, domain.ErrExpired
		}

		if missing := sess.MissingRequiredSteps(); len(missing) > 0 {
			return 0, &domain.ValidationError{MissingSteps: missing}
		}

		sess.Status = domain.StatusCompleted
		sess.QualityScore = s.scorer.Breakdown(sess.Draft).Overall
		if err := s.store.Update(ctx, sess, sess.Version); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				continue
			}
			return 0, err
		}
		s.invalidateStatus(ctx, sessionID)
		observability.ObserveSession("completed")
		if s.notifier != nil {
			s.notifier.SessionCompleted(ctx, sess)
		}
		return sess.QualityScore, nil
	}
	return 0, domain.ErrVersionConflict
}

// SweepExpired marks expired ACTIVE sessions ABANDONED. External schedulers
// call it; nothing in the engine runs it in the background.
func (s *OnboardingService) SweepExpired(ctx context.Context, limit int) (int, error) {
	expired, err := s.store.ListExpired(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, sess := range expired {
		mu := s.lockFor(sess.ID)
		mu.Lock()
		fresh, err := s.store.Get(ctx, sess.ID)
		if err == nil && fresh.Status == domain.StatusActive && fresh.Expired(s.now()) {
			if s.abandon(ctx, fresh) {
				swept++
			}
		}
		mu.Unlock()
	}
	return swept, nil
}

// abandon flips an ACTIVE session to ABANDONED; best effort, caller holds the
// session lock.
func (s *OnboardingService) abandon(ctx context.Context, sess *domain.OnboardingSession) bool {
	sess.Status = domain.StatusAbandoned
	if err := s.store.Update(ctx, sess, sess.Version); err != nil {
		log.Warn().Str("session", sess.ID).Err(err).Msg("abandon failed")
		return false
	}
	s.invalidateStatus(ctx, sess.ID)
	observability.ObserveSession("abandoned")
	return true
}

// loadActive fetches a session and enforces the mutating-operation
// preconditions: it must exist, be ACTIVE and not past its TTL. Expiry is
// applied lazily here.
func (s *OnboardingService) loadActive(ctx context.Context, sessionID string) (*domain.OnboardingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.StatusActive && sess.Expired(s.now()) {
		s.abandon(ctx, sess)
		return nil, domain.ErrExpired
	}
	if sess.Status != domain.StatusActive {
		return nil, domain.ErrInvalidState
	}
	return sess, nil
}

func (s *OnboardingService) invalidateStatus(ctx context.Context, sessionID string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, statusKey(sessionID))
	}
}

func statusKey(sessionID string) string { return "onboarding:status:" + sessionID }

// ImageUpload is one raw image submitted for analysis.
type ImageUpload struct {
	Category string
	URL      string
	Data     []byte
}

// ImageAnalysis pairs the stored record with the full analyzer verdict.
type ImageAnalysis struct {
	Record domain.ImageRecord        `json:"record"`
	Result domain.QualityCheckResult `json:"result"`
}

// AnalyzeImages decodes and scores a batch in parallel. Each item is
// independent: a corrupt image degrades to the zero-score failure result
// without touching its siblings.
func (s *OnboardingService) AnalyzeImages(ctx context.Context, uploads []ImageUpload) []ImageAnalysis {
	out := make([]ImageAnalysis, len(uploads))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			var res domain.QualityCheckResult
			var stats domain.ImageStats
			if decoded, err := s.decoder.Decode(up.Data); err != nil {
				observability.ObserveAnalysis("failed")
				res = quality.AnalysisFailure()
			} else {
				stats = decoded
				res = s.analyzer.Analyze(stats)
				observability.ObserveAnalysis("ok")
			}
			out[i] = ImageAnalysis{
				Record: domain.ImageRecord{
					ID:           uuid.NewString(),
					Category:     up.Category,
					URL:          up.URL,
					QualityScore: res.Score,
					Width:        stats.Width,
					Height:       stats.Height,
					Issues:       res.Issues,
				},
				Result: res,
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
