package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hotel_onboarding/internal/domain"
)

// Repo persists onboarding sessions; the draft and completed-step set live
// in JSON columns, everything else in plain columns.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the schema; idempotent.
func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createTableSQL)
	return err
}

func (r *Repo) Create(ctx context.Context, s *domain.OnboardingSession) error {
	draft, err := json.Marshal(s.Draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	steps, err := json.Marshal(s.CompletedSteps)
	if err != nil {
		return fmt.Errorf("marshal completed steps: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertSessionSQL,
		s.ID, s.HotelID, s.OwnerID, string(s.Status),
		string(draft), string(steps), s.QualityScore, s.Version,
		s.CreatedAt.UTC(), s.ExpiresAt.UTC(),
	)
	return err
}

func (r *Repo) Get(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	return scanSession(r.db.QueryRowContext(ctx, getSessionSQL, id))
}

func (r *Repo) Update(ctx context.Context, s *domain.OnboardingSession, expectedVersion int64) error {
	draft, err := json.Marshal(s.Draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	steps, err := json.Marshal(s.CompletedSteps)
	if err != nil {
		return fmt.Errorf("marshal completed steps: %w", err)
	}
	res, err := r.db.ExecContext(ctx, updateSessionSQL,
		string(s.Status), string(draft), string(steps), s.QualityScore,
		s.ExpiresAt.UTC(), s.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is gone or another writer bumped the version.
		if _, gerr := r.Get(ctx, s.ID); gerr != nil {
			return gerr
		}
		return domain.ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	return nil
}

func (r *Repo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.OnboardingSession, error) {
	rows, err := r.db.QueryContext(ctx, listExpiredSQL, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.OnboardingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSession(row rowScanner) (*domain.OnboardingSession, error) {
	var (
		s        domain.OnboardingSession
		status   string
		draftRaw []byte
		stepsRaw []byte
	)
	err := row.Scan(
		&s.ID, &s.HotelID, &s.OwnerID, &status,
		&draftRaw, &stepsRaw, &s.QualityScore, &s.Version,
		&s.CreatedAt, &s.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Status = domain.SessionStatus(status)
	if err := json.Unmarshal(draftRaw, &s.Draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	if err := json.Unmarshal(stepsRaw, &s.CompletedSteps); err != nil {
		return nil, fmt.Errorf("unmarshal completed steps: %w", err)
	}
	if s.Draft == nil {
		s.Draft = domain.Draft{}
	}
	if s.CompletedSteps == nil {
		s.CompletedSteps = map[domain.StepID]bool{}
	}
	return &s, nil
}
