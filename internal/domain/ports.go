package domain

import (
	"context"
	"time"
)

// SessionStore persists onboarding sessions. Update must compare-and-swap on
// expectedVersion and return ErrVersionConflict when another writer got there
// first; on success the stored and in-memory Version are both incremented.
type SessionStore interface {
	Create(ctx context.Context, s *OnboardingSession) error
	Get(ctx context.Context, id string) (*OnboardingSession, error)
	Update(ctx context.Context, s *OnboardingSession, expectedVersion int64) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*OnboardingSession, error)
}

// AmenityCatalog exposes the static amenity/business-rule reference data.
// Implementations must be safe for unsynchronized concurrent reads.
type AmenityCatalog interface {
	ListAmenities() []AmenityDefinition
}

// ImageDecoder turns raw image bytes into the statistics the analyzer needs.
type ImageDecoder interface {
	Decode(data []byte) (ImageStats, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Notifier is invoked at most once per session, on the ACTIVE -> COMPLETED
// transition.
type Notifier interface {
	SessionCompleted(ctx context.Context, s *OnboardingSession)
}
