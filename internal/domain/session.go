package domain

import "time"

type SessionStatus string

const (
	StatusActive    SessionStatus = "ACTIVE"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusAbandoned SessionStatus = "ABANDONED"
)

type StepID string

const (
	StepAmenities        StepID = "amenities"
	StepImages           StepID = "images"
	StepPropertyInfo     StepID = "property-info"
	StepRooms            StepID = "rooms"
	StepBusinessFeatures StepID = "business-features"
)

// RequiredSteps must all be completed before a session can be finalized.
// business-features stays optional.
func RequiredSteps() []StepID {
	return []StepID{StepAmenities, StepImages, StepPropertyInfo, StepRooms}
}

func AllSteps() []StepID {
	return []StepID{StepAmenities, StepImages, StepPropertyInfo, StepRooms, StepBusinessFeatures}
}

func KnownStep(id StepID) bool {
	for _, s := range AllSteps() {
		if s == id {
			return true
		}
	}
	return false
}

// Draft accumulates the per-step payloads of one session. Keys are step IDs;
// each accepted update replaces that step's entry wholesale.
type Draft map[StepID]StepPayload

type OnboardingSession struct {
	ID             string          `json:"id"`
	HotelID        string          `json:"hotel_id"`
	OwnerID        string          `json:"owner_id"`
	Status         SessionStatus   `json:"status"`
	Draft          Draft           `json:"draft"`
	CompletedSteps map[StepID]bool `json:"completed_steps"`
	// QualityScore is a cache of the aggregator output for the current draft,
	// always recomputable; never treated as source of truth.
	QualityScore float64   `json:"quality_score"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *OnboardingSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// MissingRequiredSteps returns required steps not yet completed, in canonical
// step order so callers get a stable list.
func (s *OnboardingSession) MissingRequiredSteps() []StepID {
	var missing []StepID
	for _, st := range RequiredSteps() {
		if !s.CompletedSteps[st] {
			missing = append(missing, st)
		}
	}
	return missing
}
