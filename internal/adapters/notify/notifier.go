// Package notify carries completion notifications to downstream systems.
// The log notifier stands in until a real integration is wired.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"hotel_onboarding/internal/domain"
)

type LogNotifier struct{ l zerolog.Logger }

func NewLogNotifier(l zerolog.Logger) *LogNotifier { return &LogNotifier{l: l} }

func (n *LogNotifier) SessionCompleted(ctx context.Context, s *domain.OnboardingSession) {
	n.l.Info().
		Str("session", s.ID).
		Str("hotel", s.HotelID).
		Float64("quality_score", s.QualityScore).
		Msg("onboarding completed")
}
