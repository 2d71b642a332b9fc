package quality

import (
	"sort"

	"hotel_onboarding/internal/domain"
)

// Recommendations emits one entry per factor scoring below the good
// threshold, ranked by priority then estimated impact. Impact is the factor's
// share of the overall scale times its shortfall.
func (s *Scorer) Recommendations(d domain.Draft) []domain.Recommendation {
	var out []domain.Recommendation
	for _, f := range s.allFactors(d) {
		if f.score >= goodThreshold {
			continue
		}
		shortfall := goodThreshold - f.score
		out = append(out, domain.Recommendation{
			Type:            f.component,
			Priority:        priorityFor(shortfall),
			EstimatedImpact: round1(f.weight * shortfall / 100),
			ActionRequired:  f.action,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return priorityRank(out[i].Priority) > priorityRank(out[j].Priority)
		}
		if out[i].EstimatedImpact != out[j].EstimatedImpact {
			return out[i].EstimatedImpact > out[j].EstimatedImpact
		}
		return out[i].ActionRequired < out[j].ActionRequired
	})
	return out
}

func priorityFor(shortfall float64) domain.Priority {
	switch {
	case shortfall >= 20:
		return domain.PriorityHigh
	case shortfall >= 10:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func priorityRank(p domain.Priority) int {
	switch p {
	case domain.PriorityHigh:
		return 3
	case domain.PriorityMedium:
		return 2
	default:
		return 1
	}
}

// MissingInfo groups absent required data by category. It is independent of
// the numeric score: a field is either there or it is not.
func (s *Scorer) MissingInfo(d domain.Draft) []domain.MissingInfo {
	var out []domain.MissingInfo

	if p, ok := d[domain.StepAmenities].(domain.AmenitiesPayload); !ok || len(p.Selected) == 0 {
		out = append(out, domain.MissingInfo{
			Category: string(domain.StepAmenities),
			Fields:   []string{"selected amenities"},
			Priority: domain.PriorityHigh,
		})
	}

	if p, ok := d[domain.StepImages].(domain.ImagesPayload); !ok || len(p.Images) == 0 {
		out = append(out, domain.MissingInfo{
			Category: string(domain.StepImages),
			Fields:   []string{"photos"},
			Priority: domain.PriorityHigh,
		})
	} else if len(p.Images) < s.cfg.MinImageCount {
		out = append(out, domain.MissingInfo{
			Category: string(domain.StepImages),
			Fields:   []string{"additional photos"},
			Priority: domain.PriorityMedium,
		})
	}

	info, haveInfo := d[domain.StepPropertyInfo].(domain.PropertyInfoPayload)
	var fields []string
	if !haveInfo || info.Description == "" {
		fields = append(fields, "description")
	}
	if !haveInfo || info.Policies == nil {
		fields = append(fields, "policies")
	}
	if !haveInfo || info.Location == nil {
		fields = append(fields, "location")
	}
	if len(fields) > 0 {
		out = append(out, domain.MissingInfo{
			Category: string(domain.StepPropertyInfo),
			Fields:   fields,
			Priority: domain.PriorityHigh,
		})
	}

	if p, ok := d[domain.StepRooms].(domain.RoomsPayload); !ok || len(p.Rooms) == 0 {
		out = append(out, domain.MissingInfo{
			Category: string(domain.StepRooms),
			Fields:   []string{"rooms"},
			Priority: domain.PriorityHigh,
		})
	}

	return out
}
