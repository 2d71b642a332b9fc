package quality

import (
	"fmt"
	"math"

	"hotel_onboarding/internal/domain"
)

// Scorer aggregates a draft snapshot into the weighted quality breakdown.
// Deterministic: no clock, no randomness; the same draft always yields the
// same numbers.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer { return &Scorer{cfg: cfg} }

const (
	weightImages  = 0.4
	weightContent = 0.4
	weightPolicy  = 0.2

	// goodThreshold is the factor score below which a recommendation is
	// emitted.
	goodThreshold = 70.0
)

// factor is one scored sub-dimension plus everything needed to turn a
// shortfall into a recommendation.
type factor struct {
	component domain.RecommendationType
	weight    float64 // share of the overall 0-100 scale
	score     float64
	label     string
	action    string
}

func (s *Scorer) Breakdown(d domain.Draft) domain.QualityScoreBreakdown {
	img := s.imageFactors(d)
	content := s.contentFactors(d)
	policy := s.policyFactors(d)

	bd := domain.QualityScoreBreakdown{
		ImageQuality:        componentScore(img, imageComponentWeights),
		ContentCompleteness: componentScore(content, nil),
		PolicyClarity:       componentScore(policy, nil),
	}
	overall := weightImages*bd.ImageQuality.Score +
		weightContent*bd.ContentCompleteness.Score +
		weightPolicy*bd.PolicyClarity.Score
	bd.Overall = clamp(round1(overall))
	return bd
}

// imageComponentWeights skew the image component toward the share of
// high-quality photos; content and policy factors are equally weighted.
var imageComponentWeights = []float64{0.5, 0.3, 0.2}

func componentScore(fs []factor, weights []float64) domain.ComponentScore {
	var score float64
	labels := make([]string, 0, len(fs))
	for i, f := range fs {
		w := 1.0 / float64(len(fs))
		if weights != nil {
			w = weights[i]
		}
		score += w * f.score
		labels = append(labels, f.label)
	}
	return domain.ComponentScore{Score: clamp(round1(score)), Factors: labels}
}

func (s *Scorer) imageFactors(d domain.Draft) []factor {
	var images []domain.ImageRecord
	if p, ok := d[domain.StepImages].(domain.ImagesPayload); ok {
		images = p.Images
	}

	var share, coverage, count float64
	high := 0
	cats := map[string]bool{}
	for _, img := range images {
		if img.QualityScore >= s.cfg.HighQualityScore {
			high++
		}
		cats[img.Category] = true
	}
	covered := 0
	for _, c := range s.cfg.ExpectedCategories {
		if cats[c] {
			covered++
		}
	}
	if len(images) > 0 {
		share = 100 * float64(high) / float64(len(images))
		coverage = 100 * float64(covered) / float64(len(s.cfg.ExpectedCategories))
		count = 100 * math.Min(float64(len(images))/float64(s.cfg.MinImageCount), 1)
	}

	// weights must line up with imageComponentWeights
	return []factor{
		{
			component: domain.RecommendImage,
			weight:    weightImages * 100 * 0.5,
			score:     share,
			label:     fmt.Sprintf("%d/%d images high quality", high, len(images)),
			action:    "Upload sharper, well-lit photos at 1920x1080 or better",
		},
		{
			component: domain.RecommendImage,
			weight:    weightImages * 100 * 0.3,
			score:     coverage,
			label:     fmt.Sprintf("%d/%d photo categories covered", covered, len(s.cfg.ExpectedCategories)),
			action:    "Add photos covering exterior, interior, rooms, amenities and dining",
		},
		{
			component: domain.RecommendImage,
			weight:    weightImages * 100 * 0.2,
			score:     count,
			label:     fmt.Sprintf("%d photos uploaded (minimum %d)", len(images), s.cfg.MinImageCount),
			action:    fmt.Sprintf("Upload at least %d photos", s.cfg.MinImageCount),
		},
	}
}

func (s *Scorer) contentFactors(d domain.Draft) []factor {
	info, _ := d[domain.StepPropertyInfo].(domain.PropertyInfoPayload)

	descScore := 0.0
	switch n := len(info.Description); {
	case n == 0:
	case n < s.cfg.MinDescriptionLength:
		descScore = 40
	case n < s.cfg.GoodDescriptionLength:
		descScore = 70
	default:
		descScore = 100
	}

	amenityScore := 0.0
	amenityCount, amenityMin := 0, s.cfg.DefaultMinAmenities
	if p, ok := d[domain.StepAmenities].(domain.AmenitiesPayload); ok {
		amenityCount = len(p.Selected)
		amenityMin = s.cfg.minAmenitiesFor(p.PropertyType)
		amenityScore = 100 * math.Min(float64(amenityCount)/float64(amenityMin), 1)
	}

	locScore := 0.0
	if loc := info.Location; loc != nil {
		filled := 0
		if loc.Address != "" {
			filled++
		}
		if loc.City != "" {
			filled++
		}
		if loc.Country != "" {
			filled++
		}
		if loc.Lat != 0 || loc.Lon != 0 {
			filled++
		}
		locScore = 100 * float64(filled) / 4
	}

	roomScore := 0.0
	roomCount := 0
	if p, ok := d[domain.StepRooms].(domain.RoomsPayload); ok && len(p.Rooms) > 0 {
		roomCount = len(p.Rooms)
		var total float64
		for _, r := range p.Rooms {
			per := 0.0
			if r.Name != "" {
				per += 25
			}
			if r.PricePerNight > 0 {
				per += 25
			}
			if r.MaxOccupancy >= 1 {
				per += 25
			}
			if len(r.Images) > 0 {
				per += 25
			}
			total += per
		}
		roomScore = total / float64(roomCount)
	}

	w := weightContent * 100 / 4
	return []factor{
		{
			component: domain.RecommendContent,
			weight:    w,
			score:     descScore,
			label:     fmt.Sprintf("description length %d", len(info.Description)),
			action:    fmt.Sprintf("Write a fuller property description (%d+ characters)", s.cfg.GoodDescriptionLength),
		},
		{
			component: domain.RecommendAmenity,
			weight:    w,
			score:     amenityScore,
			label:     fmt.Sprintf("%d/%d expected amenities selected", amenityCount, amenityMin),
			action:    "Select more amenities relevant to your property type",
		},
		{
			component: domain.RecommendContent,
			weight:    w,
			score:     locScore,
			label:     "location details",
			action:    "Add full location details: address, city, country and coordinates",
		},
		{
			component: domain.RecommendContent,
			weight:    w,
			score:     roomScore,
			label:     fmt.Sprintf("%d rooms, completeness %.0f%%", roomCount, roomScore),
			action:    "Complete every room with name, price, occupancy and a photo",
		},
	}
}

func (s *Scorer) policyFactors(d domain.Draft) []factor {
	var pol *domain.Policies
	if p, ok := d[domain.StepPropertyInfo].(domain.PropertyInfoPayload); ok {
		pol = p.Policies
	}

	var cancel, inOut, terms, extra float64
	if pol != nil {
		switch n := len(pol.Cancellation); {
		case n == 0:
		case n < s.cfg.DetailedPolicyLength:
			cancel = 60
		default:
			cancel = 100
		}
		if pol.CheckIn != "" {
			inOut += 50
		}
		if pol.CheckOut != "" {
			inOut += 50
		}
		if pol.BookingTerms != "" {
			terms = 100
		}
		set := 0
		if pol.PetsAllowed != nil {
			set++
		}
		if pol.SmokingAllowed != nil {
			set++
		}
		extra = 100 * float64(set) / 2
	}

	w := weightPolicy * 100 / 4
	return []factor{
		{
			component: domain.RecommendPolicy,
			weight:    w,
			score:     cancel,
			label:     "cancellation policy",
			action:    "Provide a detailed cancellation policy",
		},
		{
			component: domain.RecommendPolicy,
			weight:    w,
			score:     inOut,
			label:     "check-in/check-out process",
			action:    "Describe the check-in and check-out process",
		},
		{
			component: domain.RecommendPolicy,
			weight:    w,
			score:     terms,
			label:     "booking terms",
			action:    "Add booking terms",
		},
		{
			component: domain.RecommendPolicy,
			weight:    w,
			score:     extra,
			label:     "pet and smoking policies",
			action:    "Set pet and smoking policies explicitly",
		},
	}
}

func (s *Scorer) allFactors(d domain.Draft) []factor {
	fs := s.imageFactors(d)
	fs = append(fs, s.contentFactors(d)...)
	fs = append(fs, s.policyFactors(d)...)
	return fs
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
