package quality

import "hotel_onboarding/internal/domain"

// Config carries every tunable threshold the analyzer and aggregator use.
// It is injected at construction; nothing in this package reads the
// environment.
type Config struct {
	MinWidth        int
	MinHeight       int
	AspectTolerance float64

	// BlurThreshold is compared against the mean squared Laplacian response,
	// normalized by interior pixel count so it is resolution independent
	// (0-255 grayscale scale).
	BlurThreshold float64

	HighQualityScore      int
	MinImageCount         int
	ExpectedCategories    []string
	MinDescriptionLength  int
	GoodDescriptionLength int
	DetailedPolicyLength  int

	// MinAmenities is the expected minimum amenity count per property type;
	// property types not listed fall back to DefaultMinAmenities.
	MinAmenities        map[domain.PropertyType]int
	DefaultMinAmenities int
}

func DefaultConfig() Config {
	return Config{
		MinWidth:              1920,
		MinHeight:             1080,
		AspectTolerance:       0.1,
		BlurThreshold:         100,
		HighQualityScore:      80,
		MinImageCount:         5,
		ExpectedCategories:    []string{"exterior", "interior", "room", "amenity", "dining"},
		MinDescriptionLength:  50,
		GoodDescriptionLength: 200,
		DetailedPolicyLength:  50,
		MinAmenities: map[domain.PropertyType]int{
			domain.PropertyHotel:      10,
			domain.PropertyResort:     12,
			domain.PropertyHostel:     6,
			domain.PropertyApartment:  5,
			domain.PropertyGuesthouse: 5,
		},
		DefaultMinAmenities: 8,
	}
}

func (c Config) minAmenitiesFor(pt domain.PropertyType) int {
	if n, ok := c.MinAmenities[pt]; ok {
		return n
	}
	return c.DefaultMinAmenities
}
