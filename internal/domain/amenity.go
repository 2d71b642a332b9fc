package domain

type PropertyType string

const (
	PropertyHotel      PropertyType = "hotel"
	PropertyHostel     PropertyType = "hostel"
	PropertyApartment  PropertyType = "apartment"
	PropertyResort     PropertyType = "resort"
	PropertyGuesthouse PropertyType = "guesthouse"
)

type RuleType string

const (
	RuleRequires RuleType = "requires"
	RuleExcludes RuleType = "excludes"
	RuleImplies  RuleType = "implies"
)

// BusinessRule relates one amenity to another: requires/excludes are hard,
// implies is advisory.
type BusinessRule struct {
	Type      RuleType `json:"type"`
	AmenityID string   `json:"amenity_id"`
	Condition string   `json:"condition,omitempty"`
}

// AmenityDefinition is static reference data; the engine only reads it.
// An empty ApplicablePropertyTypes means "applies to every property type".
type AmenityDefinition struct {
	ID                      string         `json:"id"`
	Name                    string         `json:"name"`
	Category                string         `json:"category"`
	ApplicablePropertyTypes []PropertyType `json:"applicable_property_types,omitempty"`
	BusinessRules           []BusinessRule `json:"business_rules,omitempty"`
}

func (a AmenityDefinition) AppliesTo(pt PropertyType) bool {
	if len(a.ApplicablePropertyTypes) == 0 {
		return true
	}
	for _, t := range a.ApplicablePropertyTypes {
		if t == pt {
			return true
		}
	}
	return false
}
