// Package catalog ships the built-in amenity reference data. Real
// deployments can swap in a DB-backed implementation of the same port.
package catalog

import "hotel_onboarding/internal/domain"

type Static struct {
	amenities []domain.AmenityDefinition
}

func New() *Static { return &Static{amenities: defaultAmenities} }

// ListAmenities returns the catalog; callers must treat entries as read-only.
func (s *Static) ListAmenities() []domain.AmenityDefinition { return s.amenities }

// ListForPropertyType filters the catalog down to amenities applicable to one
// property type.
func (s *Static) ListForPropertyType(pt domain.PropertyType) []domain.AmenityDefinition {
	var out []domain.AmenityDefinition
	for _, a := range s.amenities {
		if a.AppliesTo(pt) {
			out = append(out, a)
		}
	}
	return out
}

var defaultAmenities = []domain.AmenityDefinition{
	{ID: "wifi", Name: "Free WiFi", Category: "connectivity"},
	{ID: "parking", Name: "On-site Parking", Category: "facilities"},
	{ID: "valet-parking", Name: "Valet Parking", Category: "facilities",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleRequires, AmenityID: "parking"},
		}},
	{ID: "pool", Name: "Swimming Pool", Category: "wellness",
		ApplicablePropertyTypes: []domain.PropertyType{domain.PropertyHotel, domain.PropertyResort},
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleImplies, AmenityID: "towel-service"},
		}},
	{ID: "towel-service", Name: "Towel Service", Category: "wellness"},
	{ID: "spa", Name: "Spa & Wellness Center", Category: "wellness",
		ApplicablePropertyTypes: []domain.PropertyType{domain.PropertyHotel, domain.PropertyResort},
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleImplies, AmenityID: "pool"},
		}},
	{ID: "gym", Name: "Fitness Center", Category: "wellness"},
	{ID: "restaurant", Name: "Restaurant", Category: "dining"},
	{ID: "room-service", Name: "Room Service", Category: "dining",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleRequires, AmenityID: "restaurant"},
		}},
	{ID: "bar", Name: "Bar & Lounge", Category: "dining"},
	{ID: "breakfast", Name: "Breakfast Included", Category: "dining",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleImplies, AmenityID: "restaurant"},
		}},
	{ID: "pets-allowed", Name: "Pets Allowed", Category: "policies",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleExcludes, AmenityID: "no-pets"},
		}},
	{ID: "no-pets", Name: "No Pets", Category: "policies",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleExcludes, AmenityID: "pets-allowed"},
		}},
	{ID: "smoking-rooms", Name: "Smoking Rooms", Category: "policies",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleExcludes, AmenityID: "non-smoking"},
		}},
	{ID: "non-smoking", Name: "Non-smoking Property", Category: "policies",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleExcludes, AmenityID: "smoking-rooms"},
		}},
	{ID: "airport-shuttle", Name: "Airport Shuttle", Category: "transport"},
	{ID: "concierge", Name: "Concierge", Category: "services",
		ApplicablePropertyTypes: []domain.PropertyType{domain.PropertyHotel, domain.PropertyResort}},
	{ID: "laundry", Name: "Laundry Service", Category: "services"},
	{ID: "kitchen", Name: "Shared Kitchen", Category: "facilities",
		ApplicablePropertyTypes: []domain.PropertyType{domain.PropertyHostel, domain.PropertyApartment, domain.PropertyGuesthouse}},
	{ID: "meeting-rooms", Name: "Meeting Rooms", Category: "business",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleImplies, AmenityID: "wifi"},
		}},
	{ID: "business-center", Name: "Business Center", Category: "business",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleRequires, AmenityID: "wifi"},
		}},
	{ID: "ev-charging", Name: "EV Charging", Category: "transport",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleRequires, AmenityID: "parking"},
		}},
	{ID: "air-conditioning", Name: "Air Conditioning", Category: "comfort"},
	{ID: "heating", Name: "Heating", Category: "comfort"},
	{ID: "elevator", Name: "Elevator", Category: "accessibility"},
	{ID: "wheelchair-access", Name: "Wheelchair Accessible", Category: "accessibility",
		BusinessRules: []domain.BusinessRule{
			{Type: domain.RuleImplies, AmenityID: "elevator"},
		}},
}
