// Package rules evaluates amenity business rules against a selection.
// Evaluation is a pure fold over the static catalog: no mutation, no I/O.
package rules

import "hotel_onboarding/internal/domain"

// Validate checks a selected amenity set against the catalog for the given
// property type. Unknown IDs, property-type incompatibilities and violated
// requires/excludes rules are hard errors; implies rules only warn.
//
// An excludes rule declared on both sides of a pair reports the conflict
// twice, once per direction. That duplication is tolerated; callers get every
// violating edge, not a deduplicated set.
func Validate(selected []string, propertyType domain.PropertyType, catalog []domain.AmenityDefinition) domain.ValidationResult {
	res := domain.ValidResult()

	byID := make(map[string]domain.AmenityDefinition, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}

	// Dedupe while preserving submission order so messages are stable.
	chosen := make(map[string]bool, len(selected))
	var order []string
	for _, id := range selected {
		if !chosen[id] {
			chosen[id] = true
			order = append(order, id)
		}
	}

	if len(order) == 0 {
		res.AddWarning("no amenities selected; listings with amenities perform better")
		return res
	}

	for _, id := range order {
		def, ok := byID[id]
		if !ok {
			res.AddError("unknown amenity %q", id)
			continue
		}
		if !def.AppliesTo(propertyType) {
			res.AddError("amenity %q is not applicable to property type %q", id, propertyType)
		}
		for _, rule := range def.BusinessRules {
			switch rule.Type {
			case domain.RuleRequires:
				if !chosen[rule.AmenityID] {
					res.AddError("amenity %q requires %q", id, rule.AmenityID)
				}
			case domain.RuleExcludes:
				if chosen[rule.AmenityID] {
					res.AddError("amenity %q cannot be selected together with %q", id, rule.AmenityID)
				}
			case domain.RuleImplies:
				if !chosen[rule.AmenityID] {
					res.AddWarning("amenity %q usually comes with %q; consider adding it", id, rule.AmenityID)
				}
			}
		}
	}
	return res
}
