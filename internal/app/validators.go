package app

import (
	"hotel_onboarding/internal/domain"
	"hotel_onboarding/internal/quality"
	"hotel_onboarding/internal/rules"
)

// Validators holds the per-step structural checks. All methods are pure
// functions of the payload plus the catalog / draft snapshot they are given.
type Validators struct {
	catalog domain.AmenityCatalog
	cfg     quality.Config
}

func NewValidators(catalog domain.AmenityCatalog, cfg quality.Config) *Validators {
	return &Validators{catalog: catalog, cfg: cfg}
}

// ValidateStep dispatches to the step's validator. validateDeps enables
// cross-step checks that need the draft snapshot (currently room amenities
// against the property-level selection); those only ever produce warnings.
func (v *Validators) ValidateStep(step domain.StepID, payload domain.StepPayload, validateDeps bool, draft domain.Draft) domain.ValidationResult {
	res := domain.ValidResult()
	if payload == nil {
		res.AddError("missing payload for step %q", step)
		return res
	}
	if payload.Step() != step {
		res.AddError("payload type does not match step %q", step)
		return res
	}

	switch p := payload.(type) {
	case domain.AmenitiesPayload:
		return v.validateAmenities(p)
	case domain.ImagesPayload:
		return v.validateImages(p)
	case domain.PropertyInfoPayload:
		return v.validatePropertyInfo(p)
	case domain.RoomsPayload:
		return v.validateRooms(p, validateDeps, draft)
	case domain.BusinessFeaturesPayload:
		return v.validateBusinessFeatures(p)
	default:
		res.AddError("unknown step %q", step)
		return res
	}
}

func (v *Validators) validateAmenities(p domain.AmenitiesPayload) domain.ValidationResult {
	res := domain.ValidResult()
	if len(p.Selected) == 0 {
		res.AddError("at least one amenity must be selected")
	}
	if p.PropertyType == "" {
		res.AddError("property type is required")
		return res
	}
	res.Merge(rules.Validate(p.Selected, p.PropertyType, v.catalog.ListAmenities()))
	return res
}

// validateImages trusts the quality scores captured at upload time; it never
// re-runs the analyzer.
func (v *Validators) validateImages(p domain.ImagesPayload) domain.ValidationResult {
	res := domain.ValidResult()
	if len(p.Images) == 0 {
		res.AddError("at least one image is required")
		return res
	}
	for i, img := range p.Images {
		if img.ID == "" {
			res.AddError("image %d is missing an id", i)
		}
		for _, iss := range img.Issues {
			if iss.Severity == domain.SeverityHigh {
				res.AddWarning("image %q has an unresolved %s issue: %s", img.ID, iss.Type, iss.Description)
			}
		}
	}
	return res
}

func (v *Validators) validatePropertyInfo(p domain.PropertyInfoPayload) domain.ValidationResult {
	res := domain.ValidResult()
	if p.Description == "" {
		res.AddError("description is required")
	} else if len(p.Description) < v.cfg.MinDescriptionLength {
		// Short but present: recommend, don't block.
		res.AddWarning("description is shorter than %d characters; longer descriptions score better", v.cfg.MinDescriptionLength)
	}
	if p.Policies == nil {
		res.AddError("policies are required")
	}
	return res
}

func (v *Validators) validateRooms(p domain.RoomsPayload, validateDeps bool, draft domain.Draft) domain.ValidationResult {
	res := domain.ValidResult()
	if len(p.Rooms) == 0 {
		res.AddError("at least one room is required")
		return res
	}
	for i, r := range p.Rooms {
		if r.Name == "" {
			res.AddError("room %d requires a name", i)
		}
		if r.MaxOccupancy < 1 {
			res.AddError("room %q requires max occupancy of at least 1", r.Name)
		}
		if r.PricePerNight < 0 {
			res.AddError("room %q has a negative price", r.Name)
		}
	}

	if validateDeps {
		if sel, ok := draft[domain.StepAmenities].(domain.AmenitiesPayload); ok {
			chosen := make(map[string]bool, len(sel.Selected))
			for _, id := range sel.Selected {
				chosen[id] = true
			}
			for _, r := range p.Rooms {
				for _, id := range r.Amenities {
					if !chosen[id] {
						res.AddWarning("room %q lists amenity %q not in the property selection", r.Name, id)
					}
				}
			}
		}
	}
	return res
}

// validateBusinessFeatures: the step is optional, so an empty payload is
// valid; malformed provided entries still fail hard.
func (v *Validators) validateBusinessFeatures(p domain.BusinessFeaturesPayload) domain.ValidationResult {
	res := domain.ValidResult()
	for i, m := range p.MeetingRooms {
		if m.Name == "" {
			res.AddError("meeting room %d requires a name", i)
		}
		if m.Capacity < 1 {
			res.AddError("meeting room %q requires a capacity of at least 1", m.Name)
		}
	}
	for i, w := range p.Workspaces {
		if w.Name == "" {
			res.AddError("workspace %d requires a name", i)
		}
		if w.Seats < 1 {
			res.AddError("workspace %q requires at least 1 seat", w.Name)
		}
	}
	if p.Connectivity != nil && p.Connectivity.WifiSpeedMbps < 0 {
		res.AddError("wifi speed cannot be negative")
	}
	return res
}
