package app

import (
	"sort"

	"hotel_onboarding/internal/domain"
)

// canonicalizePayload normalizes an accepted payload before it replaces the
// step's draft entry. List-valued fields are deduplicated by their identity
// key (id for images and rooms, the value itself for amenity selections), so
// resubmitting the same payload stores the same bytes: the merge is
// idempotent by construction.
func canonicalizePayload(p domain.StepPayload) domain.StepPayload {
	switch v := p.(type) {
	case domain.AmenitiesPayload:
		v.Selected = uniqueSorted(v.Selected)
		return v
	case domain.ImagesPayload:
		v.Images = dedupeImages(v.Images)
		return v
	case domain.RoomsPayload:
		rooms := make([]domain.Room, 0, len(v.Rooms))
		seen := make(map[string]bool, len(v.Rooms))
		for _, r := range v.Rooms {
			if r.ID != "" && seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			r.Images = dedupeImages(r.Images)
			rooms = append(rooms, r)
		}
		v.Rooms = rooms
		return v
	default:
		// Scalar-only payloads replace wholesale.
		return p
	}
}

// uniqueSorted treats the selection as a set: duplicates collapse and the
// stored order is canonical, so identical sets compare equal.
func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// dedupeImages keeps the first occurrence per image id, preserving the
// submitted display order.
func dedupeImages(images []domain.ImageRecord) []domain.ImageRecord {
	if len(images) == 0 {
		return images
	}
	seen := make(map[string]bool, len(images))
	out := make([]domain.ImageRecord, 0, len(images))
	for _, img := range images {
		if img.ID != "" && seen[img.ID] {
			continue
		}
		seen[img.ID] = true
		out = append(out, img)
	}
	return out
}
