package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StepPayload is the tagged union of per-step submissions. Each variant has
// its own schema and is decoded exactly once at the boundary via
// DecodeStepPayload.
type StepPayload interface {
	Step() StepID
}

type AmenitiesPayload struct {
	PropertyType PropertyType `json:"property_type"`
	Selected     []string     `json:"selected"`
}

func (AmenitiesPayload) Step() StepID { return StepAmenities }

type ImagesPayload struct {
	Images []ImageRecord `json:"images"`
}

func (ImagesPayload) Step() StepID { return StepImages }

type Policies struct {
	Cancellation string `json:"cancellation"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	BookingTerms string `json:"booking_terms"`
	// nil means "not set", distinct from an explicit false.
	PetsAllowed    *bool `json:"pets_allowed,omitempty"`
	SmokingAllowed *bool `json:"smoking_allowed,omitempty"`
}

type Location struct {
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Landmarks []string `json:"landmarks,omitempty"`
}

type PropertyInfoPayload struct {
	Description string    `json:"description"`
	Policies    *Policies `json:"policies"`
	Location    *Location `json:"location"`
}

func (PropertyInfoPayload) Step() StepID { return StepPropertyInfo }

type Room struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	PricePerNight float64       `json:"price_per_night"`
	MaxOccupancy  int           `json:"max_occupancy"`
	Amenities     []string      `json:"amenities,omitempty"`
	Images        []ImageRecord `json:"images,omitempty"`
}

type RoomsPayload struct {
	Rooms []Room `json:"rooms"`
}

func (RoomsPayload) Step() StepID { return StepRooms }

type MeetingRoom struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment,omitempty"`
}

type Connectivity struct {
	WifiSpeedMbps  int  `json:"wifi_speed_mbps"`
	BusinessCenter bool `json:"business_center"`
}

type Workspace struct {
	Name  string `json:"name"`
	Seats int    `json:"seats"`
}

type BusinessFeaturesPayload struct {
	MeetingRooms []MeetingRoom `json:"meeting_rooms,omitempty"`
	Connectivity *Connectivity `json:"connectivity,omitempty"`
	Workspaces   []Workspace   `json:"workspaces,omitempty"`
}

func (BusinessFeaturesPayload) Step() StepID { return StepBusinessFeatures }

// DecodeStepPayload decodes raw JSON into the variant for the given step.
// Unknown fields are rejected so malformed submissions surface at the boundary
// instead of silently dropping data.
func DecodeStepPayload(step StepID, data []byte) (StepPayload, error) {
	decode := func(dst any) error {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(dst)
	}
	switch step {
	case StepAmenities:
		var p AmenitiesPayload
		return p, decode(&p)
	case StepImages:
		var p ImagesPayload
		return p, decode(&p)
	case StepPropertyInfo:
		var p PropertyInfoPayload
		return p, decode(&p)
	case StepRooms:
		var p RoomsPayload
		return p, decode(&p)
	case StepBusinessFeatures:
		var p BusinessFeaturesPayload
		return p, decode(&p)
	default:
		return nil, fmt.Errorf("unknown step %q", step)
	}
}

// MarshalJSON / UnmarshalJSON keep Draft round-trippable through the session
// store's JSON column without losing variant types.
func (d Draft) MarshalJSON() ([]byte, error) {
	m := make(map[StepID]StepPayload, len(d))
	for k, v := range d {
		m[k] = v
	}
	return json.Marshal(m)
}

func (d *Draft) UnmarshalJSON(data []byte) error {
	var raw map[StepID]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Draft, len(raw))
	for step, msg := range raw {
		p, err := DecodeStepPayload(step, msg)
		if err != nil {
			return err
		}
		out[step] = p
	}
	*d = out
	return nil
}
