package entities

import "encoding/json"

// LookupRequest is the body of a doctor lookup.
// Pointer fields distinguish an absent value from a zero one.
type LookupRequest struct {
	Symptoms *string  `json:"symptoms"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}

// LatLng is a geographic point as returned by Google Places
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceCandidate is a nearby search hit; only the place ID is carried forward.
type PlaceCandidate struct {
	PlaceID string
	Name    string
}

// PlaceDetails is the detail record fetched for one candidate.
// Fields absent from the upstream payload stay nil.
type PlaceDetails struct {
	PlaceID          string
	Name             string
	Vicinity         string
	PhoneNumber      *string
	Website          *string
	Rating           *float64
	UserRatingsTotal *int
	Location         *LatLng
	OpeningHours     json.RawMessage
}

// DoctorRecord is one doctor in a lookup response.
// Phone, website and opening hours are always present (null when unknown);
// rating, total ratings and location are left out when upstream omits them.
type DoctorRecord struct {
	PlaceID      string          `json:"place_id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Address      string          `json:"address,omitempty"`
	Phone        *string         `json:"phone"`
	Website      *string         `json:"website"`
	OpeningHours json.RawMessage `json:"opening_hours"`
	Rating       *float64        `json:"rating,omitempty"`
	TotalRatings *int            `json:"total_ratings,omitempty"`
	Location     *LatLng         `json:"location,omitempty"`
}

// LookupResponse is the terminal output of a doctor lookup
type LookupResponse struct {
	Specialization string         `json:"specialization"`
	Doctors        []DoctorRecord `json:"doctors"`
}
