package domain

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripStatusPlanning  TripStatus = "planning"
	TripStatusConfirmed TripStatus = "confirmed"
	TripStatusCompleted TripStatus = "completed"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPlanning, TripStatusConfirmed, TripStatusCompleted:
		return true
	default:
		return false
	}
}

// Trip is the denormalized trip record handed to callers. Collaborators is the
// email membership set of the trip; PendingSync is only ever true on records
// that live in the local cache and were never accepted by the remote store.
type Trip struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	StartDate     *string    `json:"start_date,omitempty"`
	EndDate       *string    `json:"end_date,omitempty"`
	Countries     []string   `json:"countries"`
	Cities        []string   `json:"cities"`
	Status        TripStatus `json:"status"`
	Collaborators []string   `json:"collaborators"`
	PendingSync   bool       `json:"pending_sync,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TripFields carries the caller-supplied fields of a new trip.
type TripFields struct {
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	StartDate   *string     `json:"start_date,omitempty"`
	EndDate     *string     `json:"end_date,omitempty"`
	Countries   []string    `json:"countries,omitempty"`
	Cities      []string    `json:"cities,omitempty"`
	Status      *TripStatus `json:"status,omitempty"`
}

// TripPatch is a partial update; nil fields are left untouched.
type TripPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	StartDate   *string     `json:"start_date,omitempty"`
	EndDate     *string     `json:"end_date,omitempty"`
	Countries   *[]string   `json:"countries,omitempty"`
	Cities      *[]string   `json:"cities,omitempty"`
	Status      *TripStatus `json:"status,omitempty"`
}

func (p TripPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil && p.EndDate == nil &&
		p.Countries == nil && p.Cities == nil && p.Status == nil
}

// Apply copies every non-nil patch field onto the trip and stamps UpdatedAt.
func (t *Trip) Apply(p TripPatch, updatedAt time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = blankToNil(p.Description)
	}
	if p.StartDate != nil {
		t.StartDate = blankToNil(p.StartDate)
	}
	if p.EndDate != nil {
		t.EndDate = blankToNil(p.EndDate)
	}
	if p.Countries != nil {
		t.Countries = append([]string{}, (*p.Countries)...)
	}
	if p.Cities != nil {
		t.Cities = append([]string{}, (*p.Cities)...)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.UpdatedAt = updatedAt
}

// SameSchedule reports whether both trips share owner, title, start date and
// end date.
func (t Trip) SameSchedule(other Trip) bool {
	return t.OwnerID == other.OwnerID &&
		t.Title == other.Title &&
		optionalEqual(t.StartDate, other.StartDate) &&
		optionalEqual(t.EndDate, other.EndDate)
}

func (t Trip) HasCollaborator(email string) bool {
	for _, c := range t.Collaborators {
		if c == email {
			return true
		}
	}
	return false
}

func (t Trip) Clone() Trip {
	out := t
	out.Countries = append([]string{}, t.Countries...)
	out.Cities = append([]string{}, t.Cities...)
	out.Collaborators = append([]string{}, t.Collaborators...)
	return out
}

// blankToNil maps an explicit empty string to "no value".
func blankToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	out := *v
	return &out
}

func optionalEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
