package service

import (
	"github.com/google/uuid"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

// AccessResolver decides whether an identity may see or edit a trip. The
// owner always may; anyone else needs their email in the collaborator set.
// Emails compare trimmed and case-insensitively.
type AccessResolver struct{}

func NewAccessResolver() *AccessResolver {
	return &AccessResolver{}
}

func (r *AccessResolver) CanAccess(trip *domain.Trip, identity domain.Identity) bool {
	if trip == nil {
		return false
	}
	if r.IsOwner(trip, identity) {
		return true
	}
	email := util.NormalizeEmail(identity.Email)
	if email == "" {
		return false
	}
	for _, collaborator := range trip.Collaborators {
		if util.NormalizeEmail(collaborator) == email {
			return true
		}
	}
	return false
}

// CanEdit mirrors CanAccess: membership is the only permission level.
func (r *AccessResolver) CanEdit(trip *domain.Trip, identity domain.Identity) bool {
	return r.CanAccess(trip, identity)
}

func (r *AccessResolver) IsOwner(trip *domain.Trip, identity domain.Identity) bool {
	return trip != nil && identity.UserID != uuid.Nil && trip.OwnerID == identity.UserID
}

func (r *AccessResolver) FilterAccessible(trips []domain.Trip, identity domain.Identity) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for i := range trips {
		if r.CanAccess(&trips[i], identity) {
			out = append(out, trips[i])
		}
	}
	return out
}
