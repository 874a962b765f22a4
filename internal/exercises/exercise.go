package exercises

import "time"

// Exercise is a catalog entry. System entries have no owner and are
// visible to everybody, user entries only to their owner.
type Exercise struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	PrimaryMuscle    *string   `json:"primaryMuscle,omitempty"`
	SecondaryMuscles []string  `json:"secondaryMuscles,omitempty"`
	OwnerID          *string   `json:"ownerId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (e Exercise) IsSystem() bool {
	return e.OwnerID == nil
}
