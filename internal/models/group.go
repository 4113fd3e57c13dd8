package models

// Group represents a set of users who share receipts.
//
// The owner is always a member and cannot be removed while owning the
// group. Membership is unique per user.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"groupId"`

	// Name is the display name of the group (e.g., "Roommates").
	// Unique across all groups.
	Name string `json:"name"`

	// Description is an optional free-form description.
	Description string `json:"description,omitempty"`

	// OwnerID is the user who created the group.
	OwnerID string `json:"ownerId"`

	// Members are the users currently in the group, owner included.
	Members []User `json:"members,omitempty"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`
}

// HasMember reports whether the given user belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
