package models

// Group is a set of members who share expenses.
// The creator acts as the group's administrator.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Trip to Lisbon").
	Name string

	// Description is optional free text.
	Description string

	// Members is the list of member user IDs. The creator is always a member.
	Members []string

	// CreatedBy is the user ID of the group's creator (admin).
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID created the group.
func (g *Group) IsAdmin(userID string) bool {
	return g.CreatedBy == userID
}
