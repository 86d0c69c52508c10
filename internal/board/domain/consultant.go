package domain

import "time"

// Consultant is a person on the board. A nil ProjectID means the consultant
// is available.
type Consultant struct {
	ID        string
	Name      string
	Role      *string
	ProjectID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignedTo reports whether the consultant works on projectID.
func (c Consultant) AssignedTo(projectID string) bool {
	return c.ProjectID != nil && *c.ProjectID == projectID
}
