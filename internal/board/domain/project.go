package domain

import "time"

// AvailableTitle is the label of the unassigned bucket. No project may use it.
const AvailableTitle = "Disponível"

// Project is a unit of work owned by exactly one client.
type Project struct {
	ID        string
	Title     string
	ClientID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
