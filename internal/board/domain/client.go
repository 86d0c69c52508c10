package domain

import "time"

// Client is an organisation that owns projects.
type Client struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
