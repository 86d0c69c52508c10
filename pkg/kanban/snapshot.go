package kanban

import (
	"slices"
	"time"
)

// Snapshot is an immutable, ordered view of the board. Clients, projects
// and consultants are sorted by creation time.
type Snapshot struct {
	Clients   []ClientView
	Available []ConsultantView
}

type ClientView struct {
	ID        string
	Name      string
	Expanded  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Projects  []ProjectView
}

type ProjectView struct {
	ID          string
	Title       string
	ClientID    string
	ClientName  string
	Collapsed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Consultants []ConsultantView
}

type ConsultantView struct {
	ID        string
	Name      string
	Role      string
	Placement Placement
	Label     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projects returns every project on the board in display order.
func (s Snapshot) Projects() []ProjectView {
	var out []ProjectView
	for _, c := range s.Clients {
		out = append(out, c.Projects...)
	}
	return out
}

// Consultants returns every consultant: assigned ones in board order, then
// the available bucket.
func (s Snapshot) Consultants() []ConsultantView {
	var out []ConsultantView
	for _, p := range s.Projects() {
		out = append(out, p.Consultants...)
	}
	return append(out, s.Available...)
}

// Consultant finds a consultant by id.
func (s Snapshot) Consultant(id string) (ConsultantView, bool) {
	all := s.Consultants()
	i := slices.IndexFunc(all, func(c ConsultantView) bool { return c.ID == id })
	if i < 0 {
		return ConsultantView{}, false
	}
	return all[i], true
}

// Project finds a project by id.
func (s Snapshot) Project(id string) (ProjectView, bool) {
	for _, p := range s.Projects() {
		if p.ID == id {
			return p, true
		}
	}
	return ProjectView{}, false
}

func byCreation[T any](items []T, key func(T) (time.Time, string)) {
	slices.SortFunc(items, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		if c := at.Compare(bt); c != 0 {
			return c
		}
		switch {
		case aid < bid:
			return -1
		case aid > bid:
			return 1
		}
		return 0
	})
}
