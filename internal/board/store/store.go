package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/consultboard/internal/board/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are reached through methods so a Tx can
// hand out the same repos bound to the transaction.
type Store interface {
	Clients() Clients
	Projects() Projects
	Consultants() Consultants

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back; otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// ListClients returns all clients ordered by creation (oldest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// CreateClient inserts a new client (id is provided by the service via ULID).
	CreateClient(ctx context.Context, c domain.Client) error

	// DeleteClient removes the client row only; projects and consultants are
	// handled by the caller in the same transaction.
	DeleteClient(ctx context.Context, id string) error
}

type Projects interface {
	// ListProjects returns all projects ordered by creation (oldest first).
	ListProjects(ctx context.Context) ([]domain.Project, error)

	ListProjectsByClient(ctx context.Context, clientID string) ([]domain.Project, error)

	GetProjectByID(ctx context.Context, id string) (domain.Project, error)

	CreateProject(ctx context.Context, p domain.Project) error

	// UpdateProjectTitle sets the title and bumps updated_at.
	UpdateProjectTitle(ctx context.Context, id, title string, at time.Time) error

	DeleteProject(ctx context.Context, id string) error

	// DeleteProjectsByClient returns the number of rows removed.
	DeleteProjectsByClient(ctx context.Context, clientID string) (int64, error)
}

type Consultants interface {
	// ListConsultants returns all consultants ordered by creation (oldest first).
	ListConsultants(ctx context.Context) ([]domain.Consultant, error)

	GetConsultantByID(ctx context.Context, id string) (domain.Consultant, error)

	CreateConsultant(ctx context.Context, c domain.Consultant) error

	// UpdateConsultantProject sets or clears project_id and bumps updated_at.
	UpdateConsultantProject(ctx context.Context, id string, projectID *string, at time.Time) error

	// UnassignConsultantsByProject clears project_id for everyone on the
	// project and returns the number of rows touched.
	UnassignConsultantsByProject(ctx context.Context, projectID string, at time.Time) (int64, error)

	// UnassignConsultantsByClient clears project_id for everyone on any of
	// the client's projects.
	UnassignConsultantsByClient(ctx context.Context, clientID string, at time.Time) (int64, error)

	DeleteConsultant(ctx context.Context, id string) error
}
