package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/consultboard/internal/board/domain"
	"github.com/aussiebroadwan/consultboard/internal/board/store"
)

// Queries implements every board repository over a DBTX.
type Queries struct {
	db DBTX
	d  Dialect
}

func New(db DBTX, d Dialect) *Queries {
	return &Queries{db: db, d: d}
}

var (
	_ store.Clients     = (*Queries)(nil)
	_ store.Projects    = (*Queries)(nil)
	_ store.Consultants = (*Queries)(nil)
)

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.d.rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.d.rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.d.rebind(query), args...)
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// requireOne turns a zero-row UPDATE/DELETE into store.ErrNotFound.
func requireOne(res sql.Result, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func affected(res sql.Result, err error, what string) (int64, error) {
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows through scan.
func collect[T any](rows *sql.Rows, err error, what string, scan func(scanner) (T, error)) ([]T, error) {
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return out, nil
}

// Clients

const clientColumns = `id, name, created_at, updated_at`

func scanClient(s scanner) (domain.Client, error) {
	var c domain.Client
	err := s.Scan(&c.ID, &c.Name, timestamp{&c.CreatedAt}, timestamp{&c.UpdatedAt})
	return c, err
}

func (q *Queries) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := q.query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at, id`)
	return collect(rows, err, "listing clients", scanClient)
}

func (q *Queries) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(q.queryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (q *Queries) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := q.exec(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, q.d.timeArg(c.CreatedAt), q.d.timeArg(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (q *Queries) DeleteClient(ctx context.Context, id string) error {
	res, err := q.exec(ctx, `DELETE FROM clients WHERE id = ?`, id)
	return requireOne(res, err, "deleting client")
}

// Projects

const projectColumns = `id, title, client_id, created_at, updated_at`

func scanProject(s scanner) (domain.Project, error) {
	var p domain.Project
	err := s.Scan(&p.ID, &p.Title, &p.ClientID, timestamp{&p.CreatedAt}, timestamp{&p.UpdatedAt})
	return p, err
}

func (q *Queries) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := q.query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
	return collect(rows, err, "listing projects", scanProject)
}

func (q *Queries) ListProjectsByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	rows, err := q.query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE client_id = ? ORDER BY created_at, id`, clientID)
	return collect(rows, err, "listing client projects", scanProject)
}

func (q *Queries) GetProjectByID(ctx context.Context, id string) (domain.Project, error) {
	p, err := scanProject(q.queryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	return p, nil
}

func (q *Queries) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := q.exec(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.ClientID, q.d.timeArg(p.CreatedAt), q.d.timeArg(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (q *Queries) UpdateProjectTitle(ctx context.Context, id, title string, at time.Time) error {
	res, err := q.exec(ctx,
		`UPDATE projects SET title = ?, updated_at = ? WHERE id = ?`,
		title, q.d.timeArg(at), id,
	)
	return requireOne(res, err, "updating project title")
}

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	res, err := q.exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return requireOne(res, err, "deleting project")
}

func (q *Queries) DeleteProjectsByClient(ctx context.Context, clientID string) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM projects WHERE client_id = ?`, clientID)
	return affected(res, err, "deleting client projects")
}

// Consultants

const consultantColumns = `id, name, role, project_id, created_at, updated_at`

func scanConsultant(s scanner) (domain.Consultant, error) {
	var (
		c         domain.Consultant
		role      sql.NullString
		projectID sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &role, &projectID, timestamp{&c.CreatedAt}, timestamp{&c.UpdatedAt}); err != nil {
		return domain.Consultant{}, err
	}
	c.Role = stringPtr(role)
	c.ProjectID = stringPtr(projectID)
	return c, nil
}

func (q *Queries) ListConsultants(ctx context.Context) ([]domain.Consultant, error) {
	rows, err := q.query(ctx, `SELECT `+consultantColumns+` FROM consultants ORDER BY created_at, id`)
	return collect(rows, err, "listing consultants", scanConsultant)
}

func (q *Queries) GetConsultantByID(ctx context.Context, id string) (domain.Consultant, error) {
	c, err := scanConsultant(q.queryRow(ctx, `SELECT `+consultantColumns+` FROM consultants WHERE id = ?`, id))
	if err != nil {
		return domain.Consultant{}, mapNotFound(err)
	}
	return c, nil
}

func (q *Queries) CreateConsultant(ctx context.Context, c domain.Consultant) error {
	_, err := q.exec(ctx,
		`INSERT INTO consultants (`+consultantColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullString(c.Role), nullString(c.ProjectID),
		q.d.timeArg(c.CreatedAt), q.d.timeArg(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting consultant: %w", err)
	}
	return nil
}

func (q *Queries) UpdateConsultantProject(ctx context.Context, id string, projectID *string, at time.Time) error {
	res, err := q.exec(ctx,
		`UPDATE consultants SET project_id = ?, updated_at = ? WHERE id = ?`,
		nullString(projectID), q.d.timeArg(at), id,
	)
	return requireOne(res, err, "updating consultant project")
}

func (q *Queries) UnassignConsultantsByProject(ctx context.Context, projectID string, at time.Time) (int64, error) {
	res, err := q.exec(ctx,
		`UPDATE consultants SET project_id = NULL, updated_at = ? WHERE project_id = ?`,
		q.d.timeArg(at), projectID,
	)
	return affected(res, err, "unassigning project consultants")
}

func (q *Queries) UnassignConsultantsByClient(ctx context.Context, clientID string, at time.Time) (int64, error) {
	res, err := q.exec(ctx,
		`UPDATE consultants SET project_id = NULL, updated_at = ?
		WHERE project_id IN (SELECT id FROM projects WHERE client_id = ?)`,
		q.d.timeArg(at), clientID,
	)
	return affected(res, err, "unassigning client consultants")
}

func (q *Queries) DeleteConsultant(ctx context.Context, id string) error {
	res, err := q.exec(ctx, `DELETE FROM consultants WHERE id = ?`, id)
	return requireOne(res, err, "deleting consultant")
}
