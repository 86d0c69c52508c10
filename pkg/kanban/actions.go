package kanban

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"golang.org/x/sync/errgroup"
)

// Gateway is the request/response interface to the board store.
// *boardsdk.SDKClient implements it.
type Gateway interface {
	ListClients(ctx context.Context) ([]boardsdk.Client, error)
	CreateClient(ctx context.Context, name string) (*boardsdk.Client, error)
	DeleteClient(ctx context.Context, id string) error

	ListProjects(ctx context.Context) ([]boardsdk.Project, error)
	CreateProject(ctx context.Context, title, clientID string) (*boardsdk.Project, error)
	RenameProject(ctx context.Context, id, title string) (*boardsdk.Project, error)
	DeleteProject(ctx context.Context, id string) error

	ListConsultants(ctx context.Context) ([]boardsdk.Consultant, error)
	CreateConsultant(ctx context.Context, req boardsdk.CreateConsultantRequest) (*boardsdk.Consultant, error)
	ReassignConsultant(ctx context.Context, id string, projectID *string) (*boardsdk.Consultant, error)
	DeleteConsultant(ctx context.Context, id string) error
}

// User-facing status messages, in the board's language.
const (
	MsgLoadFailed             = "Falha ao carregar os dados. Por favor, tente novamente."
	MsgAddClientFailed        = "Falha ao adicionar o cliente. Por favor, tente novamente."
	MsgDeleteClientFailed     = "Falha ao excluir o cliente. Por favor, tente novamente."
	MsgAddProjectFailed       = "Falha ao adicionar o projeto. Por favor, tente novamente."
	MsgRenameProjectFailed    = "Falha ao atualizar o nome do projeto. Por favor, tente novamente."
	MsgDeleteProjectFailed    = "Falha ao excluir o projeto. Por favor, tente novamente."
	MsgAddConsultantFailed    = "Falha ao adicionar o consultor. Por favor, tente novamente."
	MsgUpdateConsultantFailed = "Falha ao atualizar o consultor. Por favor, tente novamente."
	MsgDeleteConsultantFailed = "Falha ao excluir o consultor. Por favor, tente novamente."
	MsgLiveUpdatesLost        = "Atualizações em tempo real interrompidas. Recarregue o quadro."
)

// Status is what the presentation layer shows above the board.
type Status struct {
	Loading bool
	Error   string
}

type statusBox struct {
	mu      sync.Mutex
	status  Status
	changed *notifier
}

func (s *statusBox) get() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *statusBox) update(fn func(*Status)) {
	s.mu.Lock()
	fn(&s.status)
	s.mu.Unlock()
	s.changed.fire()
}

// Actions is the façade the presentation layer calls. Each action validates
// locally, persists through the gateway, then merges the response into the
// cache. A failed call sets a status message and forces a full reload.
type Actions struct {
	gw     Gateway
	cache  *Cache
	status *statusBox
	log    *slog.Logger
}

// NewActions wires a façade over gw and cache. A nil logger means
// slog.Default().
func NewActions(gw Gateway, cache *Cache, log *slog.Logger) *Actions {
	if log == nil {
		log = slog.Default()
	}
	return &Actions{
		gw:     gw,
		cache:  cache,
		status: &statusBox{changed: cache.changed},
		log:    log,
	}
}

// Status returns the current loading flag and error message.
func (a *Actions) Status() Status { return a.status.get() }

// Reload replaces the cache with a fresh read of the store. The three lists
// are fetched concurrently.
func (a *Actions) Reload(ctx context.Context) error {
	a.status.update(func(s *Status) {
		s.Loading = true
		s.Error = ""
	})
	return a.reload(ctx)
}

// reload leaves an existing status message alone so the one set by a failed
// action survives the recovery read.
func (a *Actions) reload(ctx context.Context) error {
	a.status.update(func(s *Status) { s.Loading = true })
	defer a.status.update(func(s *Status) { s.Loading = false })

	var (
		clients     []boardsdk.Client
		projects    []boardsdk.Project
		consultants []boardsdk.Consultant
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = a.gw.ListClients(gctx)
		return err
	})
	g.Go(func() (err error) {
		projects, err = a.gw.ListProjects(gctx)
		return err
	})
	g.Go(func() (err error) {
		consultants, err = a.gw.ListConsultants(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		a.log.Warn("board reload failed", "err", err)
		a.status.update(func(s *Status) { s.Error = MsgLoadFailed })
		return &TransportError{Op: "reload", Err: err}
	}

	a.cache.ReplaceAll(clients, projects, consultants)
	return nil
}

// AddClient creates a client.
func (a *Actions) AddClient(ctx context.Context, name string) (*boardsdk.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	c, err := a.gw.CreateClient(ctx, name)
	if err != nil {
		return nil, a.fail(ctx, "add client", "", MsgAddClientFailed, err)
	}
	a.succeed(boardevents.EntityClient, OpCreated, c)
	return c, nil
}

// DeleteClient deletes a client; its projects go with it and their
// consultants become available.
func (a *Actions) DeleteClient(ctx context.Context, id string) error {
	if err := requireID("client id", id); err != nil {
		return err
	}

	if err := a.gw.DeleteClient(ctx, id); err != nil {
		return a.fail(ctx, "delete client", id, MsgDeleteClientFailed, err)
	}
	a.succeed(boardevents.EntityClient, OpDeleted, id)
	return nil
}

// AddProject creates a project under clientID.
func (a *Actions) AddProject(ctx context.Context, title, clientID string) (*boardsdk.Project, error) {
	title, err := validTitle(title)
	if err != nil {
		return nil, err
	}
	if err := requireID("client id", clientID); err != nil {
		return nil, err
	}

	p, err := a.gw.CreateProject(ctx, title, clientID)
	if err != nil {
		return nil, a.fail(ctx, "add project", clientID, MsgAddProjectFailed, err)
	}
	a.succeed(boardevents.EntityProject, OpCreated, p)
	return p, nil
}

// RenameProject changes a project's title. Uniqueness is not checked here.
func (a *Actions) RenameProject(ctx context.Context, id, title string) (*boardsdk.Project, error) {
	if err := requireID("project id", id); err != nil {
		return nil, err
	}
	title, err := validTitle(title)
	if err != nil {
		return nil, err
	}

	p, err := a.gw.RenameProject(ctx, id, title)
	if err != nil {
		return nil, a.fail(ctx, "rename project", id, MsgRenameProjectFailed, err)
	}
	a.succeed(boardevents.EntityProject, OpUpdated, p)
	return p, nil
}

// DeleteProject deletes a project; its consultants become available.
func (a *Actions) DeleteProject(ctx context.Context, id string) error {
	if err := requireID("project id", id); err != nil {
		return err
	}

	if err := a.gw.DeleteProject(ctx, id); err != nil {
		return a.fail(ctx, "delete project", id, MsgDeleteProjectFailed, err)
	}
	a.succeed(boardevents.EntityProject, OpDeleted, id)
	return nil
}

// AddConsultant creates a consultant. role may be empty.
func (a *Actions) AddConsultant(ctx context.Context, name, role string, at Placement) (*boardsdk.Consultant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	req := boardsdk.CreateConsultantRequest{Name: name, ProjectID: at.Ref()}
	if role = strings.TrimSpace(role); role != "" {
		req.Role = &role
	}

	x, err := a.gw.CreateConsultant(ctx, req)
	if err != nil {
		return nil, a.fail(ctx, "add consultant", at.String(), MsgAddConsultantFailed, err)
	}
	a.succeed(boardevents.EntityConsultant, OpCreated, x)
	return x, nil
}

// DeleteConsultant deletes a consultant.
func (a *Actions) DeleteConsultant(ctx context.Context, id string) error {
	if err := requireID("consultant id", id); err != nil {
		return err
	}

	if err := a.gw.DeleteConsultant(ctx, id); err != nil {
		return a.fail(ctx, "delete consultant", id, MsgDeleteConsultantFailed, err)
	}
	a.succeed(boardevents.EntityConsultant, OpDeleted, id)
	return nil
}

// ReassignConsultant moves a consultant to a project or to the available
// bucket.
func (a *Actions) ReassignConsultant(ctx context.Context, id string, to Placement) (*boardsdk.Consultant, error) {
	if err := requireID("consultant id", id); err != nil {
		return nil, err
	}

	x, err := a.gw.ReassignConsultant(ctx, id, to.Ref())
	if err != nil {
		return nil, a.fail(ctx, "reassign consultant", id, MsgUpdateConsultantFailed, err)
	}
	a.succeed(boardevents.EntityConsultant, OpUpdated, x)
	return x, nil
}

func (a *Actions) succeed(entity boardevents.Entity, op Operation, payload any) {
	if err := a.cache.ApplyLocalResult(entity, op, payload); err != nil {
		// Only reachable with a nil response from a misbehaving gateway.
		a.log.Error("dropping local result", "entity", entity, "op", op, "err", err)
	}
	a.status.update(func(s *Status) { s.Error = "" })
}

// fail classifies err, publishes msg and resynchronises from the store.
func (a *Actions) fail(ctx context.Context, op, id, msg string, err error) error {
	a.log.Warn("board action failed", "op", op, "id", id, "err", err)
	a.status.update(func(s *Status) { s.Error = msg })

	if rerr := a.reload(ctx); rerr != nil {
		a.log.Warn("recovery reload failed", "op", op, "err", rerr)
	}

	if boardsdk.IsNotFound(err) {
		return &NotFoundError{Op: op, ID: id, Err: err}
	}
	return &TransportError{Op: op, Err: err}
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.EqualFold(title, AvailableLabel) {
		return "", &ValidationError{Field: "title", Reason: "\"" + AvailableLabel + "\" is reserved"}
	}
	return title, nil
}
