package kanban

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
)

var errBoom = &boardsdk.APIError{StatusCode: http.StatusInternalServerError, Code: boardsdk.ErrorCodeServerError}

// fakeGateway is an in-memory board store shaped like the real server:
// payloads embed their parents, deletes cascade, and every mutation is
// published when a bus is attached.
type fakeGateway struct {
	mu   sync.Mutex
	now  time.Time
	seq  int
	bus  boardevents.Publisher
	fail map[string]error

	clients     map[string]boardsdk.Client
	projects    map[string]boardsdk.Project
	consultants map[string]boardsdk.Consultant

	calls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		now:         time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		fail:        make(map[string]error),
		clients:     make(map[string]boardsdk.Client),
		projects:    make(map[string]boardsdk.Project),
		consultants: make(map[string]boardsdk.Consultant),
		calls:       make(map[string]int),
	}
}

func (g *fakeGateway) failNext(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[op] = err
}

func (g *fakeGateway) callCount(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

// enter records the call and returns an injected failure. Callers hold g.mu.
func (g *fakeGateway) enter(op string) error {
	g.calls[op]++
	if err, ok := g.fail[op]; ok {
		delete(g.fail, op)
		return err
	}
	return nil
}

func (g *fakeGateway) tick() time.Time {
	g.now = g.now.Add(time.Second)
	return g.now
}

func (g *fakeGateway) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s%02d", prefix, g.seq)
}

func (g *fakeGateway) publish(kind boardevents.Kind, payload any) {
	if g.bus != nil {
		_ = g.bus.Publish(context.Background(), kind, payload)
	}
}

func notFound(what string) error {
	return &boardsdk.APIError{StatusCode: http.StatusNotFound, Code: boardsdk.ErrorCodeNotFound, Description: what + " not found"}
}

// seed helpers bypass call accounting.

func (g *fakeGateway) seedClient(name string) boardsdk.Client {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.tick()
	c := boardsdk.Client{ID: g.nextID("c"), Name: name, CreatedAt: t, UpdatedAt: t}
	g.clients[c.ID] = c
	return c
}

func (g *fakeGateway) seedProject(title, clientID string) boardsdk.Project {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.tick()
	p := boardsdk.Project{ID: g.nextID("p"), Title: title, ClientID: clientID, CreatedAt: t, UpdatedAt: t}
	g.projects[p.ID] = p
	return g.projectPayload(p)
}

func (g *fakeGateway) seedConsultant(name string, projectID *string) boardsdk.Consultant {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.tick()
	x := boardsdk.Consultant{ID: g.nextID("x"), Name: name, ProjectID: projectID, CreatedAt: t, UpdatedAt: t}
	g.consultants[x.ID] = x
	return g.consultantPayload(x)
}

func (g *fakeGateway) projectPayload(p boardsdk.Project) boardsdk.Project {
	if c, ok := g.clients[p.ClientID]; ok {
		p.Client = &c
	}
	return p
}

func (g *fakeGateway) consultantPayload(x boardsdk.Consultant) boardsdk.Consultant {
	if x.ProjectID != nil {
		if p, ok := g.projects[*x.ProjectID]; ok {
			p = g.projectPayload(p)
			x.Project = &p
		}
	}
	return x
}

func (g *fakeGateway) ListClients(context.Context) ([]boardsdk.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("ListClients"); err != nil {
		return nil, err
	}
	out := make([]boardsdk.Client, 0, len(g.clients))
	for _, c := range g.clients {
		for _, p := range g.projects {
			if p.ClientID == c.ID {
				c.Projects = append(c.Projects, p)
			}
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b boardsdk.Client) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (g *fakeGateway) CreateClient(_ context.Context, name string) (*boardsdk.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("CreateClient"); err != nil {
		return nil, err
	}
	t := g.tick()
	c := boardsdk.Client{ID: g.nextID("c"), Name: name, CreatedAt: t, UpdatedAt: t}
	g.clients[c.ID] = c
	g.publish(boardevents.ClientAdded, c)
	return &c, nil
}

func (g *fakeGateway) DeleteClient(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("DeleteClient"); err != nil {
		return err
	}
	if _, ok := g.clients[id]; !ok {
		return notFound("client")
	}
	t := g.tick()
	for pid, p := range g.projects {
		if p.ClientID != id {
			continue
		}
		g.unassign(pid, t)
		delete(g.projects, pid)
	}
	delete(g.clients, id)
	g.publish(boardevents.ClientDeleted, boardsdk.DeletedID{ID: id})
	return nil
}

func (g *fakeGateway) unassign(projectID string, t time.Time) {
	for xid, x := range g.consultants {
		if x.ProjectID != nil && *x.ProjectID == projectID {
			x.ProjectID = nil
			x.UpdatedAt = t
			g.consultants[xid] = x
		}
	}
}

func (g *fakeGateway) ListProjects(context.Context) ([]boardsdk.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("ListProjects"); err != nil {
		return nil, err
	}
	out := make([]boardsdk.Project, 0, len(g.projects))
	for _, p := range g.projects {
		p = g.projectPayload(p)
		for _, x := range g.consultants {
			if x.ProjectID != nil && *x.ProjectID == p.ID {
				p.Consultants = append(p.Consultants, x)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (g *fakeGateway) CreateProject(_ context.Context, title, clientID string) (*boardsdk.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("CreateProject"); err != nil {
		return nil, err
	}
	if _, ok := g.clients[clientID]; !ok {
		return nil, notFound("client")
	}
	t := g.tick()
	p := boardsdk.Project{ID: g.nextID("p"), Title: title, ClientID: clientID, CreatedAt: t, UpdatedAt: t}
	g.projects[p.ID] = p
	out := g.projectPayload(p)
	g.publish(boardevents.ProjectAdded, out)
	return &out, nil
}

func (g *fakeGateway) RenameProject(_ context.Context, id, title string) (*boardsdk.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("RenameProject"); err != nil {
		return nil, err
	}
	p, ok := g.projects[id]
	if !ok {
		return nil, notFound("project")
	}
	p.Title = title
	p.UpdatedAt = g.tick()
	g.projects[id] = p
	out := g.projectPayload(p)
	g.publish(boardevents.ProjectRenamed, out)
	return &out, nil
}

func (g *fakeGateway) DeleteProject(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("DeleteProject"); err != nil {
		return err
	}
	if _, ok := g.projects[id]; !ok {
		return notFound("project")
	}
	g.unassign(id, g.tick())
	delete(g.projects, id)
	g.publish(boardevents.ProjectDeleted, boardsdk.DeletedID{ID: id})
	return nil
}

func (g *fakeGateway) ListConsultants(context.Context) ([]boardsdk.Consultant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("ListConsultants"); err != nil {
		return nil, err
	}
	out := make([]boardsdk.Consultant, 0, len(g.consultants))
	for _, x := range g.consultants {
		out = append(out, g.consultantPayload(x))
	}
	return out, nil
}

func (g *fakeGateway) CreateConsultant(_ context.Context, req boardsdk.CreateConsultantRequest) (*boardsdk.Consultant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("CreateConsultant"); err != nil {
		return nil, err
	}
	if req.ProjectID != nil {
		if _, ok := g.projects[*req.ProjectID]; !ok {
			return nil, notFound("project")
		}
	}
	t := g.tick()
	x := boardsdk.Consultant{ID: g.nextID("x"), Name: req.Name, Role: req.Role, ProjectID: req.ProjectID, CreatedAt: t, UpdatedAt: t}
	g.consultants[x.ID] = x
	out := g.consultantPayload(x)
	g.publish(boardevents.ConsultantAdded, out)
	return &out, nil
}

func (g *fakeGateway) ReassignConsultant(_ context.Context, id string, projectID *string) (*boardsdk.Consultant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("ReassignConsultant"); err != nil {
		return nil, err
	}
	x, ok := g.consultants[id]
	if !ok {
		return nil, notFound("consultant")
	}
	if projectID != nil {
		if _, ok := g.projects[*projectID]; !ok {
			return nil, notFound("project")
		}
	}
	x.ProjectID = projectID
	x.UpdatedAt = g.tick()
	g.consultants[id] = x
	out := g.consultantPayload(x)
	g.publish(boardevents.ConsultantMoved, out)
	return &out, nil
}

func (g *fakeGateway) DeleteConsultant(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("DeleteConsultant"); err != nil {
		return err
	}
	if _, ok := g.consultants[id]; !ok {
		return notFound("consultant")
	}
	delete(g.consultants, id)
	g.publish(boardevents.ConsultantDeleted, boardsdk.DeletedID{ID: id})
	return nil
}

// load reads the whole fake store through the gateway, as a reload would.
func (g *fakeGateway) load(c *Cache) {
	ctx := context.Background()
	clients, _ := g.ListClients(ctx)
	projects, _ := g.ListProjects(ctx)
	consultants, _ := g.ListConsultants(ctx)
	c.ReplaceAll(clients, projects, consultants)
}

func ptr(s string) *string { return &s }
