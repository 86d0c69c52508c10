package kanban

import (
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
)

// Operation is what a façade call did to an entity.
type Operation string

const (
	OpCreated Operation = "created"
	OpUpdated Operation = "updated"
	OpDeleted Operation = "deleted"
)

type clientRec struct {
	id        string
	name      string
	createdAt time.Time
	updatedAt time.Time
}

type projectRec struct {
	id        string
	title     string
	clientID  string
	createdAt time.Time
	updatedAt time.Time
}

type consultantRec struct {
	id        string
	name      string
	role      string
	placement Placement
	createdAt time.Time
	updatedAt time.Time
}

// change is the single internal form of a mutation, whatever its source.
type change struct {
	entity     boardevents.Entity
	deleteID   string
	client     *boardsdk.Client
	project    *boardsdk.Project
	consultant *boardsdk.Consultant
}

// Cache is the session's authoritative copy of the board. All methods are
// safe for concurrent use; every merge is applied atomically.
type Cache struct {
	mu sync.RWMutex

	clients     map[string]*clientRec
	projects    map[string]*projectRec
	consultants map[string]*consultantRec

	// Tombstones. Ids are never reused, so a deleted id stays dead until
	// the next ReplaceAll.
	deadClients     map[string]struct{}
	deadProjects    map[string]struct{}
	deadConsultants map[string]struct{}

	// Session-local view flags, absent means the default (expanded).
	minimizedClients  map[string]bool
	minimizedProjects map[string]bool

	version uint64
	changed *notifier
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{changed: newNotifier()}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.clients = make(map[string]*clientRec)
	c.projects = make(map[string]*projectRec)
	c.consultants = make(map[string]*consultantRec)
	c.deadClients = make(map[string]struct{})
	c.deadProjects = make(map[string]struct{})
	c.deadConsultants = make(map[string]struct{})
	c.minimizedClients = make(map[string]bool)
	c.minimizedProjects = make(map[string]bool)
}

// Changes fires (coalesced) after every mutation of the cache.
func (c *Cache) Changes() <-chan struct{} { return c.changed.C() }

// Version increases on every applied mutation.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// ReplaceAll discards everything and loads a fresh read of the store.
// Placements are recomputed, references to unknown projects dropped, view
// flags reset and tombstones cleared.
func (c *Cache) ReplaceAll(clients []boardsdk.Client, projects []boardsdk.Project, consultants []boardsdk.Consultant) {
	c.mu.Lock()
	c.reset()
	for _, cl := range clients {
		c.mergeClient(cl)
	}
	for _, p := range projects {
		c.mergeProject(p)
	}
	for _, x := range consultants {
		c.mergeConsultant(x)
	}
	c.version++
	c.mu.Unlock()

	c.changed.fire()
}

// ApplyLocalResult merges the direct result of a façade mutation. payload
// is the returned entity (value or pointer) for creates and updates, and
// the id (string or boardsdk.DeletedID) for deletes.
func (c *Cache) ApplyLocalResult(entity boardevents.Entity, op Operation, payload any) error {
	ch, err := localChange(entity, op, payload)
	if err != nil {
		return err
	}
	c.apply(ch)
	return nil
}

// ApplyRemoteEvent merges a push notification.
func (c *Cache) ApplyRemoteEvent(ev boardevents.Event) error {
	ch, err := remoteChange(ev)
	if err != nil {
		return err
	}
	c.apply(ch)
	return nil
}

func localChange(entity boardevents.Entity, op Operation, payload any) (change, error) {
	ch := change{entity: entity}

	if op == OpDeleted {
		switch v := payload.(type) {
		case string:
			ch.deleteID = v
		case boardsdk.DeletedID:
			ch.deleteID = v.ID
		default:
			return change{}, fmt.Errorf("%w: %T for %s delete", ErrUnknownPayload, payload, entity)
		}
		if ch.deleteID == "" {
			return change{}, fmt.Errorf("%w: empty id for %s delete", ErrUnknownPayload, entity)
		}
		return ch, nil
	}

	switch v := payload.(type) {
	case boardsdk.Client:
		ch.client = &v
	case *boardsdk.Client:
		ch.client = v
	case boardsdk.Project:
		ch.project = &v
	case *boardsdk.Project:
		ch.project = v
	case boardsdk.Consultant:
		ch.consultant = &v
	case *boardsdk.Consultant:
		ch.consultant = v
	}

	ok := (entity == boardevents.EntityClient && ch.client != nil) ||
		(entity == boardevents.EntityProject && ch.project != nil) ||
		(entity == boardevents.EntityConsultant && ch.consultant != nil)
	if !ok {
		return change{}, fmt.Errorf("%w: %T for %s %s", ErrUnknownPayload, payload, entity, op)
	}
	return ch, nil
}

func remoteChange(ev boardevents.Event) (change, error) {
	ch := change{entity: ev.Kind.Entity()}

	if ev.Kind.IsDelete() {
		id, err := ev.DeletedID()
		if err != nil {
			return change{}, err
		}
		ch.deleteID = id
		return ch, nil
	}

	switch ch.entity {
	case boardevents.EntityClient:
		v, err := ev.Client()
		if err != nil {
			return change{}, err
		}
		ch.client = &v
	case boardevents.EntityProject:
		v, err := ev.Project()
		if err != nil {
			return change{}, err
		}
		ch.project = &v
	case boardevents.EntityConsultant:
		v, err := ev.Consultant()
		if err != nil {
			return change{}, err
		}
		ch.consultant = &v
	default:
		return change{}, fmt.Errorf("%w: %q", boardevents.ErrUnknownKind, ev.Kind)
	}
	return ch, nil
}

func (c *Cache) apply(ch change) {
	c.mu.Lock()
	switch {
	case ch.deleteID != "":
		switch ch.entity {
		case boardevents.EntityClient:
			c.deleteClient(ch.deleteID)
		case boardevents.EntityProject:
			c.deleteProject(ch.deleteID)
		case boardevents.EntityConsultant:
			c.deleteConsultant(ch.deleteID)
		}
	case ch.client != nil:
		c.mergeClient(*ch.client)
	case ch.project != nil:
		c.mergeProject(*ch.project)
	case ch.consultant != nil:
		c.mergeConsultant(*ch.consultant)
	}
	c.version++
	c.mu.Unlock()

	c.changed.fire()
}

// The merge* functions take a payload with its embedded relations and merge
// parents first. Callers hold c.mu.

func (c *Cache) mergeClient(in boardsdk.Client) {
	if !c.upsertClient(in) {
		return
	}
	for _, p := range in.Projects {
		if p.ClientID == "" {
			p.ClientID = in.ID
		}
		c.mergeProject(p)
	}
}

func (c *Cache) mergeProject(in boardsdk.Project) {
	if in.Client != nil {
		c.upsertClient(*in.Client)
	}
	if !c.upsertProject(in) {
		return
	}
	for _, x := range in.Consultants {
		if x.ProjectID == nil {
			id := in.ID
			x.ProjectID = &id
		}
		c.mergeConsultant(x)
	}
}

func (c *Cache) mergeConsultant(in boardsdk.Consultant) {
	if in.Project != nil {
		p := *in.Project
		p.Consultants = nil
		c.mergeProject(p)
	}
	c.upsertConsultant(in)
}

// upsertClient reports whether the client is present after the merge.
func (c *Cache) upsertClient(in boardsdk.Client) bool {
	if in.ID == "" {
		return false
	}
	if _, dead := c.deadClients[in.ID]; dead {
		return false
	}

	rec, ok := c.clients[in.ID]
	if ok && in.UpdatedAt.Before(rec.updatedAt) {
		return true
	}
	if !ok {
		rec = &clientRec{id: in.ID}
		c.clients[in.ID] = rec
	}

	rec.name = in.Name
	rec.updatedAt = in.UpdatedAt
	if rec.createdAt.IsZero() {
		rec.createdAt = in.CreatedAt
	}
	return true
}

// upsertProject reports whether the project is present after the merge.
// Projects are only kept while their client is.
func (c *Cache) upsertProject(in boardsdk.Project) bool {
	if in.ID == "" {
		return false
	}
	if _, dead := c.deadProjects[in.ID]; dead {
		return false
	}
	if _, ok := c.clients[in.ClientID]; !ok {
		return false
	}

	rec, ok := c.projects[in.ID]
	if ok && in.UpdatedAt.Before(rec.updatedAt) {
		return true
	}
	if !ok {
		rec = &projectRec{id: in.ID}
		c.projects[in.ID] = rec
	}

	rec.title = in.Title
	rec.clientID = in.ClientID
	rec.updatedAt = in.UpdatedAt
	if rec.createdAt.IsZero() {
		rec.createdAt = in.CreatedAt
	}
	return true
}

func (c *Cache) upsertConsultant(in boardsdk.Consultant) {
	if in.ID == "" {
		return
	}
	if _, dead := c.deadConsultants[in.ID]; dead {
		return
	}

	rec, ok := c.consultants[in.ID]
	if ok && in.UpdatedAt.Before(rec.updatedAt) {
		return
	}
	if !ok {
		rec = &consultantRec{id: in.ID}
		c.consultants[in.ID] = rec
	}

	rec.name = in.Name
	rec.role = ""
	if in.Role != nil {
		rec.role = *in.Role
	}
	rec.placement = Unassigned
	if pid, ok := PlacementOf(in.ProjectID).ProjectID(); ok {
		if _, known := c.projects[pid]; known {
			rec.placement = Assigned(pid)
		}
	}
	rec.updatedAt = in.UpdatedAt
	if rec.createdAt.IsZero() {
		rec.createdAt = in.CreatedAt
	}
}

func (c *Cache) deleteClient(id string) {
	delete(c.clients, id)
	delete(c.minimizedClients, id)
	c.deadClients[id] = struct{}{}

	for pid, p := range c.projects {
		if p.clientID == id {
			c.deleteProject(pid)
		}
	}
}

func (c *Cache) deleteProject(id string) {
	delete(c.projects, id)
	delete(c.minimizedProjects, id)
	c.deadProjects[id] = struct{}{}

	for _, x := range c.consultants {
		if pid, ok := x.placement.ProjectID(); ok && pid == id {
			x.placement = Unassigned
		}
	}
}

func (c *Cache) deleteConsultant(id string) {
	delete(c.consultants, id)
	c.deadConsultants[id] = struct{}{}
}

// ToggleClientExpanded flips a client between expanded and minimized and
// puts all of its projects in the matching collapsed state. It reports
// whether the client exists.
func (c *Cache) ToggleClientExpanded(id string) bool {
	c.mu.Lock()
	if _, ok := c.clients[id]; !ok {
		c.mu.Unlock()
		return false
	}
	minimized := !c.minimizedClients[id]
	c.minimizedClients[id] = minimized
	for pid, p := range c.projects {
		if p.clientID == id {
			c.minimizedProjects[pid] = minimized
		}
	}
	c.version++
	c.mu.Unlock()

	c.changed.fire()
	return true
}

// ToggleProjectCollapsed flips one project. It reports whether the project
// exists.
func (c *Cache) ToggleProjectCollapsed(id string) bool {
	c.mu.Lock()
	if _, ok := c.projects[id]; !ok {
		c.mu.Unlock()
		return false
	}
	c.minimizedProjects[id] = !c.minimizedProjects[id]
	c.version++
	c.mu.Unlock()

	c.changed.fire()
	return true
}

// Consultant looks up one consultant with its derived label.
func (c *Cache) Consultant(id string) (ConsultantView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.consultants[id]
	if !ok {
		return ConsultantView{}, false
	}
	return c.consultantView(rec), true
}

// Project looks up one project with its consultants.
func (c *Cache) Project(id string) (ProjectView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.projects[id]
	if !ok {
		return ProjectView{}, false
	}
	byProject := c.consultantsByProject()
	return c.projectView(rec, byProject[id]), true
}

// Snapshot returns an ordered copy of the board.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byProject := c.consultantsByProject()

	projectsByClient := make(map[string][]ProjectView, len(c.clients))
	for _, p := range c.projects {
		projectsByClient[p.clientID] = append(projectsByClient[p.clientID], c.projectView(p, byProject[p.id]))
	}

	snap := Snapshot{
		Clients:   make([]ClientView, 0, len(c.clients)),
		Available: byProject[""],
	}
	for _, cl := range c.clients {
		projects := projectsByClient[cl.id]
		byCreation(projects, func(p ProjectView) (time.Time, string) { return p.CreatedAt, p.ID })
		snap.Clients = append(snap.Clients, ClientView{
			ID:        cl.id,
			Name:      cl.name,
			Expanded:  !c.minimizedClients[cl.id],
			CreatedAt: cl.createdAt,
			UpdatedAt: cl.updatedAt,
			Projects:  projects,
		})
	}
	byCreation(snap.Clients, func(cl ClientView) (time.Time, string) { return cl.CreatedAt, cl.ID })
	byCreation(snap.Available, func(x ConsultantView) (time.Time, string) { return x.CreatedAt, x.ID })

	return snap
}

// consultantsByProject groups consultant views by project id; the available
// bucket is keyed by "".
func (c *Cache) consultantsByProject() map[string][]ConsultantView {
	out := make(map[string][]ConsultantView)
	for _, x := range c.consultants {
		pid, _ := x.placement.ProjectID()
		out[pid] = append(out[pid], c.consultantView(x))
	}
	return out
}

func (c *Cache) projectView(p *projectRec, consultants []ConsultantView) ProjectView {
	byCreation(consultants, func(x ConsultantView) (time.Time, string) { return x.CreatedAt, x.ID })

	var clientName string
	if cl, ok := c.clients[p.clientID]; ok {
		clientName = cl.name
	}
	return ProjectView{
		ID:          p.id,
		Title:       p.title,
		ClientID:    p.clientID,
		ClientName:  clientName,
		Collapsed:   c.minimizedProjects[p.id],
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
		Consultants: consultants,
	}
}

func (c *Cache) consultantView(x *consultantRec) ConsultantView {
	return ConsultantView{
		ID:        x.id,
		Name:      x.name,
		Role:      x.role,
		Placement: x.placement,
		Label:     ProjectLabel(x.placement, c.projectTitle),
		CreatedAt: x.createdAt,
		UpdatedAt: x.updatedAt,
	}
}

func (c *Cache) projectTitle(id string) (string, bool) {
	p, ok := c.projects[id]
	if !ok {
		return "", false
	}
	return p.title, true
}

// notifier is a coalescing change signal: at most one pending wake-up.
type notifier struct {
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{}, 1)}
}

func (n *notifier) C() <-chan struct{} { return n.ch }

func (n *notifier) fire() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}
