package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/consultboard/internal/board/domain"
	"github.com/aussiebroadwan/consultboard/internal/board/service"
	"github.com/aussiebroadwan/consultboard/internal/board/store/drivers/sqlite"
	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/aussiebroadwan/consultboard/pkg/idx"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	kind    boardevents.Kind
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, kind boardevents.Kind, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{kind, payload})
	return p.err
}

func (p *recordingPublisher) Ping(context.Context) error { return nil }

func (p *recordingPublisher) kinds() []boardevents.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]boardevents.Kind, len(p.events))
	for i, e := range p.events {
		out[i] = e.kind
	}
	return out
}

func (p *recordingPublisher) last() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type services struct {
	clients     *service.ClientService
	projects    *service.ProjectService
	consultants *service.ConsultantService
	events      *recordingPublisher
	reg         *prometheus.Registry
}

var now = time.Date(2024, 5, 2, 9, 30, 0, 123456789, time.UTC)

func newServices(t *testing.T) *services {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	reg := prometheus.NewRegistry()
	events := &recordingPublisher{}
	deps := service.Deps{
		Store:   s,
		Events:  events,
		Metrics: service.NewMetrics(reg),
		Now:     func() time.Time { return now },
	}

	return &services{
		clients:     &service.ClientService{Deps: deps},
		projects:    &service.ProjectService{Deps: deps},
		consultants: &service.ConsultantService{Deps: deps},
		events:      events,
		reg:         reg,
	}
}

func ptr(s string) *string { return &s }

func TestCreateClient(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	c, err := svc.clients.CreateClient(ctx, "  Acme  ")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, now.Truncate(time.Microsecond), c.CreatedAt)

	ev := svc.events.last()
	assert.Equal(t, boardevents.ClientAdded, ev.kind)
	assert.Equal(t, c, ev.payload)

	_, err = svc.clients.CreateClient(ctx, "   ")
	require.ErrorIs(t, err, service.ErrValidation)
	assert.Len(t, svc.events.kinds(), 1)
}

func TestCreateProject(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	c, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)

	p, err := svc.projects.CreateProject(ctx, "Migration", c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, p.ClientID)
	require.NotNil(t, p.Client)
	assert.Equal(t, "Acme", p.Client.Name)
	assert.Equal(t, boardevents.ProjectAdded, svc.events.last().kind)

	t.Run("reserved title", func(t *testing.T) {
		for _, title := range []string{domain.AvailableTitle, "disponível", " DISPONÍVEL "} {
			_, err := svc.projects.CreateProject(ctx, title, c.ID)
			assert.ErrorIs(t, err, service.ErrValidation, title)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.projects.CreateProject(ctx, "", c.ID)
		assert.ErrorIs(t, err, service.ErrValidation)
		_, err = svc.projects.CreateProject(ctx, "Audit", " ")
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := svc.projects.CreateProject(ctx, "Audit", "nope")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	assert.Equal(t, []boardevents.Kind{boardevents.ClientAdded, boardevents.ProjectAdded}, svc.events.kinds())
}

func TestRenameProject(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	c, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	p, err := svc.projects.CreateProject(ctx, "Migration", c.ID)
	require.NoError(t, err)

	renamed, err := svc.projects.RenameProject(ctx, p.ID, "Cloud Migration")
	require.NoError(t, err)
	assert.Equal(t, "Cloud Migration", renamed.Title)
	require.NotNil(t, renamed.Client)
	assert.Equal(t, c.ID, renamed.Client.ID)
	assert.Equal(t, boardevents.ProjectRenamed, svc.events.last().kind)

	_, err = svc.projects.RenameProject(ctx, p.ID, domain.AvailableTitle)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.projects.RenameProject(ctx, "nope", "Audit")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateConsultant(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	c, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	p, err := svc.projects.CreateProject(ctx, "Migration", c.ID)
	require.NoError(t, err)

	t.Run("available without role", func(t *testing.T) {
		x, err := svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Bob", Role: ptr("  ")})
		require.NoError(t, err)
		assert.Nil(t, x.Role)
		assert.Nil(t, x.ProjectID)
		assert.Nil(t, x.Project)
	})

	t.Run("assigned", func(t *testing.T) {
		x, err := svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{
			Name:      "Ana",
			Role:      ptr("architect"),
			ProjectID: &p.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, x.ProjectID)
		assert.Equal(t, p.ID, *x.ProjectID)
		require.NotNil(t, x.Project)
		require.NotNil(t, x.Project.Client)
		assert.Equal(t, "Acme", x.Project.Client.Name)
		assert.Equal(t, boardevents.ConsultantAdded, svc.events.last().kind)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Cid", ProjectID: ptr("nope")})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	all, err := svc.consultants.ListConsultants(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReassignConsultant(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	c, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	p, err := svc.projects.CreateProject(ctx, "Migration", c.ID)
	require.NoError(t, err)
	x, err := svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Ana"})
	require.NoError(t, err)

	moved, err := svc.consultants.ReassignConsultant(ctx, x.ID, &p.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ProjectID)
	assert.Equal(t, p.ID, *moved.ProjectID)
	require.NotNil(t, moved.Project)
	assert.Equal(t, "Migration", moved.Project.Title)

	ev := svc.events.last()
	assert.Equal(t, boardevents.ConsultantMoved, ev.kind)
	assert.Equal(t, moved, ev.payload)

	freed, err := svc.consultants.ReassignConsultant(ctx, x.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, freed.ProjectID)
	assert.Nil(t, freed.Project)

	_, err = svc.consultants.ReassignConsultant(ctx, x.ID, ptr("nope"))
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.consultants.ReassignConsultant(ctx, "nope", nil)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteProjectFreesConsultants(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	c, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	p, err := svc.projects.CreateProject(ctx, "Migration", c.ID)
	require.NoError(t, err)
	x, err := svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Ana", ProjectID: &p.ID})
	require.NoError(t, err)

	require.NoError(t, svc.projects.DeleteProject(ctx, p.ID))
	assert.Equal(t, boardevents.ProjectDeleted, svc.events.last().kind)
	assert.Equal(t, boardsdk.DeletedID{ID: p.ID}, svc.events.last().payload)

	all, err := svc.consultants.ListConsultants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, x.ID, all[0].ID)
	assert.Nil(t, all[0].ProjectID)

	assert.ErrorIs(t, svc.projects.DeleteProject(ctx, p.ID), service.ErrNotFound)
}

func TestDeleteClientCascades(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	acme, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	other, err := svc.clients.CreateClient(ctx, "Globex")
	require.NoError(t, err)
	p1, err := svc.projects.CreateProject(ctx, "Migration", acme.ID)
	require.NoError(t, err)
	p2, err := svc.projects.CreateProject(ctx, "Audit", acme.ID)
	require.NoError(t, err)
	keep, err := svc.projects.CreateProject(ctx, "Support", other.ID)
	require.NoError(t, err)

	_, err = svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Ana", ProjectID: &p1.ID})
	require.NoError(t, err)
	_, err = svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Bob", ProjectID: &p2.ID})
	require.NoError(t, err)
	_, err = svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Cid", ProjectID: &keep.ID})
	require.NoError(t, err)

	before := len(svc.events.kinds())
	require.NoError(t, svc.clients.DeleteClient(ctx, acme.ID))

	kinds := svc.events.kinds()
	assert.Equal(t, []boardevents.Kind{boardevents.ClientDeleted}, kinds[before:])

	clients, err := svc.clients.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, other.ID, clients[0].ID)
	require.Len(t, clients[0].Projects, 1)
	assert.Equal(t, keep.ID, clients[0].Projects[0].ID)

	projects, err := svc.projects.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Len(t, projects[0].Consultants, 1)
	assert.Equal(t, "Cid", projects[0].Consultants[0].Name)

	consultants, err := svc.consultants.ListConsultants(ctx)
	require.NoError(t, err)
	available := 0
	for _, x := range consultants {
		if x.ProjectID == nil {
			available++
		}
	}
	assert.Equal(t, 2, available)

	assert.ErrorIs(t, svc.clients.DeleteClient(ctx, acme.ID), service.ErrNotFound)
}

func TestDeleteConsultant(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	x, err := svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Ana"})
	require.NoError(t, err)

	require.NoError(t, svc.consultants.DeleteConsultant(ctx, x.ID))
	assert.Equal(t, boardsdk.DeletedID{ID: x.ID}, svc.events.last().payload)
	assert.ErrorIs(t, svc.consultants.DeleteConsultant(ctx, x.ID), service.ErrNotFound)
}

func TestListJoins(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	c, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	p, err := svc.projects.CreateProject(ctx, "Migration", c.ID)
	require.NoError(t, err)
	_, err = svc.consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Ana", ProjectID: &p.ID})
	require.NoError(t, err)

	projects, err := svc.projects.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.NotNil(t, projects[0].Client)
	assert.Equal(t, "Acme", projects[0].Client.Name)
	require.Len(t, projects[0].Consultants, 1)

	consultants, err := svc.consultants.ListConsultants(ctx)
	require.NoError(t, err)
	require.Len(t, consultants, 1)
	require.NotNil(t, consultants[0].Project)
	require.NotNil(t, consultants[0].Project.Client)
	assert.Equal(t, c.ID, consultants[0].Project.Client.ID)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	svc.events.err = errors.New("redis down")

	c, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)

	clients, err := svc.clients.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, c.ID, clients[0].ID)

	assert.Equal(t, 1.0, counterValue(t, svc.reg, "board_events_published_total", map[string]string{
		"kind":   string(boardevents.ClientAdded),
		"result": "error",
	}))
}

func TestMetricsCountMutations(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()

	c, err := svc.clients.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	_, err = svc.projects.CreateProject(ctx, "Migration", c.ID)
	require.NoError(t, err)
	_, err = svc.projects.CreateProject(ctx, domain.AvailableTitle, c.ID)
	require.Error(t, err)

	count, err := testutil.GatherAndCount(svc.reg, "board_mutations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	series:
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if want, ok := labels[l.GetName()]; ok && want != l.GetValue() {
					continue series
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("no %s series matching %v", name, labels)
	return 0
}

func TestIDsAreStampedWithMutationTime(t *testing.T) {
	svc := newServices(t)

	c, err := svc.clients.CreateClient(t.Context(), "Acme")
	require.NoError(t, err)
	require.True(t, idx.Valid(c.ID))
	assert.WithinDuration(t, now, ulid.Time(ulid.MustParseStrict(c.ID).Time()), time.Millisecond)
}

func TestUnknownWellFormedIDs(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	missing := idx.New().String()

	assert.ErrorIs(t, svc.clients.DeleteClient(ctx, missing), service.ErrNotFound)
	_, err := svc.projects.CreateProject(ctx, "Audit", missing)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.projects.RenameProject(ctx, missing, "Audit")
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, svc.projects.DeleteProject(ctx, missing), service.ErrNotFound)
	_, err = svc.consultants.ReassignConsultant(ctx, missing, nil)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, svc.consultants.DeleteConsultant(ctx, missing), service.ErrNotFound)
}

// Malformed ids never reach the store: these services have none.
func TestMalformedIDsRejectedBeforeStore(t *testing.T) {
	deps := service.Deps{
		Events:  &recordingPublisher{},
		Metrics: service.NewMetrics(prometheus.NewRegistry()),
	}
	clients := &service.ClientService{Deps: deps}
	projects := &service.ProjectService{Deps: deps}
	consultants := &service.ConsultantService{Deps: deps}
	ctx := t.Context()

	tests := []struct {
		name string
		call func() error
	}{
		{"delete client", func() error { return clients.DeleteClient(ctx, "nope") }},
		{"create project", func() error { _, err := projects.CreateProject(ctx, "Audit", "nope"); return err }},
		{"rename project", func() error { _, err := projects.RenameProject(ctx, "nope", "Audit"); return err }},
		{"delete project", func() error { return projects.DeleteProject(ctx, "nope") }},
		{"move consultant", func() error { _, err := consultants.ReassignConsultant(ctx, "nope", nil); return err }},
		{"delete consultant", func() error { return consultants.DeleteConsultant(ctx, "nope") }},
		{"create on bad project", func() error {
			_, err := consultants.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Ana", ProjectID: ptr("nope")})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), service.ErrNotFound)
		})
	}
}
