package kanban

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/stretchr/testify/require"
)

func newLoadedActions(t *testing.T) (*fakeGateway, *Cache, *Actions) {
	t.Helper()
	g := newFakeGateway()
	c := NewCache()
	a := NewActions(g, c, nil)
	require.NoError(t, a.Reload(t.Context()))
	return g, c, a
}

// Property 7: invalid input never reaches the gateway.
func TestActionsValidateBeforeCalling(t *testing.T) {
	g := newFakeGateway()
	a := NewActions(g, NewCache(), nil)
	ctx := t.Context()

	tests := []struct {
		name string
		call func() error
	}{
		{"empty client name", func() error { _, err := a.AddClient(ctx, "  "); return err }},
		{"empty project title", func() error { _, err := a.AddProject(ctx, "", "c01"); return err }},
		{"reserved project title", func() error { _, err := a.AddProject(ctx, AvailableLabel, "c01"); return err }},
		{"reserved title any case", func() error { _, err := a.AddProject(ctx, " disponível ", "c01"); return err }},
		{"missing client id", func() error { _, err := a.AddProject(ctx, "Audit", ""); return err }},
		{"rename to empty", func() error { _, err := a.RenameProject(ctx, "p01", "\t"); return err }},
		{"rename to reserved", func() error { _, err := a.RenameProject(ctx, "p01", AvailableLabel); return err }},
		{"rename missing id", func() error { _, err := a.RenameProject(ctx, "", "Audit"); return err }},
		{"empty consultant name", func() error { _, err := a.AddConsultant(ctx, "", "dev", Unassigned); return err }},
		{"reassign missing id", func() error { _, err := a.ReassignConsultant(ctx, "", Unassigned); return err }},
		{"delete client missing id", func() error { return a.DeleteClient(ctx, "") }},
		{"delete project missing id", func() error { return a.DeleteProject(ctx, " ") }},
		{"delete consultant missing id", func() error { return a.DeleteConsultant(ctx, "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.True(t, IsValidation(err), "got %v", err)
			require.Zero(t, g.totalCalls())
			require.Empty(t, a.Status().Error, "validation failures are not status errors")
		})
	}
}

func TestActionsHappyPath(t *testing.T) {
	_, c, a := newLoadedActions(t)
	ctx := t.Context()

	cl, err := a.AddClient(ctx, "  Acme ")
	require.NoError(t, err)
	require.Equal(t, "Acme", cl.Name)

	p, err := a.AddProject(ctx, "Migration", cl.ID)
	require.NoError(t, err)

	x, err := a.AddConsultant(ctx, "Ana", " architect ", Assigned(p.ID))
	require.NoError(t, err)
	require.Equal(t, "architect", *x.Role)

	view, ok := c.Consultant(x.ID)
	require.True(t, ok)
	require.Equal(t, "Migration", view.Label)
	require.Equal(t, "architect", view.Role)

	_, err = a.RenameProject(ctx, p.ID, "Cloud Migration")
	require.NoError(t, err)
	view, _ = c.Consultant(x.ID)
	require.Equal(t, "Cloud Migration", view.Label)

	_, err = a.ReassignConsultant(ctx, x.ID, Unassigned)
	require.NoError(t, err)
	view, _ = c.Consultant(x.ID)
	require.Equal(t, AvailableLabel, view.Label)

	require.NoError(t, a.DeleteConsultant(ctx, x.ID))
	_, ok = c.Consultant(x.ID)
	require.False(t, ok)

	require.NoError(t, a.DeleteClient(ctx, cl.ID))
	require.Empty(t, c.Snapshot().Clients)
	require.Equal(t, Status{}, a.Status())
}

func TestActionsConsultantWithoutRole(t *testing.T) {
	_, _, a := newLoadedActions(t)

	x, err := a.AddConsultant(t.Context(), "Bob", "   ", Unassigned)
	require.NoError(t, err)
	require.Nil(t, x.Role)
	require.Nil(t, x.ProjectID)
}

func TestActionsDeleteProjectFreesConsultants(t *testing.T) {
	g, c, a := newLoadedActions(t)
	acme := g.seedClient("Acme")
	p := g.seedProject("Migration", acme.ID)
	x := g.seedConsultant("Ana", &p.ID)
	require.NoError(t, a.Reload(t.Context()))

	require.NoError(t, a.DeleteProject(t.Context(), p.ID))

	view, ok := c.Consultant(x.ID)
	require.True(t, ok)
	require.False(t, view.Placement.IsAssigned())
	require.Len(t, c.Snapshot().Available, 1)
}

func TestActionsFailureSetsStatusAndReloads(t *testing.T) {
	tests := []struct {
		name string
		op   string
		msg  string
		call func(ctx context.Context, a *Actions, f *fixtureIDs) error
	}{
		{"add client", "CreateClient", MsgAddClientFailed, func(ctx context.Context, a *Actions, f *fixtureIDs) error {
			_, err := a.AddClient(ctx, "NewCo")
			return err
		}},
		{"delete client", "DeleteClient", MsgDeleteClientFailed, func(ctx context.Context, a *Actions, f *fixtureIDs) error {
			return a.DeleteClient(ctx, f.client)
		}},
		{"add project", "CreateProject", MsgAddProjectFailed, func(ctx context.Context, a *Actions, f *fixtureIDs) error {
			_, err := a.AddProject(ctx, "Audit", f.client)
			return err
		}},
		{"rename project", "RenameProject", MsgRenameProjectFailed, func(ctx context.Context, a *Actions, f *fixtureIDs) error {
			_, err := a.RenameProject(ctx, f.project, "Renamed")
			return err
		}},
		{"delete project", "DeleteProject", MsgDeleteProjectFailed, func(ctx context.Context, a *Actions, f *fixtureIDs) error {
			return a.DeleteProject(ctx, f.project)
		}},
		{"add consultant", "CreateConsultant", MsgAddConsultantFailed, func(ctx context.Context, a *Actions, f *fixtureIDs) error {
			_, err := a.AddConsultant(ctx, "Bob", "", Unassigned)
			return err
		}},
		{"reassign consultant", "ReassignConsultant", MsgUpdateConsultantFailed, func(ctx context.Context, a *Actions, f *fixtureIDs) error {
			_, err := a.ReassignConsultant(ctx, f.consultant, Unassigned)
			return err
		}},
		{"delete consultant", "DeleteConsultant", MsgDeleteConsultantFailed, func(ctx context.Context, a *Actions, f *fixtureIDs) error {
			return a.DeleteConsultant(ctx, f.consultant)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, c, a, f := newFixtureActions(t)
			before := c.Snapshot()
			reloads := g.callCount("ListClients")

			g.failNext(tt.op, errBoom)
			err := tt.call(t.Context(), a, f)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			require.ErrorIs(t, err, errBoom)
			require.Equal(t, reloads+1, g.callCount("ListClients"))
			require.Equal(t, before, c.Snapshot())
			require.Equal(t, Status{Error: tt.msg}, a.Status())
		})
	}
}

func TestActionsNotFoundIsClassified(t *testing.T) {
	g, c, a, f := newFixtureActions(t)

	// Another viewer removed the project first; our cache still shows it.
	require.NoError(t, g.DeleteProject(t.Context(), f.project))
	_, ok := c.Project(f.project)
	require.True(t, ok)

	_, err := a.RenameProject(t.Context(), f.project, "Renamed")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, f.project, nf.ID)
	require.True(t, boardsdk.IsNotFound(err))

	_, ok = c.Project(f.project)
	require.False(t, ok, "recovery reload drops the stale project")
	require.Equal(t, MsgRenameProjectFailed, a.Status().Error)
}

func TestActionsReloadFailure(t *testing.T) {
	g, _, a, _ := newFixtureActions(t)

	g.failNext("ListProjects", errBoom)
	err := a.Reload(t.Context())

	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, Status{Error: MsgLoadFailed}, a.Status())

	// A successful reload clears the message.
	require.NoError(t, a.Reload(t.Context()))
	require.Equal(t, Status{}, a.Status())
}

func TestActionsRecoveryReloadFailureOverridesMessage(t *testing.T) {
	g, _, a, f := newFixtureActions(t)

	g.failNext("DeleteConsultant", errBoom)
	g.failNext("ListConsultants", errBoom)

	err := a.DeleteConsultant(t.Context(), f.consultant)
	require.Error(t, err)
	require.Equal(t, MsgLoadFailed, a.Status().Error)
}

func TestActionsSuccessClearsError(t *testing.T) {
	g, _, a, _ := newFixtureActions(t)

	g.failNext("CreateClient", errBoom)
	_, err := a.AddClient(t.Context(), "NewCo")
	require.Error(t, err)
	require.NotEmpty(t, a.Status().Error)

	_, err = a.AddClient(t.Context(), "NewCo")
	require.NoError(t, err)
	require.Empty(t, a.Status().Error)
}

type fixtureIDs struct {
	client     string
	project    string
	consultant string
}

func newFixtureActions(t *testing.T) (*fakeGateway, *Cache, *Actions, *fixtureIDs) {
	t.Helper()
	g := newFakeGateway()
	acme := g.seedClient("Acme")
	p := g.seedProject("Migration", acme.ID)
	x := g.seedConsultant("Ana", &p.ID)

	c := NewCache()
	a := NewActions(g, c, nil)
	require.NoError(t, a.Reload(t.Context()))
	return g, c, a, &fixtureIDs{client: acme.ID, project: p.ID, consultant: x.ID}
}
