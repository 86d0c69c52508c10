package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	boardhttp "github.com/aussiebroadwan/consultboard/internal/board/http"
	"github.com/aussiebroadwan/consultboard/internal/board/service"
	"github.com/aussiebroadwan/consultboard/internal/board/store/drivers/sqlite"
	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/aussiebroadwan/consultboard/pkg/jwtx"
	"github.com/aussiebroadwan/consultboard/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("k", jwtx.MinSecretLength))

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, boardevents.Kind, any) error {
	return errors.New("redis down")
}

func (failingPublisher) Ping(context.Context) error { return errors.New("redis down") }

type server struct {
	url string
	bus *boardevents.MemoryBus
}

func newServer(t *testing.T, verifier jwtx.Verifier, events boardevents.Publisher) *server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	bus, _ := events.(*boardevents.MemoryBus)

	reg := prometheus.NewRegistry()
	deps := service.Deps{Store: st, Events: events, Metrics: service.NewMetrics(reg)}

	r := boardhttp.NewRouter(verifier, "test", st, events, reg, slogx.Discard())
	r.ClientService = &service.ClientService{Deps: deps}
	r.ProjectService = &service.ProjectService{Deps: deps}
	r.ConsultantService = &service.ConsultantService{Deps: deps}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &server{url: srv.URL, bus: bus}
}

func TestBoardRoundTrip(t *testing.T) {
	s := newServer(t, nil, boardevents.NewMemoryBus())
	c := boardsdk.NewSDKClient(s.url)
	ctx := t.Context()

	sub, err := s.bus.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	acme, err := c.CreateClient(ctx, "Acme")
	require.NoError(t, err)

	project, err := c.CreateProject(ctx, "Migration", acme.ID)
	require.NoError(t, err)
	require.NotNil(t, project.Client)
	assert.Equal(t, "Acme", project.Client.Name)

	role := "architect"
	ana, err := c.CreateConsultant(ctx, boardsdk.CreateConsultantRequest{Name: "Ana", Role: &role})
	require.NoError(t, err)
	assert.Nil(t, ana.ProjectID)

	moved, err := c.ReassignConsultant(ctx, ana.ID, &project.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.Project)
	assert.Equal(t, project.ID, moved.Project.ID)

	renamed, err := c.RenameProject(ctx, project.ID, "Cloud Migration")
	require.NoError(t, err)
	assert.Equal(t, "Cloud Migration", renamed.Title)

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Len(t, projects[0].Consultants, 1)
	assert.Equal(t, ana.ID, projects[0].Consultants[0].ID)

	require.NoError(t, c.DeleteClient(ctx, acme.ID))

	clients, err := c.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)

	consultants, err := c.ListConsultants(ctx)
	require.NoError(t, err)
	require.Len(t, consultants, 1)
	assert.Nil(t, consultants[0].ProjectID)

	require.NoError(t, c.DeleteConsultant(ctx, ana.ID))

	want := []boardevents.Kind{
		boardevents.ClientAdded,
		boardevents.ProjectAdded,
		boardevents.ConsultantAdded,
		boardevents.ConsultantMoved,
		boardevents.ProjectRenamed,
		boardevents.ClientDeleted,
		boardevents.ConsultantDeleted,
	}
	for _, kind := range want {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, kind, ev.Kind)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t, nil, boardevents.NewMemoryBus())
	c := boardsdk.NewSDKClient(s.url)
	ctx := t.Context()

	acme, err := c.CreateClient(ctx, "Acme")
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code string
	}{
		{"blank client name", func() error { _, err := c.CreateClient(ctx, " "); return err }, boardsdk.ErrorCodeValidation},
		{"reserved title", func() error { _, err := c.CreateProject(ctx, "Disponível", acme.ID); return err }, boardsdk.ErrorCodeValidation},
		{"unknown client", func() error { _, err := c.CreateProject(ctx, "Audit", "nope"); return err }, boardsdk.ErrorCodeNotFound},
		{"delete unknown client", func() error { return c.DeleteClient(ctx, "nope") }, boardsdk.ErrorCodeNotFound},
		{"rename unknown project", func() error { _, err := c.RenameProject(ctx, "nope", "Audit"); return err }, boardsdk.ErrorCodeNotFound},
		{"move unknown consultant", func() error { _, err := c.ReassignConsultant(ctx, "nope", nil); return err }, boardsdk.ErrorCodeNotFound},
		{"delete unknown consultant", func() error { return c.DeleteConsultant(ctx, "nope") }, boardsdk.ErrorCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var apiErr *boardsdk.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	s := newServer(t, nil, boardevents.NewMemoryBus())

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"unknown field", `{"name":"Acme","extra":true}`},
		{"trailing data", `{"name":"Acme"}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(s.url+"/v1/clients", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestPublishFailureStillCommits(t *testing.T) {
	s := newServer(t, nil, failingPublisher{})
	c := boardsdk.NewSDKClient(s.url)
	ctx := t.Context()

	_, err := c.CreateClient(ctx, "Acme")
	require.NoError(t, err)

	clients, err := c.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "degraded", ready.Status)
	assert.Contains(t, ready.Checks["events"], "redis down")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t, nil, boardevents.NewMemoryBus())
	c := boardsdk.NewSDKClient(s.url)
	ctx := t.Context()

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", live.Status)
	assert.Equal(t, "test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", ready.Status)
	assert.Equal(t, "ok", ready.Checks["database"])

	_, err = c.CreateClient(ctx, "Acme")
	require.NoError(t, err)

	resp, err := http.Get(s.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `board_mutations_total{entity="client",op="create"} 1`)
	assert.Contains(t, string(body), `board_events_published_total{kind="client-added",result="ok"} 1`)
}

func TestBearerAuth(t *testing.T) {
	verifier, err := jwtx.NewVerifierHS256(testSecret, "consultboard", 0)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	s := newServer(t, verifier, boardevents.NewMemoryBus())
	ctx := t.Context()

	token := func(scopes ...string) string {
		tok, err := signer.Sign(jwtx.NewAccessClaims("op-1", "Operator", scopes, time.Hour, "consultboard", time.Now()))
		require.NoError(t, err)
		return tok
	}

	anon := boardsdk.NewSDKClient(s.url)
	_, err = anon.ListClients(ctx)
	assert.True(t, boardsdk.IsUnauthorized(err))

	reader := boardsdk.NewSDKClient(s.url)
	reader.Token = token(jwtx.ScopeBoardRead)
	_, err = reader.ListClients(ctx)
	require.NoError(t, err)
	_, err = reader.CreateClient(ctx, "Acme")
	var apiErr *boardsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	writer := boardsdk.NewSDKClient(s.url)
	writer.Token = token(jwtx.ScopeBoardWrite)
	_, err = writer.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	clients, err := writer.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	// Probes stay open without a token
	_, err = anon.GetLiveness(ctx)
	require.NoError(t, err)
}
