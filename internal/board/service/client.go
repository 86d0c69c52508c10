package service

import (
	"context"

	"github.com/aussiebroadwan/consultboard/internal/board/domain"
	"github.com/aussiebroadwan/consultboard/internal/board/store"
	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/aussiebroadwan/consultboard/pkg/idx"
	"github.com/aussiebroadwan/consultboard/pkg/slogx"
)

type ClientService struct {
	Deps
}

// ListClients returns every client with its projects nested.
func (s *ClientService) ListClients(ctx context.Context) ([]boardsdk.Client, error) {
	clients, err := s.Store.Clients().ListClients(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.Store.Projects().ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	byClient := make(map[string][]boardsdk.Project, len(clients))
	for _, p := range projects {
		byClient[p.ClientID] = append(byClient[p.ClientID], sdkProject(p, nil))
	}

	out := make([]boardsdk.Client, len(clients))
	for i, c := range clients {
		out[i] = sdkClient(c)
		out[i].Projects = byClient[c.ID]
	}
	return out, nil
}

// CreateClient creates a client and announces client-added.
func (s *ClientService) CreateClient(ctx context.Context, name string) (boardsdk.Client, error) {
	l := slogx.FromContext(ctx)

	name, err := requireName("name", name)
	if err != nil {
		return boardsdk.Client{}, err
	}

	now := s.now()
	c := domain.Client{
		ID:        idx.NewAt(now).String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
		l.Error("failed to create client", "error", err)
		return boardsdk.Client{}, err
	}

	out := sdkClient(c)
	s.committed(ctx, boardevents.EntityClient, "create", boardevents.ClientAdded, out)

	l.Info("client created", "client_id", c.ID)
	return out, nil
}

// DeleteClient removes a client and its projects in one transaction. Their
// consultants become available. Only client-deleted is announced; viewers
// cascade locally.
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)
	if err := knownID("client", id); err != nil {
		return err
	}
	now := s.now()

	var projects, unassigned int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Clients().GetClientByID(ctx, id); err != nil {
			return lookup(err, "client", id)
		}

		var err error
		if unassigned, err = tx.Consultants().UnassignConsultantsByClient(ctx, id, now); err != nil {
			return err
		}
		if projects, err = tx.Projects().DeleteProjectsByClient(ctx, id); err != nil {
			return err
		}
		return tx.Clients().DeleteClient(ctx, id)
	})
	if err != nil {
		return err
	}

	s.committed(ctx, boardevents.EntityClient, "delete", boardevents.ClientDeleted, boardsdk.DeletedID{ID: id})

	l.Info("client deleted", "client_id", id, "projects_removed", projects, "consultants_unassigned", unassigned)
	return nil
}
