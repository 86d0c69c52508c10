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

type ProjectService struct {
	Deps
}

// ListProjects returns every project with its client and consultants.
func (s *ProjectService) ListProjects(ctx context.Context) ([]boardsdk.Project, error) {
	clients, err := s.Store.Clients().ListClients(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.Store.Projects().ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	consultants, err := s.Store.Consultants().ListConsultants(ctx)
	if err != nil {
		return nil, err
	}
	b := newBoard(clients, projects, consultants)

	byProject := make(map[string][]boardsdk.Consultant, len(projects))
	for _, x := range consultants {
		if x.ProjectID != nil {
			byProject[*x.ProjectID] = append(byProject[*x.ProjectID], sdkConsultant(x, nil, nil))
		}
	}

	out := make([]boardsdk.Project, len(projects))
	for i, p := range projects {
		out[i] = sdkProject(p, b.clientByID[p.ClientID])
		out[i].Consultants = byProject[p.ID]
	}
	return out, nil
}

// CreateProject creates a project under an existing client and announces
// project-added with the client embedded.
func (s *ProjectService) CreateProject(ctx context.Context, title, clientID string) (boardsdk.Project, error) {
	l := slogx.FromContext(ctx)

	title, err := validTitle(title)
	if err != nil {
		return boardsdk.Project{}, err
	}
	if clientID, err = requireName("client_id", clientID); err != nil {
		return boardsdk.Project{}, err
	}
	if err := knownID("client", clientID); err != nil {
		return boardsdk.Project{}, err
	}

	now := s.now()
	p := domain.Project{
		ID:        idx.NewAt(now).String(),
		Title:     title,
		ClientID:  clientID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var client domain.Client
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if client, err = tx.Clients().GetClientByID(ctx, clientID); err != nil {
			return lookup(err, "client", clientID)
		}
		return tx.Projects().CreateProject(ctx, p)
	})
	if err != nil {
		return boardsdk.Project{}, err
	}

	out := sdkProject(p, &client)
	s.committed(ctx, boardevents.EntityProject, "create", boardevents.ProjectAdded, out)

	l.Info("project created", "project_id", p.ID, "client_id", clientID)
	return out, nil
}

// RenameProject changes a project's title and announces project-renamed.
// Titles are not required to be unique.
func (s *ProjectService) RenameProject(ctx context.Context, id, title string) (boardsdk.Project, error) {
	title, err := validTitle(title)
	if err != nil {
		return boardsdk.Project{}, err
	}
	if err := knownID("project", id); err != nil {
		return boardsdk.Project{}, err
	}

	now := s.now()
	var (
		p      domain.Project
		client domain.Client
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if err = tx.Projects().UpdateProjectTitle(ctx, id, title, now); err != nil {
			return lookup(err, "project", id)
		}
		if p, err = tx.Projects().GetProjectByID(ctx, id); err != nil {
			return err
		}
		client, err = tx.Clients().GetClientByID(ctx, p.ClientID)
		return err
	})
	if err != nil {
		return boardsdk.Project{}, err
	}

	out := sdkProject(p, &client)
	s.committed(ctx, boardevents.EntityProject, "rename", boardevents.ProjectRenamed, out)
	return out, nil
}

// DeleteProject removes a project and unassigns its consultants in the same
// transaction.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)
	if err := knownID("project", id); err != nil {
		return err
	}
	now := s.now()

	var unassigned int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Projects().GetProjectByID(ctx, id); err != nil {
			return lookup(err, "project", id)
		}

		var err error
		if unassigned, err = tx.Consultants().UnassignConsultantsByProject(ctx, id, now); err != nil {
			return err
		}
		return tx.Projects().DeleteProject(ctx, id)
	})
	if err != nil {
		return err
	}

	s.committed(ctx, boardevents.EntityProject, "delete", boardevents.ProjectDeleted, boardsdk.DeletedID{ID: id})

	l.Info("project deleted", "project_id", id, "consultants_unassigned", unassigned)
	return nil
}
