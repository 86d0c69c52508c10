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

type ConsultantService struct {
	Deps
}

// ListConsultants returns every consultant with its project and client.
func (s *ConsultantService) ListConsultants(ctx context.Context) ([]boardsdk.Consultant, error) {
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

	out := make([]boardsdk.Consultant, len(consultants))
	for i, x := range consultants {
		out[i] = b.consultantWithProject(x)
	}
	return out, nil
}

// CreateConsultant creates a consultant, optionally on a project, and
// announces consultant-added. A blank role is stored as none.
func (s *ConsultantService) CreateConsultant(ctx context.Context, req boardsdk.CreateConsultantRequest) (boardsdk.Consultant, error) {
	l := slogx.FromContext(ctx)

	name, err := requireName("name", req.Name)
	if err != nil {
		return boardsdk.Consultant{}, err
	}

	now := s.now()
	x := domain.Consultant{
		ID:        idx.NewAt(now).String(),
		Name:      name,
		Role:      optional(req.Role),
		ProjectID: optional(req.ProjectID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := knownPlacement(x.ProjectID); err != nil {
		return boardsdk.Consultant{}, err
	}

	var out boardsdk.Consultant
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		project, client, err := placement(ctx, tx, x.ProjectID)
		if err != nil {
			return err
		}
		if err := tx.Consultants().CreateConsultant(ctx, x); err != nil {
			return err
		}
		out = sdkConsultant(x, project, client)
		return nil
	})
	if err != nil {
		return boardsdk.Consultant{}, err
	}

	s.committed(ctx, boardevents.EntityConsultant, "create", boardevents.ConsultantAdded, out)

	l.Info("consultant created", "consultant_id", x.ID, "assigned", x.ProjectID != nil)
	return out, nil
}

// ReassignConsultant moves a consultant to a project, or to the available
// bucket when projectID is nil, and announces consultant-moved.
func (s *ConsultantService) ReassignConsultant(ctx context.Context, id string, projectID *string) (boardsdk.Consultant, error) {
	l := slogx.FromContext(ctx)
	projectID = optional(projectID)
	if err := knownID("consultant", id); err != nil {
		return boardsdk.Consultant{}, err
	}
	if err := knownPlacement(projectID); err != nil {
		return boardsdk.Consultant{}, err
	}
	now := s.now()

	var out boardsdk.Consultant
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		project, client, err := placement(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := tx.Consultants().UpdateConsultantProject(ctx, id, projectID, now); err != nil {
			return lookup(err, "consultant", id)
		}
		x, err := tx.Consultants().GetConsultantByID(ctx, id)
		if err != nil {
			return err
		}
		out = sdkConsultant(x, project, client)
		return nil
	})
	if err != nil {
		return boardsdk.Consultant{}, err
	}

	s.committed(ctx, boardevents.EntityConsultant, "move", boardevents.ConsultantMoved, out)

	l.Info("consultant moved", "consultant_id", id, "project_id", projectID)
	return out, nil
}

// DeleteConsultant removes a consultant and announces consultant-deleted.
func (s *ConsultantService) DeleteConsultant(ctx context.Context, id string) error {
	if err := knownID("consultant", id); err != nil {
		return err
	}
	if err := s.Store.Consultants().DeleteConsultant(ctx, id); err != nil {
		return lookup(err, "consultant", id)
	}

	s.committed(ctx, boardevents.EntityConsultant, "delete", boardevents.ConsultantDeleted, boardsdk.DeletedID{ID: id})

	slogx.FromContext(ctx).Info("consultant deleted", "consultant_id", id)
	return nil
}

// placement loads the target project and its client. A nil id means the
// available bucket.
func placement(ctx context.Context, tx store.Tx, projectID *string) (*domain.Project, *domain.Client, error) {
	if projectID == nil {
		return nil, nil, nil
	}

	p, err := tx.Projects().GetProjectByID(ctx, *projectID)
	if err != nil {
		return nil, nil, lookup(err, "project", *projectID)
	}
	c, err := tx.Clients().GetClientByID(ctx, p.ClientID)
	if err != nil {
		return nil, nil, err
	}
	return &p, &c, nil
}

func knownPlacement(projectID *string) error {
	if projectID == nil {
		return nil
	}
	return knownID("project", *projectID)
}
