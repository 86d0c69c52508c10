package service

import (
	"github.com/aussiebroadwan/consultboard/internal/board/domain"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
)

// The services answer in SDK types: the same payloads go out over HTTP and
// on the event channel.

func sdkClient(c domain.Client) boardsdk.Client {
	return boardsdk.Client{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func sdkProject(p domain.Project, client *domain.Client) boardsdk.Project {
	out := boardsdk.Project{
		ID:        p.ID,
		Title:     p.Title,
		ClientID:  p.ClientID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if client != nil {
		c := sdkClient(*client)
		out.Client = &c
	}
	return out
}

// sdkConsultant embeds the project (with its client) when both are given.
func sdkConsultant(x domain.Consultant, project *domain.Project, client *domain.Client) boardsdk.Consultant {
	out := boardsdk.Consultant{
		ID:        x.ID,
		Name:      x.Name,
		Role:      x.Role,
		ProjectID: x.ProjectID,
		CreatedAt: x.CreatedAt,
		UpdatedAt: x.UpdatedAt,
	}
	if project != nil {
		p := sdkProject(*project, client)
		out.Project = &p
	}
	return out
}

// board is a full read of the three tables, joined in memory.
type board struct {
	clients     []domain.Client
	projects    []domain.Project
	consultants []domain.Consultant

	clientByID  map[string]*domain.Client
	projectByID map[string]*domain.Project
}

func newBoard(clients []domain.Client, projects []domain.Project, consultants []domain.Consultant) *board {
	b := &board{
		clients:     clients,
		projects:    projects,
		consultants: consultants,
		clientByID:  make(map[string]*domain.Client, len(clients)),
		projectByID: make(map[string]*domain.Project, len(projects)),
	}
	for i := range b.clients {
		b.clientByID[b.clients[i].ID] = &b.clients[i]
	}
	for i := range b.projects {
		b.projectByID[b.projects[i].ID] = &b.projects[i]
	}
	return b
}

func (b *board) consultantWithProject(x domain.Consultant) boardsdk.Consultant {
	if x.ProjectID == nil {
		return sdkConsultant(x, nil, nil)
	}
	p := b.projectByID[*x.ProjectID]
	if p == nil {
		return sdkConsultant(x, nil, nil)
	}
	return sdkConsultant(x, p, b.clientByID[p.ClientID])
}
