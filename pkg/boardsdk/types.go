package boardsdk

import "time"

// Client is an organisation owning projects. Projects are only populated
// by ListClients.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Projects  []Project `json:"projects,omitempty"`
}

// Project is a unit of work owned by a client. Client is embedded in create
// responses, push payloads and list responses; Consultants only in lists.
type Project struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	ClientID    string       `json:"client_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Client      *Client      `json:"client,omitempty"`
	Consultants []Consultant `json:"consultants,omitempty"`
}

// Consultant is a person assigned to at most one project. A nil ProjectID
// means the consultant is available.
type Consultant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      *string   `json:"role,omitempty"`
	ProjectID *string   `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Project   *Project  `json:"project,omitempty"`
}

// DeletedID is the payload of every *-deleted event.
type DeletedID struct {
	ID string `json:"id"`
}

type CreateClientRequest struct {
	Name string `json:"name"`
}

type CreateProjectRequest struct {
	Title    string `json:"title"`
	ClientID string `json:"client_id"`
}

type RenameProjectRequest struct {
	Title string `json:"title"`
}

type CreateConsultantRequest struct {
	Name      string  `json:"name"`
	Role      *string `json:"role,omitempty"`
	ProjectID *string `json:"project_id,omitempty"`
}

// ReassignConsultantRequest moves a consultant. ProjectID is always sent;
// null unassigns.
type ReassignConsultantRequest struct {
	ProjectID *string `json:"project_id"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
