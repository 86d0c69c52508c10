package kanban

// AvailableLabel is the label of unassigned consultants and the id of the
// drop surface that unassigns. No project may carry this title.
const AvailableLabel = "Disponível"

// Placement says where a consultant card sits: on a project, or in the
// available bucket. The zero value is Unassigned.
type Placement struct {
	projectID string
}

// Unassigned is the available bucket.
var Unassigned = Placement{}

// Assigned places a card on projectID. An empty id is Unassigned.
func Assigned(projectID string) Placement {
	return Placement{projectID: projectID}
}

// PlacementOf converts a nullable wire reference.
func PlacementOf(projectID *string) Placement {
	if projectID == nil {
		return Unassigned
	}
	return Assigned(*projectID)
}

// ProjectID returns the project and true when assigned.
func (p Placement) ProjectID() (string, bool) {
	return p.projectID, p.projectID != ""
}

func (p Placement) IsAssigned() bool { return p.projectID != "" }

// Ref is the nullable wire form.
func (p Placement) Ref() *string {
	if p.projectID == "" {
		return nil
	}
	id := p.projectID
	return &id
}

func (p Placement) String() string {
	if p.projectID == "" {
		return AvailableLabel
	}
	return p.projectID
}

// ProjectLabel derives the label shown on a consultant card: the title of
// the referenced project, or AvailableLabel when unassigned or when the
// project is unknown.
func ProjectLabel(p Placement, title func(projectID string) (string, bool)) string {
	id, ok := p.ProjectID()
	if !ok {
		return AvailableLabel
	}
	if t, ok := title(id); ok {
		return t
	}
	return AvailableLabel
}
