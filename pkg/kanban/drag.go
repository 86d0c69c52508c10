package kanban

import (
	"context"
	"sync"
)

// Phase is the state of the drag state machine.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Targeting
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Targeting:
		return "targeting"
	default:
		return "idle"
	}
}

// DragState is a copy of the coordinator's state. Target is only
// meaningful in Targeting.
type DragState struct {
	Phase        Phase
	ConsultantID string
	Target       Placement
}

// reassigner is the slice of the façade a drop needs.
type reassigner interface {
	ReassignConsultant(ctx context.Context, id string, to Placement) error
}

type actionsReassigner struct{ a *Actions }

func (r actionsReassigner) ReassignConsultant(ctx context.Context, id string, to Placement) error {
	_, err := r.a.ReassignConsultant(ctx, id, to)
	return err
}

// DragCoordinator tracks the one drag gesture allowed at a time. The
// provisional target lives here, never in the cache: a hover that is not
// followed by a drop leaves the board untouched.
type DragCoordinator struct {
	mu    sync.Mutex
	state DragState
	cache *Cache
	move  reassigner
}

// NewDragCoordinator creates a coordinator resolving surfaces against cache
// and moving cards through actions.
func NewDragCoordinator(cache *Cache, actions *Actions) *DragCoordinator {
	return &DragCoordinator{cache: cache, move: actionsReassigner{actions}}
}

// State returns the current state.
func (d *DragCoordinator) State() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start picks up a consultant card.
func (d *DragCoordinator) Start(consultantID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != Idle {
		return ErrGestureInProgress
	}
	if _, ok := d.cache.Consultant(consultantID); !ok {
		return ErrUnknownConsultant
	}

	d.state = DragState{Phase: Dragging, ConsultantID: consultantID}
	return nil
}

// Hover resolves the surface under the pointer to a provisional target:
// the available surface first, then a project, then a sibling consultant's
// current placement. Unknown surfaces keep the previous target. It reports
// whether the surface resolved.
func (d *DragCoordinator) Hover(surfaceID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase == Idle {
		return false
	}

	target, ok := d.resolve(surfaceID)
	if !ok {
		return false
	}

	d.state.Phase = Targeting
	d.state.Target = target
	return true
}

func (d *DragCoordinator) resolve(surfaceID string) (Placement, bool) {
	if surfaceID == AvailableLabel {
		return Unassigned, true
	}
	if _, ok := d.cache.Project(surfaceID); ok {
		return Assigned(surfaceID), true
	}
	if x, ok := d.cache.Consultant(surfaceID); ok {
		return x.Placement, true
	}
	return Placement{}, false
}

// Drop ends the gesture. From Targeting it issues exactly one reassignment;
// on failure the façade has already reloaded the board, so nothing is
// repaired here. A drop without any resolved target is a cancel.
func (d *DragCoordinator) Drop(ctx context.Context) error {
	d.mu.Lock()
	st := d.state
	d.state = DragState{}
	d.mu.Unlock()

	switch st.Phase {
	case Idle:
		return ErrNoGesture
	case Dragging:
		return nil
	}

	return d.move.ReassignConsultant(ctx, st.ConsultantID, st.Target)
}

// Cancel abandons the gesture without touching the board.
func (d *DragCoordinator) Cancel() {
	d.mu.Lock()
	d.state = DragState{}
	d.mu.Unlock()
}
