// Package kanban keeps one viewer's copy of the consultant board in sync.
//
// A Session owns a Cache (the local snapshot), an Actions façade that
// persists changes through a Gateway, a DragCoordinator for the single
// in-flight drag gesture, and one subscription to the change notification
// channel. The cache takes input from three places: the façade's own
// responses, push events from other viewers, and full reloads. Merges are
// keyed by id and last-writer-wins on UpdatedAt, so a local result and the
// push event for the same change converge in either order.
//
// Cards are placed by project id (see Placement); the "Disponível" label is
// derived, never stored.
package kanban
