// Package boardevents is the change notification channel of the board.
//
// The server publishes one Event per committed mutation on the
// kanban-updates topic; every open board session subscribes once and merges
// what it receives into its local copy. Payloads carry the full post-change
// entity (as the boardsdk wire types) or, for deletions, only the id.
//
// Delivery is at-most-once with no replay, both for Redis pub/sub and for
// the in-process MemoryBus. Subscribers must tolerate gaps.
//
// Channel pattern: consultboard:{namespace}:kanban-updates
package boardevents
