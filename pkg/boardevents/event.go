package boardevents

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
)

// Topic is the logical channel every board session listens on.
const Topic = "kanban-updates"

// Channel returns the namespaced Redis channel for the topic.
func Channel(namespace string) string {
	return fmt.Sprintf("consultboard:%s:%s", namespace, Topic)
}

// Kind names a change.
type Kind string

const (
	ConsultantAdded   Kind = "consultant-added"
	ConsultantMoved   Kind = "consultant-moved"
	ConsultantDeleted Kind = "consultant-deleted"
	ProjectAdded      Kind = "project-added"
	ProjectRenamed    Kind = "project-renamed"
	ProjectDeleted    Kind = "project-deleted"
	ClientAdded       Kind = "client-added"
	ClientDeleted     Kind = "client-deleted"
)

// Entity is the entity family a kind talks about.
type Entity string

const (
	EntityClient     Entity = "client"
	EntityProject    Entity = "project"
	EntityConsultant Entity = "consultant"
)

var kinds = map[Kind]struct {
	entity Entity
	delete bool
}{
	ConsultantAdded:   {EntityConsultant, false},
	ConsultantMoved:   {EntityConsultant, false},
	ConsultantDeleted: {EntityConsultant, true},
	ProjectAdded:      {EntityProject, false},
	ProjectRenamed:    {EntityProject, false},
	ProjectDeleted:    {EntityProject, true},
	ClientAdded:       {EntityClient, false},
	ClientDeleted:     {EntityClient, true},
}

var (
	ErrUnknownKind = errors.New("boardevents: unknown event kind")
	ErrWrongEntity = errors.New("boardevents: payload is for a different entity")
	ErrEmptyID     = errors.New("boardevents: payload has no id")
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Entity returns the entity family of k, or "" for unknown kinds.
func (k Kind) Entity() Entity { return kinds[k].entity }

// IsDelete reports whether the payload of k is only an id.
func (k Kind) IsDelete() bool { return kinds[k].delete }

// Event is the envelope sent on the wire.
type Event struct {
	Kind        Kind            `json:"kind"`
	Data        json.RawMessage `json:"data"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEvent marshals payload into an envelope stamped with now.
func NewEvent(kind Kind, payload any, now time.Time) (Event, error) {
	if !kind.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	return Event{Kind: kind, Data: data, PublishedAt: now.UTC()}, nil
}

// Encode returns the wire form of e.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses the wire form and rejects unknown kinds.
func Decode(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if !e.Kind.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return e, nil
}

// Client decodes the payload of a client-* event.
func (e Event) Client() (boardsdk.Client, error) {
	var c boardsdk.Client
	err := e.decodeEntity(EntityClient, &c, func() string { return c.ID })
	return c, err
}

// Project decodes the payload of a project-* event.
func (e Event) Project() (boardsdk.Project, error) {
	var p boardsdk.Project
	err := e.decodeEntity(EntityProject, &p, func() string { return p.ID })
	return p, err
}

// Consultant decodes the payload of a consultant-* event.
func (e Event) Consultant() (boardsdk.Consultant, error) {
	var c boardsdk.Consultant
	err := e.decodeEntity(EntityConsultant, &c, func() string { return c.ID })
	return c, err
}

// DeletedID returns the id carried by a *-deleted event.
func (e Event) DeletedID() (string, error) {
	if !e.Kind.IsDelete() {
		return "", fmt.Errorf("%w: %s is not a delete", ErrWrongEntity, e.Kind)
	}
	var d boardsdk.DeletedID
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return "", fmt.Errorf("failed to decode %s payload: %w", e.Kind, err)
	}
	if d.ID == "" {
		return "", ErrEmptyID
	}
	return d.ID, nil
}

func (e Event) decodeEntity(want Entity, target any, id func() string) error {
	if e.Kind.Entity() != want {
		return fmt.Errorf("%w: %s is not a %s event", ErrWrongEntity, e.Kind, want)
	}
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Kind, err)
	}
	if id() == "" {
		return ErrEmptyID
	}
	return nil
}
