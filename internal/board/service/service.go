package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/consultboard/internal/board/domain"
	"github.com/aussiebroadwan/consultboard/internal/board/store"
	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/idx"
	"github.com/aussiebroadwan/consultboard/pkg/slogx"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Deps are shared by every board service.
type Deps struct {
	Store   store.Store
	Events  boardevents.Publisher
	Metrics *Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

// now returns the mutation timestamp at the precision every driver keeps.
func (d Deps) now() time.Time {
	clock := d.Now
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Microsecond)
}

// committed records the mutation and announces it. Publication happens after
// the transaction commits and a failure never fails the request: viewers
// converge on their next reload.
func (d Deps) committed(ctx context.Context, entity boardevents.Entity, op string, kind boardevents.Kind, payload any) {
	d.Metrics.mutation(entity, op)

	if d.Events == nil {
		return
	}
	err := d.Events.Publish(ctx, kind, payload)
	d.Metrics.publication(kind, err)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to publish board event", "kind", kind, "error", err)
	}
}

func notFound(what, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, what, id)
}

// knownID rejects ids that cannot name a stored entity. Every id is a ULID
// minted by idx, so anything else is not found without a store round trip.
func knownID(what, id string) error {
	if !idx.Valid(id) {
		return notFound(what, id)
	}
	return nil
}

// lookup maps store.ErrNotFound to ErrNotFound for the named entity.
func lookup(err error, what, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(what, id)
	}
	return err
}

func requireName(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return value, nil
}

// validTitle rejects empty titles and the reserved bucket label, in any case.
func validTitle(title string) (string, error) {
	title, err := requireName("title", title)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(title, domain.AvailableTitle) {
		return "", fmt.Errorf("%w: title %q is reserved", ErrValidation, domain.AvailableTitle)
	}
	return title, nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
