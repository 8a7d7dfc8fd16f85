package audit

import (
	"context"
	"errors"
)

// ErrNoLister is returned when the underlying store cannot read events back.
var ErrNoLister = errors.New("audit store does not support listing")

// Tee appends every event to a primary store and then to each mirror.
// Reads are served by the primary only.
type Tee struct {
	primary Store
	mirrors []Store
}

// NewTee builds a Tee. Nil mirrors are ignored.
func NewTee(primary Store, mirrors ...Store) *Tee {
	t := &Tee{primary: primary}
	for _, m := range mirrors {
		if m != nil {
			t.mirrors = append(t.mirrors, m)
		}
	}
	return t
}

// Append writes to every store. A failing mirror does not stop the others;
// all failures are joined.
func (t *Tee) Append(ctx context.Context, event Event) error {
	errs := []error{t.primary.Append(ctx, event)}
	for _, m := range t.mirrors {
		errs = append(errs, m.Append(ctx, event))
	}
	return errors.Join(errs...)
}

// ListBySubject delegates to the primary store.
func (t *Tee) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	lister, ok := t.primary.(Lister)
	if !ok {
		return nil, ErrNoLister
	}
	return lister.ListBySubject(ctx, subject)
}
