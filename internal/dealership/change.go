package dealership

import (
	"context"

	"ev-dealer-hub/internal/store"
)

// change is an edit spanning several stores that lands whole or not at all.
// Each committed step records how to put memory back if a later one fails.
type change struct {
	undo []func()
}

func (c *change) rollback() {
	for i := len(c.undo) - 1; i >= 0; i-- {
		c.undo[i]()
	}
	c.undo = nil
}

// atomically runs fn as one change. With persistence attached, fn runs inside
// r.Atomic so its writes commit together; on any failure memory is restored.
func (r *Registry) atomically(ctx context.Context, fn func(ctx context.Context, c *change) error) error {
	c := &change{}
	run := func(ctx context.Context) error { return fn(ctx, c) }

	var err error
	if r.Atomic != nil {
		err = r.Atomic(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		c.rollback()
	}
	return err
}

// update is store.Update recorded on c. A nil c records nothing.
func update[T any, P store.Record[T]](ctx context.Context, c *change, st *store.Store[T, P], id uint, mutate func(*T) error) (T, error) {
	prev, err := st.Get(id)
	if err != nil {
		var zero T
		return zero, err
	}
	next, err := st.Update(ctx, id, mutate)
	if err == nil && c != nil {
		c.undo = append(c.undo, func() { st.Restore(prev) })
	}
	return next, err
}

// create is store.Create recorded on c. A nil c records nothing.
func create[T any, P store.Record[T]](ctx context.Context, c *change, st *store.Store[T, P], draft T) (T, error) {
	rec, err := st.Create(ctx, draft)
	if err == nil && c != nil {
		id := P(&rec).GetID()
		c.undo = append(c.undo, func() { st.Discard(id) })
	}
	return rec, err
}
