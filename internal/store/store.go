// Package store holds the generic in-memory entity collections every
// dashboard resource is built on.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Record is satisfied by a pointer to an entity with a numeric id.
type Record[T any] interface {
	*T
	GetID() uint
	SetID(uint)
}

// Sink receives every mutation before it is committed in memory.
// A Sink error aborts the mutation.
type Sink[T any] interface {
	Save(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id uint) error
}

// Store is an ordered, named collection of one entity type.
type Store[T any, P Record[T]] struct {
	name string

	mu    sync.RWMutex
	items []T
	sink  Sink[T]
}

// New creates a store seeded with items. Seed ids are kept as given.
func New[T any, P Record[T]](name string, seed ...T) *Store[T, P] {
	s := &Store[T, P]{name: name}
	s.items = append(s.items, seed...)
	return s
}

func (s *Store[T, P]) Name() string { return s.name }

// SetSink attaches write-through persistence.
func (s *Store[T, P]) SetSink(sink Sink[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Load replaces the whole collection.
func (s *Store[T, P]) Load(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]T(nil), items...)
}

func (s *Store[T, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// List returns a copy of the collection in insertion order.
func (s *Store[T, P]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Filter returns the records matching keep, in insertion order.
func (s *Store[T, P]) Filter(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0)
	for _, item := range s.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the first record matching match.
func (s *Store[T, P]) Find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Get returns the record with id or a *NotFoundError.
func (s *Store[T, P]) Get(id uint) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	var zero T
	return zero, s.notFound(id)
}

// Create assigns the next id (max existing id + 1) and appends the record.
func (s *Store[T, P]) Create(ctx context.Context, draft T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	P(&draft).SetID(s.nextID())
	if s.sink != nil {
		if err := s.sink.Save(ctx, &draft); err != nil {
			var zero T
			return zero, fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	s.items = append(s.items, draft)
	return draft, nil
}

// Update applies mutate to a copy of the record and commits it if mutate succeeds.
// The id cannot be changed.
func (s *Store[T, P]) Update(ctx context.Context, id uint, mutate func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i := s.indexOf(id)
	if i < 0 {
		return zero, s.notFound(id)
	}

	rec := s.items[i]
	detach(&rec)
	if err := mutate(&rec); err != nil {
		return zero, err
	}
	P(&rec).SetID(id)

	if s.sink != nil {
		if err := s.sink.Save(ctx, &rec); err != nil {
			return zero, fmt.Errorf("update %s %d: %w", s.name, id, err)
		}
	}
	s.items[i] = rec
	return rec, nil
}

// Patch merges fields, keyed by JSON name, into the record.
func (s *Store[T, P]) Patch(ctx context.Context, id uint, fields map[string]any) (T, error) {
	return s.Update(ctx, id, func(rec *T) error {
		return merge(rec, fields)
	})
}

// Merged returns a copy of base with fields merged in. base itself and the
// stored record it came from are left untouched.
func Merged[T any](base T, fields map[string]any) (T, error) {
	detach(&base)
	if err := merge(&base, fields); err != nil {
		var zero T
		return zero, err
	}
	return base, nil
}

// Replace commits next over the record with id, provided the stored record
// still equals base. Otherwise it returns a *StaleError and nothing changes.
func (s *Store[T, P]) Replace(ctx context.Context, id uint, base, next T) (T, error) {
	return s.Update(ctx, id, func(rec *T) error {
		if !reflect.DeepEqual(*rec, base) {
			return &StaleError{Entity: s.name, ID: id}
		}
		*rec = next
		return nil
	})
}

// Toggle flips a binary string field: a becomes b, anything else becomes a.
func (s *Store[T, P]) Toggle(ctx context.Context, id uint, field, a, b string) (T, error) {
	return s.Update(ctx, id, func(rec *T) error {
		current, err := fieldsOf(rec)
		if err != nil {
			return err
		}
		value, ok := current[field]
		if !ok {
			return fmt.Errorf("%s has no field %q", s.name, field)
		}
		next := a
		if value == a {
			next = b
		}
		return merge(rec, map[string]any{field: next})
	})
}

// Remove deletes the record. Nothing that references it is touched.
func (s *Store[T, P]) Remove(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return s.notFound(id)
	}
	if s.sink != nil {
		if err := s.sink.Delete(ctx, id); err != nil {
			return fmt.Errorf("remove %s %d: %w", s.name, id, err)
		}
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return nil
}

// Restore puts rec back in memory without writing it to the sink. It undoes a
// change whose persistence was rolled back.
func (s *Store[T, P]) Restore(rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(P(&rec).GetID()); i >= 0 {
		s.items[i] = rec
		return
	}
	s.items = append(s.items, rec)
}

// Discard drops the record from memory without telling the sink.
func (s *Store[T, P]) Discard(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
}

func (s *Store[T, P]) indexOf(id uint) int {
	for i := range s.items {
		if P(&s.items[i]).GetID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, P]) nextID() uint {
	var highest uint
	for i := range s.items {
		if id := P(&s.items[i]).GetID(); id > highest {
			highest = id
		}
	}
	return highest + 1
}

func (s *Store[T, P]) notFound(id uint) error {
	return &NotFoundError{Entity: s.name, ID: id}
}

// fieldsOf renders the record as a JSON object.
func fieldsOf(rec any) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// merge overlays fields onto rec through its JSON form. Fields hidden from
// JSON keep their current values.
func merge(rec any, fields map[string]any) error {
	current, err := fieldsOf(rec)
	if err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, rec)
}

// detach gives a shallow copy its own slices and maps, so decoding into it
// never writes through to the committed record.
func detach(rec any) {
	detachValue(reflect.ValueOf(rec).Elem())
}

func detachValue(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.Slice, reflect.Map, reflect.Pointer:
			if !f.IsNil() {
				f.Set(cloneRef(f))
			}
		case reflect.Struct:
			detachValue(f)
		}
	}
}

func cloneRef(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(c, v)
		return c
	case reflect.Map:
		c := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), iter.Value())
		}
		return c
	case reflect.Pointer:
		c := reflect.New(v.Type().Elem())
		c.Elem().Set(v.Elem())
		return c
	}
	return v
}
