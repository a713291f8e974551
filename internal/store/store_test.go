package store_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"ev-dealer-hub/internal/store"
)

type dealer struct {
	ID     uint     `json:"id"`
	Name   string   `json:"name"`
	Region string   `json:"region"`
	Status string   `json:"status"`
	Tags   []string `json:"tags"`
	Owner  *uint    `json:"owner"`
	Secret string   `json:"-"`
}

func (d *dealer) GetID() uint { return d.ID }
func (d *dealer) SetID(id uint) { d.ID = id }

func newDealers() *store.Store[dealer, *dealer] {
	return store.New[dealer]("dealer",
		dealer{ID: 1, Name: "Hanoi", Region: "North", Status: "active", Tags: []string{"flagship"}},
		dealer{ID: 2, Name: "Saigon", Region: "South", Status: "active"},
		dealer{ID: 5, Name: "Da Nang", Region: "Central", Status: "inactive", Secret: "s3"},
	)
}

func TestCreate_AssignsMaxIDPlusOne(t *testing.T) {
	s := newDealers()
	before := s.List()

	created, err := s.Create(context.Background(), dealer{Name: "Test Dealer", Region: "North"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 6 {
		t.Errorf("expected id 6, got %d", created.ID)
	}

	after := s.List()
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d records, got %d", len(before)+1, len(after))
	}
	count := 0
	for _, d := range after {
		if d.ID <= 5 && d.Name == "Test Dealer" {
			t.Errorf("created record reused an old id: %+v", d)
		}
		if d.Name == "Test Dealer" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected created dealer to appear once, got %d", count)
	}
	if after[len(after)-1].ID != 6 {
		t.Errorf("expected created dealer to be appended last")
	}
}

func TestCreate_EmptyStoreStartsAtOne(t *testing.T) {
	s := store.New[dealer]("dealer")
	created, err := s.Create(context.Background(), dealer{Name: "First"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected id 1, got %d", created.ID)
	}
}

func TestCreate_ReusesIDAfterRemovingMax(t *testing.T) {
	s := newDealers()
	ctx := context.Background()
	a, _ := s.Create(ctx, dealer{Name: "A"})
	if err := s.Remove(ctx, a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	b, _ := s.Create(ctx, dealer{Name: "B"})
	// Ids derive from the current max, so the freed id is handed out again.
	if b.ID != a.ID {
		t.Errorf("expected id %d, got %d", a.ID, b.ID)
	}
}

func TestPatch_MergesFieldsAndLeavesOthersUntouched(t *testing.T) {
	s := newDealers()
	before := s.List()

	updated, err := s.Patch(context.Background(), 5, map[string]any{"name": "Da Nang Central", "id": 99})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if updated.ID != 5 {
		t.Errorf("id must be immutable, got %d", updated.ID)
	}
	if updated.Name != "Da Nang Central" || updated.Region != "Central" || updated.Status != "inactive" {
		t.Errorf("unexpected merge result: %+v", updated)
	}
	if updated.Secret != "s3" {
		t.Errorf("hidden field lost: %q", updated.Secret)
	}

	after := s.List()
	for i := range before {
		if before[i].ID == 5 {
			continue
		}
		if !reflect.DeepEqual(before[i], after[i]) {
			t.Errorf("record %d changed: %+v -> %+v", before[i].ID, before[i], after[i])
		}
	}
}

func TestPatch_DoesNotWriteThroughToListedCopies(t *testing.T) {
	s := newDealers()
	listed := s.List()

	owner := uint(7)
	if _, err := s.Patch(context.Background(), 1, map[string]any{"tags": []string{"renamed"}}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if _, err := s.Update(context.Background(), 1, func(d *dealer) error { d.Owner = &owner; return nil }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Patch(context.Background(), 1, map[string]any{"owner": 8}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	if listed[0].Tags[0] != "flagship" {
		t.Errorf("listed copy was mutated: %v", listed[0].Tags)
	}
	if owner != 7 {
		t.Errorf("pointer target was mutated: %d", owner)
	}
	got, _ := s.Get(1)
	if *got.Owner != 8 || got.Tags[0] != "renamed" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestUpdate_MutateErrorAborts(t *testing.T) {
	s := newDealers()
	boom := errors.New("boom")
	_, err := s.Update(context.Background(), 2, func(d *dealer) error {
		d.Name = "changed"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := s.Get(2)
	if got.Name != "Saigon" {
		t.Errorf("aborted update leaked: %q", got.Name)
	}
}

func TestMerged_LeavesBaseAlone(t *testing.T) {
	s := newDealers()
	base, _ := s.Get(1)

	next, err := store.Merged(base, map[string]any{"name": "Hue", "tags": []string{"new"}})
	if err != nil {
		t.Fatalf("Merged: %v", err)
	}
	if next.Name != "Hue" || !reflect.DeepEqual(next.Tags, []string{"new"}) {
		t.Errorf("unexpected merge %+v", next)
	}
	if stored, _ := s.Get(1); stored.Name != "Hanoi" || !reflect.DeepEqual(stored.Tags, []string{"flagship"}) {
		t.Errorf("merge wrote through to the store: %+v", stored)
	}
}

func TestReplace(t *testing.T) {
	s := newDealers()
	ctx := context.Background()
	base, _ := s.Get(5)

	next, err := store.Merged(base, map[string]any{"name": "Hue"})
	if err != nil {
		t.Fatal(err)
	}
	next.Secret = "rotated"
	got, err := s.Replace(ctx, 5, base, next)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got.Secret != "rotated" || got.Name != "Hue" || got.ID != 5 {
		t.Errorf("unexpected record %+v", got)
	}

	// base is now out of date
	stale, _ := store.Merged(base, map[string]any{"name": "Vinh"})
	if _, err := s.Replace(ctx, 5, base, stale); !errors.Is(err, store.ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if d, _ := s.Get(5); d.Name != "Hue" {
		t.Errorf("stale replace leaked: %q", d.Name)
	}
}

func TestRemove(t *testing.T) {
	s := newDealers()
	ctx := context.Background()

	if err := s.Remove(ctx, 2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(2); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected not found after remove, got %v", err)
	}

	before := s.List()
	err := s.Remove(ctx, 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf *store.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "dealer" || nf.ID != 42 {
		t.Errorf("unexpected error detail: %v", err)
	}
	if !reflect.DeepEqual(before, s.List()) {
		t.Errorf("removing a missing id mutated the collection")
	}
}

func TestToggle_TwiceRestoresOriginal(t *testing.T) {
	s := newDealers()
	ctx := context.Background()

	first, err := s.Toggle(ctx, 1, "status", "active", "inactive")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if first.Status != "inactive" {
		t.Errorf("expected inactive, got %s", first.Status)
	}
	second, err := s.Toggle(ctx, 1, "status", "active", "inactive")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if second.Status != "active" {
		t.Errorf("expected active, got %s", second.Status)
	}

	if _, err := s.Toggle(ctx, 1, "colour", "a", "b"); err == nil {
		t.Errorf("expected error for unknown field")
	}
	if _, err := s.Toggle(ctx, 9, "status", "active", "inactive"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

type failingSink struct{ err error }

func (f failingSink) Save(context.Context, *dealer) error { return f.err }
func (f failingSink) Delete(context.Context, uint) error { return f.err }

type recordingSink struct {
	saved   []uint
	deleted []uint
}

func (r *recordingSink) Save(_ context.Context, d *dealer) error {
	r.saved = append(r.saved, d.ID)
	return nil
}

func (r *recordingSink) Delete(_ context.Context, id uint) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func TestSink(t *testing.T) {
	ctx := context.Background()

	t.Run("errors abort the mutation", func(t *testing.T) {
		s := newDealers()
		s.SetSink(failingSink{err: errors.New("db down")})

		if _, err := s.Create(ctx, dealer{Name: "X"}); err == nil {
			t.Errorf("expected create to fail")
		}
		if _, err := s.Patch(ctx, 1, map[string]any{"name": "Y"}); err == nil {
			t.Errorf("expected patch to fail")
		}
		if err := s.Remove(ctx, 1); err == nil {
			t.Errorf("expected remove to fail")
		}
		if s.Len() != 3 {
			t.Errorf("expected 3 records, got %d", s.Len())
		}
		got, _ := s.Get(1)
		if got.Name != "Hanoi" {
			t.Errorf("failed patch leaked: %q", got.Name)
		}
	})

	t.Run("receives every mutation", func(t *testing.T) {
		s := newDealers()
		sink := &recordingSink{}
		s.SetSink(sink)

		created, _ := s.Create(ctx, dealer{Name: "X"})
		_, _ = s.Toggle(ctx, 1, "status", "active", "inactive")
		_ = s.Remove(ctx, created.ID)

		if !reflect.DeepEqual(sink.saved, []uint{6, 1}) {
			t.Errorf("unexpected saves: %v", sink.saved)
		}
		if !reflect.DeepEqual(sink.deleted, []uint{6}) {
			t.Errorf("unexpected deletes: %v", sink.deleted)
		}
	})
}

func TestRestoreAndDiscard_BypassTheSink(t *testing.T) {
	ctx := context.Background()
	s := newDealers()
	before, _ := s.Get(2)

	if _, err := s.Patch(ctx, 2, map[string]any{"name": "Renamed"}); err != nil {
		t.Fatal(err)
	}
	created, err := s.Create(ctx, dealer{Name: "Temp"})
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	s.SetSink(sink)
	s.Restore(before)
	s.Discard(created.ID)
	s.Discard(99)

	if got, _ := s.Get(2); !reflect.DeepEqual(got, before) {
		t.Errorf("expected dealer 2 restored, got %+v", got)
	}
	if _, err := s.Get(created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected the created dealer to be gone, got %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 records, got %d", s.Len())
	}
	if len(sink.saved) != 0 || len(sink.deleted) != 0 {
		t.Errorf("expected no sink writes, got %+v", sink)
	}
}

func TestFilterAndFind(t *testing.T) {
	s := newDealers()
	active := s.Filter(func(d dealer) bool { return d.Status == "active" })
	if len(active) != 2 || active[0].ID != 1 || active[1].ID != 2 {
		t.Errorf("unexpected filter result: %+v", active)
	}
	none := s.Filter(func(dealer) bool { return false })
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
	d, ok := s.Find(func(d dealer) bool { return d.Region == "Central" })
	if !ok || d.ID != 5 {
		t.Errorf("unexpected find result: %+v %v", d, ok)
	}
}
