package dealership

import (
	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/models"
	"ev-dealer-hub/internal/store"
)

// Session is the signed-in user every query runs on behalf of.
type Session struct {
	UserID   uint        `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	DealerID *uint       `json:"dealer_id"`
}

// Scoped reports whether the session only sees its own dealer's records.
func (s Session) Scoped() bool {
	return access.DealerScoped(s.Role)
}

// Sees reports whether rec is visible to the session. Records without an
// owning dealer are visible unless they are dealer-bound, such as users.
func (s Session) Sees(rec any) bool {
	if !s.Scoped() {
		return true
	}
	owned, ok := rec.(models.DealerOwned)
	if !ok {
		return true
	}
	owner := owned.OwnerDealer()
	if owner == nil {
		shared, ok := rec.(models.DealerShared)
		return ok && shared.SharedAcrossDealers()
	}
	return s.DealerID != nil && *owner == *s.DealerID
}

// Visible filters records down to the ones the session may see.
func Visible[T any](s Session, records []T) []T {
	if !s.Scoped() {
		return records
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if s.Sees(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Lookup fetches a record the session may see. Records of other dealers are
// reported as missing.
func Lookup[T any, P store.Record[T]](s Session, st *store.Store[T, P], id uint) (T, error) {
	rec, err := st.Get(id)
	if err != nil {
		return rec, err
	}
	if !s.Sees(rec) {
		var zero T
		return zero, &store.NotFoundError{Entity: st.Name(), ID: id}
	}
	return rec, nil
}

// dealerOf is the dealer a scoped session works for, 0 otherwise.
func (s Session) dealerOf() uint {
	if s.DealerID == nil {
		return 0
	}
	return *s.DealerID
}
