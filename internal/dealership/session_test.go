package dealership

import (
	"errors"
	"testing"

	"ev-dealer-hub/internal/models"
	"ev-dealer-hub/internal/store"
)

func TestVisible(t *testing.T) {
	r := newTestRegistry(t)

	if got := len(Visible(adminSession, r.Orders.List())); got != 2 {
		t.Errorf("admin should see every order, got %d", got)
	}
	if got := Visible(staffSession, r.Orders.List()); len(got) != 1 || got[0].DealerID != 1 {
		t.Errorf("dealer staff should only see dealer 1 orders, got %+v", got)
	}
	// Admin users have no dealer and stay hidden from dealer managers.
	for _, u := range Visible(managerSession, r.Users.List()) {
		if u.DealerID == nil || *u.DealerID != 1 {
			t.Errorf("manager sees user %s of another dealer", u.Username)
		}
	}
	// Vehicles belong to no dealer and are visible to everyone.
	if got := len(Visible(otherSession, r.Vehicles.List())); got != 2 {
		t.Errorf("expected every vehicle to be visible, got %d", got)
	}
}

func TestSeesSharedPromotions(t *testing.T) {
	everyone := models.Promotion{ProgramName: "Summer"}
	mine := models.Promotion{ProgramName: "North only", DealerID: dealerID(1)}
	theirs := models.Promotion{ProgramName: "South only", DealerID: dealerID(2)}

	if !staffSession.Sees(everyone) || !staffSession.Sees(mine) || staffSession.Sees(theirs) {
		t.Errorf("unexpected promotion visibility")
	}
}

func TestLookupHidesOtherDealers(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := Lookup(staffSession, r.Orders, 1); err != nil {
		t.Fatalf("expected order 1 to be visible: %v", err)
	}
	_, err := Lookup(staffSession, r.Orders, 2)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected another dealer's order to be reported missing, got %v", err)
	}
}
