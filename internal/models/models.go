package models

// Base - The numeric identity every record carries.
// Ids are unique per collection and assigned by the store on create.
type Base struct {
	ID uint `gorm:"primaryKey;autoIncrement:false" json:"id"`
}

func (b *Base) GetID() uint { return b.ID }

func (b *Base) SetID(id uint) { b.ID = id }

// Binary status shared by dealers, users, vehicles, vehicle types, pricing and promotions.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DealerOwned is implemented by records that belong to a single dealer.
// A nil owner means the record applies to every dealer.
type DealerOwned interface {
	OwnerDealer() *uint
}

// DealerShared is implemented by records whose missing owner means
// "every dealer" rather than "no dealer".
type DealerShared interface {
	SharedAcrossDealers() bool
}

// DealerAssignable lets the API pin a new record to the caller's dealer.
type DealerAssignable interface {
	AssignDealer(id uint)
}

func ptr(id uint) *uint { return &id }
