package models

// Customer - A retail buyer registered at a dealer.
type Customer struct {
	Base
	FullName  string `gorm:"size:120" json:"full_name"`
	Phone     string `gorm:"size:30" json:"phone"`
	Email     string `gorm:"size:120" json:"email"`
	CitizenID string `gorm:"size:30" json:"citizen_id"`
	DealerID  uint   `gorm:"index" json:"dealer_id"`
}

func (c Customer) OwnerDealer() *uint { return ptr(c.DealerID) }

func (c *Customer) AssignDealer(id uint) { c.DealerID = id }
