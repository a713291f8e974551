package models

import "time"

// Inventory - Stock of one vehicle model held by one dealer.
type Inventory struct {
	Base
	DealerID          uint      `gorm:"index" json:"dealer_id"`
	VehicleID         uint      `gorm:"index" json:"vehicle_id"`
	AvailableQuantity int       `json:"available_quantity"`
	ReservedQuantity  int       `json:"reserved_quantity"`
	LastUpdated       time.Time `json:"last_updated"`
}

func (Inventory) TableName() string { return "inventory" }

// TotalStock is available plus reserved units.
func (i Inventory) TotalStock() int {
	return i.AvailableQuantity + i.ReservedQuantity
}

func (i Inventory) OwnerDealer() *uint { return ptr(i.DealerID) }

func (i *Inventory) AssignDealer(id uint) { i.DealerID = id }
