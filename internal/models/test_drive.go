package models

import "time"

// Test drive statuses.
const (
	TestDriveScheduled  = "scheduled"
	TestDriveInProgress = "in_progress"
	TestDriveCompleted  = "completed"
	TestDriveCancelled  = "cancelled"
)

// TestDrive - A booked test drive for a customer.
type TestDrive struct {
	Base
	CustomerID  uint      `gorm:"index" json:"customer_id"`
	VehicleID   uint      `gorm:"index" json:"vehicle_id"`
	DealerID    uint      `gorm:"index" json:"dealer_id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	VIN         string    `gorm:"size:40" json:"vin"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `gorm:"size:160" json:"location"`
	Status      string    `gorm:"size:20" json:"status"`
	Result      string    `json:"result"`
	Notes       string    `json:"notes"`
}

func (t TestDrive) OwnerDealer() *uint { return ptr(t.DealerID) }

func (t *TestDrive) AssignDealer(id uint) { t.DealerID = id }
