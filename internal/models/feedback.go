package models

import "time"

// Feedback statuses.
const (
	FeedbackPending    = "pending"
	FeedbackProcessing = "processing"
	FeedbackResolved   = "resolved"
)

// Feedback types.
const (
	FeedbackComplaint  = "complaint"
	FeedbackGeneral    = "feedback"
	FeedbackSuggestion = "suggestion"
)

// Feedback - A customer complaint or comment handled by dealer staff.
type Feedback struct {
	Base
	CustomerID   uint       `gorm:"index" json:"customer_id"`
	DealerID     uint       `gorm:"index" json:"dealer_id"`
	VehicleID    uint       `json:"vehicle_id"`
	Type         string     `gorm:"size:20" json:"type"`
	Title        string     `gorm:"size:200" json:"title"`
	Content      string     `json:"content"`
	Rating       int        `json:"rating"`
	Status       string     `gorm:"size:20" json:"status"`
	CreatedDate  time.Time  `json:"created_date"`
	ResolvedDate *time.Time `json:"resolved_date"`
	ResolvedBy   *uint      `json:"resolved_by"`
}

func (f Feedback) OwnerDealer() *uint { return ptr(f.DealerID) }

func (f *Feedback) AssignDealer(id uint) { f.DealerID = id }
