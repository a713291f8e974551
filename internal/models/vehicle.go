package models

import "github.com/shopspring/decimal"

// VehicleType - A body style such as Sedan or SUV.
type VehicleType struct {
	Base
	TypeName    string `gorm:"size:60" json:"type_name"`
	Description string `gorm:"size:255" json:"description"`
	Status      string `gorm:"size:10" json:"status"`
}

// Specifications are free-form performance figures shown on the product card.
type Specifications struct {
	Range        string `json:"range,omitempty"`
	Acceleration string `json:"acceleration,omitempty"`
	TopSpeed     string `json:"top_speed,omitempty"`
	ChargingTime string `json:"charging_time,omitempty"`
}

// Vehicle - A model in the manufacturer's catalogue.
type Vehicle struct {
	Base
	ModelName       string          `gorm:"size:120" json:"model_name"`
	Brand           string          `gorm:"size:60;index" json:"brand"`
	Year            int             `json:"year"`
	VehicleTypeID   uint            `gorm:"index" json:"vehicle_type_id"`
	Version         string          `gorm:"size:60" json:"version"`
	BatteryCapacity decimal.Decimal `gorm:"type:decimal(8,2)" json:"battery_capacity"` // kWh
	ListedPrice     decimal.Decimal `gorm:"type:decimal(20,2)" json:"listed_price"`
	AvailableColors []string        `gorm:"serializer:json" json:"available_colors"`
	Specifications  Specifications  `gorm:"serializer:json" json:"specifications"`
	Status          string          `gorm:"size:10" json:"status"`
}

// HasColor reports whether c is one of the vehicle's colours.
func (v Vehicle) HasColor(c string) bool {
	for _, color := range v.AvailableColors {
		if color == c {
			return true
		}
	}
	return false
}
