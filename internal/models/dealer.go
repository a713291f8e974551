package models

// Dealer regions.
const (
	RegionNorth   = "North"
	RegionCentral = "Central"
	RegionSouth   = "South"
)

// Dealer - A dealership selling the manufacturer's vehicles.
type Dealer struct {
	Base
	Name               string `gorm:"size:120" json:"name"`
	Address            string `gorm:"size:255" json:"address"`
	Phone              string `gorm:"size:30" json:"phone"`
	RepresentativeName string `gorm:"size:120" json:"representative_name"`
	Region             string `gorm:"size:10" json:"region"`
	Status             string `gorm:"size:10" json:"status"`
}
