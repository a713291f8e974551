package models

// Role is the closed set of dashboard roles.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleEVMStaff      Role = "evm_staff"
	RoleDealerManager Role = "dealer_manager"
	RoleDealerStaff   Role = "dealer_staff"
)

// User - A person who can log into the dashboard.
type User struct {
	Base
	Username     string `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string `json:"-"` // Never return this in JSON
	Email        string `gorm:"size:120" json:"email"`
	FullName     string `gorm:"size:120" json:"full_name"`
	Phone        string `gorm:"size:30" json:"phone"`
	Address      string `gorm:"size:255" json:"address"`
	Role         Role   `gorm:"size:20" json:"role"`
	DealerID     *uint  `gorm:"index" json:"dealer_id"` // nil for admin and evm_staff
	Status       string `gorm:"size:10" json:"status"`
}

func (u User) OwnerDealer() *uint { return u.DealerID }

func (u *User) AssignDealer(id uint) { u.DealerID = ptr(id) }

// IsDealerRole reports whether the role works inside a single dealership.
func (r Role) IsDealerRole() bool {
	return r == RoleDealerManager || r == RoleDealerStaff
}
