package models

import (
	"fmt"
	"strings"
	"unicode"
)

// Settings - System-wide configuration edited by the administrator.
// Exactly one record exists.
type Settings struct {
	Base
	SiteName              string `gorm:"size:120" json:"site_name"`
	SiteDescription       string `gorm:"size:255" json:"site_description"`
	AdminEmail            string `gorm:"size:120" json:"admin_email"`
	SupportPhone          string `gorm:"size:30" json:"support_phone"`
	Currency              string `gorm:"size:3" json:"currency"`
	Timezone              string `gorm:"size:60" json:"timezone"`
	MaintenanceMode       bool   `json:"maintenance_mode"`
	SessionTimeoutMinutes int    `json:"session_timeout_minutes"`
	LowStockThreshold     int    `json:"low_stock_threshold"`  // below this is "low"
	HighStockThreshold    int    `json:"high_stock_threshold"` // above this is "high"

	// Security
	PasswordMinLength      int  `json:"password_min_length"`
	PasswordRequireNumber  bool `json:"password_require_number"`
	PasswordRequireSpecial bool `json:"password_require_special"`
	MaxLoginAttempts       int  `json:"max_login_attempts"` // 0 disables the lockout
	LockoutMinutes         int  `json:"lockout_minutes"`
}

// DefaultSettings are used when no settings record was seeded.
func DefaultSettings() Settings {
	return Settings{
		Base:                   Base{ID: 1},
		SiteName:               "EV Dealer Management System",
		SiteDescription:        "Electric vehicle sales through the dealer network",
		Currency:               "VND",
		Timezone:               "Asia/Ho_Chi_Minh",
		SessionTimeoutMinutes:  24 * 60,
		LowStockThreshold:      3,
		HighStockThreshold:     10,
		PasswordMinLength:      8,
		PasswordRequireNumber:  true,
		PasswordRequireSpecial: true,
		MaxLoginAttempts:       5,
		LockoutMinutes:         15,
	}
}

// PasswordProblem describes why pw breaks the password policy, or returns "".
func (s Settings) PasswordProblem(pw string) string {
	if len(pw) < s.PasswordMinLength {
		return fmt.Sprintf("must be at least %d characters", s.PasswordMinLength)
	}
	if s.PasswordRequireNumber && !strings.ContainsFunc(pw, unicode.IsDigit) {
		return "must contain a number"
	}
	if s.PasswordRequireSpecial && !strings.ContainsFunc(pw, isSpecial) {
		return "must contain a special character"
	}
	return ""
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
