package models

import "time"

// Plan keys recognised by the access gate, lowest tier first.
const (
	PlanFree  = "free"
	PlanPro   = "pro"
	PlanCoach = "coach"
)

// Subscription mirrors a user's current billing plan as synchronised by the billing service.
type Subscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Plan             string     `gorm:"size:32;not null" json:"plan"`
	Status           string     `gorm:"size:32;not null" json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsActive reports whether the plan grants access at the reference time.
func (s Subscription) IsActive(reference time.Time) bool {
	if s.Status != "active" && s.Status != "trialing" {
		return false
	}
	return s.CurrentPeriodEnd == nil || reference.Before(*s.CurrentPeriodEnd)
}
