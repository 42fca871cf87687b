package models

import "time"

// SubscriptionModel is a waitlist signup and its confirmation state.
//
// ConfirmationToken is set while a double opt-in is outstanding and cleared
// exactly once when the subscriber confirms. Confirmed and Notified never
// revert to false; Notified may only become true on a confirmed row.
// No soft delete: the compensating delete after a failed opt-in email must
// free the unique email index so the visitor can simply resubmit.
type SubscriptionModel struct {
	Base
	Email             string     `json:"email"       gorm:"uniqueIndex;not null"`
	Name              string     `json:"name"`
	School            string     `json:"school"`
	ConfirmationToken *string    `json:"-"           gorm:"uniqueIndex"`
	Confirmed         bool       `json:"confirmed"   gorm:"default:false"`
	ConfirmedAt       *time.Time `json:"confirmedAt"`
	Notified          bool       `json:"notified"    gorm:"default:false"`
}

func (SubscriptionModel) TableName() string { return "subscriptions" }
