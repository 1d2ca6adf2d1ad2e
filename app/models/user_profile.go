package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile stores the per-user plan record owned by the billing subsystem.
// Plan transitions are driven exclusively by Stripe events (checkout completion
// and subscription webhooks), never by direct UI action. StripeCustomerID is
// set once on first checkout and never cleared; StripeSubscriptionID is
// cleared only when the subscription is deleted.
type UserProfile struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Plan                 string    `gorm:"type:varchar(50);not null;default:'free'" json:"plan"`
	StripeCustomerID     string    `gorm:"type:varchar(191);default:'';index" json:"stripe_customer_id"`
	StripeSubscriptionID string    `gorm:"type:varchar(191);default:''" json:"stripe_subscription_id"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName keeps the historical table name used by the billing queries.
func (UserProfile) TableName() string {
	return "users_profile"
}

// GetOrCreateUserProfile returns the existing plan record or creates a free
// default row for the user.
func GetOrCreateUserProfile(db *gorm.DB, userID uint) (*UserProfile, error) {
	var profile UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			profile = UserProfile{UserID: userID, Plan: "free"}
			if err := db.Create(&profile).Error; err != nil {
				return nil, err
			}
			return &profile, nil
		}
		return nil, err
	}
	return &profile, nil
}
