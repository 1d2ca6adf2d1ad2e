package billing

import (
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
)

// Repository provides the users_profile writes used by the billing service.
// All plan mutations are pure overwrites so replayed events converge.
type Repository interface {
	GetProfileByUserID(userID uint) (*models.UserProfile, error)
	// SaveStripeCustomerID persists the customer id for a user. This is the
	// only write path for stripe_customer_id.
	SaveStripeCustomerID(userID uint, customerID string) error
	// UpgradeByUserID marks the user premium and records both provider ids.
	UpgradeByUserID(userID uint, customerID, subscriptionID string) error
	// SetPlanByCustomerID overwrites plan and subscription id on the profile
	// matched by customer id and reports how many rows matched.
	SetPlanByCustomerID(customerID, plan, subscriptionID string) (int64, error)
	// DowngradeByCustomerID sets the profile back to free and clears the
	// subscription id. Zero matched rows is not an error.
	DowngradeByCustomerID(customerID string) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetProfileByUserID(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *gormRepository) SaveStripeCustomerID(userID uint, customerID string) error {
	return r.db.Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("stripe_customer_id", customerID).Error
}

func (r *gormRepository) UpgradeByUserID(userID uint, customerID, subscriptionID string) error {
	return r.db.Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"plan":                   "premium",
			"stripe_customer_id":     customerID,
			"stripe_subscription_id": subscriptionID,
		}).Error
}

func (r *gormRepository) SetPlanByCustomerID(customerID, plan, subscriptionID string) (int64, error) {
	tx := r.db.Model(&models.UserProfile{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(map[string]interface{}{
			"plan":                   plan,
			"stripe_subscription_id": subscriptionID,
		})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) DowngradeByCustomerID(customerID string) (int64, error) {
	tx := r.db.Model(&models.UserProfile{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(map[string]interface{}{
			"plan":                   "free",
			"stripe_subscription_id": "",
		})
	return tx.RowsAffected, tx.Error
}
