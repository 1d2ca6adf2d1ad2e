package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/entitlements"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a plan record repository backed by GORM.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetOrCreate(userID uint) (*models.UserProfile, error) {
	return models.GetOrCreateUserProfile(r.db, userID)
}

// PlanByUserID reads the current plan at call time. A missing profile row
// means the user never touched billing and defaults to free.
func (r *profileRepository) PlanByUserID(userID uint) (entitlements.Plan, error) {
	var profile models.UserProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entitlements.PlanFree, nil
		}
		return entitlements.PlanFree, err
	}
	return entitlements.NormalizePlan(profile.Plan), nil
}
