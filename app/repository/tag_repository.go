package repository

import (
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
)

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a tag repository backed by GORM.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

func (r *tagRepository) ListByUserID(userID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error
	return tags, err
}
