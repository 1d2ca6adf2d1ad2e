package repository

import (
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
)

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a project repository backed by GORM.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) GetByUUID(userID uint, projectUUID string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("user_id = ? AND uuid = ?", userID, projectUUID).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByUserID(userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&projects).Error
	return projects, err
}

// Delete removes the project and detaches its tasks; the tasks themselves
// survive as unassigned.
func (r *projectRepository) Delete(userID uint, projectUUID string) error {
	project, err := r.GetByUUID(userID, projectUUID)
	if err != nil {
		return err
	}
	if err := r.db.Model(&models.Task{}).
		Where("project_id = ?", project.ID).
		Update("project_id", nil).Error; err != nil {
		return err
	}
	return r.db.Delete(project).Error
}

func (r *projectRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
