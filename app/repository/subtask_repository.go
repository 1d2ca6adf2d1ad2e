package repository

import (
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
)

type subtaskRepository struct {
	db *gorm.DB
}

// NewSubtaskRepository creates a subtask repository backed by GORM.
func NewSubtaskRepository(db *gorm.DB) SubtaskRepository {
	return &subtaskRepository{db: db}
}

func (r *subtaskRepository) Create(subtask *models.Subtask) error {
	return r.db.Create(subtask).Error
}

func (r *subtaskRepository) ListByTaskID(taskID uint) ([]models.Subtask, error) {
	var subtasks []models.Subtask
	err := r.db.Where("task_id = ?", taskID).Order("id ASC").Find(&subtasks).Error
	return subtasks, err
}

// SetDone toggles the done flag. The task_id constraint keeps ids from
// foreign tasks out of reach; zero matched rows is a not-found.
func (r *subtaskRepository) SetDone(taskID, id uint, done bool) error {
	tx := r.db.Model(&models.Subtask{}).
		Where("id = ? AND task_id = ?", id, taskID).
		Update("done", done)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *subtaskRepository) Delete(taskID, id uint) error {
	tx := r.db.Where("id = ? AND task_id = ?", id, taskID).Delete(&models.Subtask{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
