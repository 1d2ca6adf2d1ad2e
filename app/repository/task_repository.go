package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a task repository backed by GORM.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *taskRepository) GetByUUID(userID uint, taskUUID string) (*models.Task, error) {
	var task models.Task
	err := r.db.Where("user_id = ? AND uuid = ?", userID, taskUUID).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns the user's non-archived tasks with the view filters applied.
// Pinned tasks sort first; default order is due date ascending with newest
// creation as tiebreak, optionally plain newest-first.
func (r *taskRepository) List(userID uint, filter TaskFilter) ([]models.Task, error) {
	q := r.db.Where("user_id = ? AND archived = ?", userID, false)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		q = q.Where("title LIKE ?", "%"+s+"%")
	}
	if filter.OnlyUnassigned {
		q = q.Where("project_id IS NULL")
	} else if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}

	q = q.Order("pinned DESC")
	if filter.SortByCreated {
		q = q.Order("created_at DESC")
	} else {
		q = q.Order("due_date ASC").Order("created_at DESC")
	}

	var tasks []models.Task
	err := q.Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) ListAllActive(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("user_id = ? AND archived = ?", userID, false).
		Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

func (r *taskRepository) Delete(userID uint, taskUUID string) error {
	task, err := r.GetByUUID(userID, taskUUID)
	if err != nil {
		return err
	}
	if err := r.db.Where("task_id = ?", task.ID).Delete(&models.Subtask{}).Error; err != nil {
		return err
	}
	return r.db.Delete(task).Error
}

// CountActiveByUserID counts non-archived tasks for limit checks. Read live
// at gate-check time, never cached.
func (r *taskRepository) CountActiveByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("user_id = ? AND archived = ?", userID, false).
		Count(&count).Error
	return count, err
}
