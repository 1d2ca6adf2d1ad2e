package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UUID        string     `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"-"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"type:varchar(20);not null;default:'todo'" json:"status" validate:"oneof=todo in_progress done"`
	Priority    string     `gorm:"type:varchar(10);not null;default:'medium'" json:"priority" validate:"oneof=low medium high"`
	DueDate     *time.Time `gorm:"type:date;default:null" json:"due_date"`
	Pinned      bool       `gorm:"default:false" json:"pinned"`
	Archived    bool       `gorm:"default:false;index" json:"archived"`
	ProjectID   *uint      `gorm:"index;default:null" json:"project_id"`
	Subtasks    []Subtask  `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns a public UUID when none is set.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	return nil
}

func (t *Task) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// IsOverdue reports whether the task has a due date in the past and is not done.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusDone {
		return false
	}
	return t.DueDate.Before(now.Truncate(24 * time.Hour))
}
