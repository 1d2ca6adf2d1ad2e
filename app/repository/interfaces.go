package repository

import (
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/entitlements"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ListAll() ([]models.User, error)
	Update(user *models.User) error
	EmailExists(email string) (bool, error)
}

// ProfileRepository defines the interface for plan record reads used outside
// the billing service (usage gate, plan endpoint).
type ProfileRepository interface {
	GetOrCreate(userID uint) (*models.UserProfile, error)
	PlanByUserID(userID uint) (entitlements.Plan, error)
}

// TaskFilter mirrors the list filters offered by the task views. Zero values
// mean "no filter"; sorting defaults to due date ascending with newest-first
// tiebreak, pinned tasks always first.
type TaskFilter struct {
	Status         string
	Priority       string
	Query          string
	ProjectID      *uint
	OnlyUnassigned bool
	SortByCreated  bool
}

// TaskRepository defines the interface for task-related database operations
type TaskRepository interface {
	Create(task *models.Task) error
	GetByUUID(userID uint, taskUUID string) (*models.Task, error)
	List(userID uint, filter TaskFilter) ([]models.Task, error)
	ListAllActive(userID uint) ([]models.Task, error)
	Update(task *models.Task) error
	Delete(userID uint, taskUUID string) error
	CountActiveByUserID(userID uint) (int64, error)
}

// ProjectRepository defines the interface for project-related database operations
type ProjectRepository interface {
	Create(project *models.Project) error
	GetByUUID(userID uint, projectUUID string) (*models.Project, error)
	ListByUserID(userID uint) ([]models.Project, error)
	Delete(userID uint, projectUUID string) error
	CountByUserID(userID uint) (int64, error)
}

// SubtaskRepository defines the interface for subtask-related database
// operations. Writes are scoped to the parent task so a subtask id from a
// foreign task never matches.
type SubtaskRepository interface {
	Create(subtask *models.Subtask) error
	ListByTaskID(taskID uint) ([]models.Subtask, error)
	SetDone(taskID, id uint, done bool) error
	Delete(taskID, id uint) error
}

// TagRepository defines the interface for tag-related database operations
type TagRepository interface {
	Create(tag *models.Tag) error
	ListByUserID(userID uint) ([]models.Tag, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User    UserRepository
	Profile ProfileRepository
	Task    TaskRepository
	Project ProjectRepository
	Subtask SubtaskRepository
	Tag     TagRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Profile: NewProfileRepository(db),
		Task:    NewTaskRepository(db),
		Project: NewProjectRepository(db),
		Subtask: NewSubtaskRepository(db),
		Tag:     NewTagRepository(db),
	}
}
