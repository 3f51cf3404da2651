package repository

import (
	"github.com/yukikurage/column-task-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task and fills in its ID
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// ListRoots lists tasks without a parent in sibling order
	ListRoots() ([]models.Task, error)

	// ListChildren lists the direct children of a task in sibling order
	ListChildren(parentID uint64) ([]models.Task, error)

	// ListSiblings lists the tasks sharing parentID (nil for roots) in sibling order
	ListSiblings(parentID *uint64) ([]models.Task, error)

	// ListByParentIDs lists the children of all given parents, grouped by parent in sibling order
	ListByParentIDs(parentIDs []uint64) ([]models.Task, error)

	// ListByLevel lists all tasks of a column level in sibling order
	ListByLevel(level int) ([]models.Task, error)

	// CountChildren returns the number of direct children per parent ID; parents without children are absent
	CountChildren(parentIDs []uint64) (map[uint64]int64, error)

	// NextPosition returns max(position_order)+1 among the children of parentID (nil for roots)
	NextPosition(parentID *uint64) (int, error)

	// Update writes the given columns of one task and returns the affected row count
	Update(id uint64, fields map[string]any) (int64, error)

	// SetLevel sets column_level of every given task
	SetLevel(ids []uint64, level int) error

	// DeleteByIDs deletes the given tasks and returns the affected row count
	DeleteByIDs(ids []uint64) (int64, error)

	// Search matches term case-insensitively against title and description
	Search(term string) ([]models.Task, error)

	// Filter lists tasks across the whole forest
	Filter(filter TaskFilter) ([]models.Task, error)

	// Stats aggregates counts over all tasks
	Stats() (*TaskStats, error)

	// Transaction runs fn against a repository bound to a single transaction
	Transaction(fn func(repo TaskRepository) error) error
}

// Task status filter values
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task filter orderings
const (
	OrderPriority    = "priority"
	OrderUpdatedDesc = "updated_desc"
	OrderCreatedDesc = "created_desc"
	OrderCreatedAsc  = "created_asc"
	OrderPosition    = "position"
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Priorities     []models.TaskPriority
	Status         string
	HasExternalRef *bool
	LevelMin       *int
	LevelMax       *int
	Order          string
}

// TaskStats holds aggregate counts over all tasks
type TaskStats struct {
	Total     int64
	Completed int64
	MaxDepth  int
}

// TokenRepository defines the interface for provider credential storage
type TokenRepository interface {
	// Upsert creates or replaces the token of a provider account
	Upsert(token *models.ProviderToken) error

	// Latest returns the most recently updated token of a provider
	Latest(provider string) (*models.ProviderToken, error)
}
