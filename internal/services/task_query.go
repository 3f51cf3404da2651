package services

import (
	"fmt"
	"strings"

	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/repository"
)

// FilterInput represents the filter panel. Zero values mean "any".
type FilterInput struct {
	Priorities     []models.TaskPriority
	Status         string
	HasExternalRef *bool
	LevelMin       *int
	LevelMax       *int
	Order          string
}

// Stats summarises the whole forest
type Stats struct {
	Total     int64
	Completed int64
	Pending   int64
	MaxDepth  int
}

// Search returns tasks whose title or description contains term, ignoring
// case, ordered by level then position.
func (s *TaskService) Search(term string) ([]models.Task, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrSearchTermRequired
	}

	tasks, err := s.taskRepo.Search(term)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return tasks, nil
}

// Filter runs a global query over all tasks
func (s *TaskService) Filter(input FilterInput) ([]models.Task, error) {
	for _, p := range input.Priorities {
		if !p.Valid() {
			return nil, ErrInvalidPriority
		}
	}

	status := input.Status
	switch status {
	case "":
		status = repository.StatusAll
	case repository.StatusAll, repository.StatusPending, repository.StatusCompleted:
	default:
		return nil, ErrInvalidStatus
	}

	order := input.Order
	switch order {
	case "":
		order = repository.OrderPriority
	case repository.OrderPriority, repository.OrderUpdatedDesc, repository.OrderCreatedDesc,
		repository.OrderCreatedAsc, repository.OrderPosition:
	default:
		return nil, ErrInvalidOrder
	}

	if (input.LevelMin != nil && *input.LevelMin < 1) || (input.LevelMax != nil && *input.LevelMax < 1) {
		return nil, ErrInvalidLevelRange
	}
	if input.LevelMin != nil && input.LevelMax != nil && *input.LevelMin > *input.LevelMax {
		return nil, ErrInvalidLevelRange
	}

	tasks, err := s.taskRepo.Filter(repository.TaskFilter{
		Priorities:     input.Priorities,
		Status:         status,
		HasExternalRef: input.HasExternalRef,
		LevelMin:       input.LevelMin,
		LevelMax:       input.LevelMax,
		Order:          order,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter tasks: %w", err)
	}
	return tasks, nil
}

// UrgentTasks is the quick view: pending high-priority tasks
func (s *TaskService) UrgentTasks() ([]models.Task, error) {
	return s.Filter(FilterInput{
		Priorities: []models.TaskPriority{models.PriorityHigh},
		Status:     repository.StatusPending,
		Order:      repository.OrderPriority,
	})
}

// GetStats returns total, completed and pending counts and the deepest level
func (s *TaskService) GetStats() (*Stats, error) {
	stats, err := s.taskRepo.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	return &Stats{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Total - stats.Completed,
		MaxDepth:  stats.MaxDepth,
	}, nil
}
