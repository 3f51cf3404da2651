package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/repository"
	"github.com/yukikurage/column-task-api/internal/utils"
	"gorm.io/gorm"
)

// TaskService owns the task forest: every mutation of parent, level and
// position goes through it.
type TaskService struct {
	taskRepo     repository.TaskRepository
	suggester    SubtaskSuggester
	maxTreeDepth int
}

// NewTaskService creates a new TaskService. suggester may be nil.
func NewTaskService(taskRepo repository.TaskRepository, suggester SubtaskSuggester, maxTreeDepth int) *TaskService {
	if maxTreeDepth < 1 {
		maxTreeDepth = constants.DefaultMaxTreeDepth
	}
	return &TaskService{
		taskRepo:     taskRepo,
		suggester:    suggester,
		maxTreeDepth: maxTreeDepth,
	}
}

// ExternalRefs carries provider identifiers. Nil fields are left untouched.
type ExternalRefs struct {
	ThreadID  *string
	MessageID *string
	URL       *string
	TaskID    *string
	EventID   *string
}

func (r ExternalRefs) columns() map[string]any {
	fields := map[string]any{}
	set := func(column string, value *string) {
		if value == nil {
			return
		}
		if *value == "" {
			fields[column] = nil
			return
		}
		fields[column] = *value
	}
	set("external_thread_id", r.ThreadID)
	set("external_message_id", r.MessageID)
	set("external_url", r.URL)
	set("external_task_id", r.TaskID)
	set("external_event_id", r.EventID)
	return fields
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	ParentID    *uint64
	Priority    models.TaskPriority
	External    ExternalRefs
}

// UpdateTaskInput represents the mutable scalar fields of a task
type UpdateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
}

// CreateFromMailInput represents input for creating a task from a mail link
type CreateFromMailInput struct {
	Reference   string
	Title       string
	Description string
	ParentID    *uint64
	Priority    models.TaskPriority
}

// CreateTask validates input, derives level and position from the parent and
// inserts the task at the end of its sibling group.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	priority, err := normalizePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	var task *models.Task
	err = s.taskRepo.Transaction(func(repo repository.TaskRepository) error {
		level := 1
		if input.ParentID != nil {
			parent, err := repo.FindByID(*input.ParentID)
			if err != nil {
				return notFound(err, ErrParentNotFound, "failed to find parent task")
			}
			level = parent.ColumnLevel + 1
		}

		position, err := repo.NextPosition(input.ParentID)
		if err != nil {
			return fmt.Errorf("failed to compute position: %w", err)
		}

		task = &models.Task{
			Title:         title,
			Description:   input.Description,
			ParentID:      input.ParentID,
			ColumnLevel:   level,
			PositionOrder: position,
			Priority:      priority,
		}
		applyExternalRefs(task, input.External)

		if err := repo.Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// CreateFromMailReference creates a task linked to a mail thread. The
// reference is a mail web URL or a bare thread id.
func (s *TaskService) CreateFromMailReference(input CreateFromMailInput) (*models.Task, error) {
	ref, ok := utils.ParseMailReference(input.Reference)
	if !ok {
		return nil, ErrInvalidMailRef
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = fmt.Sprintf("Mail thread %s", ref.ThreadID)
	}

	return s.CreateTask(CreateTaskInput{
		Title:       title,
		Description: input.Description,
		ParentID:    input.ParentID,
		Priority:    input.Priority,
		External: ExternalRefs{
			ThreadID: &ref.ThreadID,
			URL:      &ref.URL,
		},
	})
}

// GetTask returns a task by ID
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, notFound(err, ErrTaskNotFound, "failed to find task")
	}
	return task, nil
}

// UpdateTask overwrites title, description and priority. It reports whether a
// row was affected; parent, level and position are never touched.
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (bool, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return false, ErrTitleRequired
	}
	priority, err := normalizePriority(input.Priority)
	if err != nil {
		return false, err
	}

	affected, err := s.taskRepo.Update(taskID, map[string]any{
		"title":       title,
		"description": input.Description,
		"priority":    priority,
	})
	if err != nil {
		return false, fmt.Errorf("failed to update task: %w", err)
	}
	return affected > 0, nil
}

// MarkCompleted completes a task. Completing a completed task keeps its
// original completed_at.
func (s *TaskService) MarkCompleted(taskID uint64) (*models.Task, error) {
	return s.SetCompleted(taskID, true)
}

// MarkIncomplete reopens a task and clears completed_at.
func (s *TaskService) MarkIncomplete(taskID uint64) (*models.Task, error) {
	return s.SetCompleted(taskID, false)
}

// SetCompleted moves a task between the pending and completed states
func (s *TaskService) SetCompleted(taskID uint64, completed bool) (*models.Task, error) {
	if _, err := s.GetTask(taskID); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"is_completed": false,
		"completed_at": nil,
	}
	if completed {
		fields["is_completed"] = true
		fields["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", time.Now())
	}

	if _, err := s.taskRepo.Update(taskID, fields); err != nil {
		return nil, fmt.Errorf("failed to update completion: %w", err)
	}

	return s.GetTask(taskID)
}

// DeleteTask removes a task together with its whole subtree. It reports
// whether the task existed.
func (s *TaskService) DeleteTask(taskID uint64) (bool, error) {
	existed := false
	err := s.taskRepo.Transaction(func(repo repository.TaskRepository) error {
		if _, err := repo.FindByID(taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		existed = true

		levels, err := collectSubtree(repo, taskID)
		if err != nil {
			return err
		}

		ids := []uint64{taskID}
		for _, level := range levels {
			ids = append(ids, level...)
		}
		if _, err := repo.DeleteByIDs(ids); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// UpdatePosition overwrites position_order of one task without renumbering
// its siblings. Equal positions sort by id.
func (s *TaskService) UpdatePosition(taskID uint64, position int) (bool, error) {
	affected, err := s.taskRepo.Update(taskID, map[string]any{"position_order": position})
	if err != nil {
		return false, fmt.Errorf("failed to update position: %w", err)
	}
	return affected > 0, nil
}

// AttachExternalRefs stores provider identifiers on a task. Empty strings
// clear a reference.
func (s *TaskService) AttachExternalRefs(taskID uint64, refs ExternalRefs) (*models.Task, error) {
	fields := refs.columns()
	if len(fields) == 0 {
		return nil, ErrNoExternalRefs
	}

	if _, err := s.GetTask(taskID); err != nil {
		return nil, err
	}
	if _, err := s.taskRepo.Update(taskID, fields); err != nil {
		return nil, fmt.Errorf("failed to attach external references: %w", err)
	}

	return s.GetTask(taskID)
}

func applyExternalRefs(task *models.Task, refs ExternalRefs) {
	nonEmpty := func(v *string) *string {
		if v == nil || *v == "" {
			return nil
		}
		return v
	}
	task.ExternalThreadID = nonEmpty(refs.ThreadID)
	task.ExternalMessageID = nonEmpty(refs.MessageID)
	task.ExternalURL = nonEmpty(refs.URL)
	task.ExternalTaskID = nonEmpty(refs.TaskID)
	task.ExternalEventID = nonEmpty(refs.EventID)
}

func normalizePriority(priority models.TaskPriority) (models.TaskPriority, error) {
	if priority == "" {
		return models.PriorityMedium, nil
	}
	if !priority.Valid() {
		return "", ErrInvalidPriority
	}
	return priority, nil
}

// notFound maps gorm's missing-record error to sentinel and wraps anything else.
func notFound(err, sentinel error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", action, err)
}
