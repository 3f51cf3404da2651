package dto

import (
	"strings"
	"time"

	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/services"
)

// TaskRequest carries the parameters of every task action. GET actions bind
// it from the query string, POST actions from a JSON or form body.
type TaskRequest struct {
	Action         string   `json:"action" form:"action"`
	ID             *uint64  `json:"id" form:"id"`
	Title          string   `json:"title" form:"title"`
	Description    string   `json:"description" form:"description"`
	ParentID       *uint64  `json:"parent_id" form:"parent_id"`
	Priority       string   `json:"priority" form:"priority"`
	IsCompleted    *bool    `json:"is_completed" form:"is_completed"`
	Position       *int     `json:"position" form:"position"`
	TargetID       *uint64  `json:"target_id" form:"target_id"`
	Placement      string   `json:"placement" form:"placement"`
	Term           string   `json:"term" form:"term"`
	Level          *int     `json:"level" form:"level"`
	Priorities     []string `json:"priorities" form:"priorities"`
	Status         string   `json:"status" form:"status"`
	HasExternalRef *bool    `json:"has_external_ref" form:"has_external_ref"`
	LevelMin       *int     `json:"level_min" form:"level_min"`
	LevelMax       *int     `json:"level_max" form:"level_max"`
	Order          string   `json:"order" form:"order"`
	Reference      string   `json:"reference" form:"reference"`
	Create         bool     `json:"create" form:"create"`
	Provider       string   `json:"provider" form:"provider"`

	ExternalThreadID  *string `json:"external_thread_id" form:"external_thread_id"`
	ExternalMessageID *string `json:"external_message_id" form:"external_message_id"`
	ExternalURL       *string `json:"external_url" form:"external_url"`
	ExternalTaskID    *string `json:"external_task_id" form:"external_task_id"`
	ExternalEventID   *string `json:"external_event_id" form:"external_event_id"`
}

// PriorityList flattens priorities sent either as a list or as one
// comma-separated value.
func (r *TaskRequest) PriorityList() []models.TaskPriority {
	var out []models.TaskPriority
	for _, raw := range r.Priorities {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				out = append(out, models.TaskPriority(p))
			}
		}
	}
	return out
}

// ExternalRefs returns the provider identifiers of the request
func (r *TaskRequest) ExternalRefs() services.ExternalRefs {
	return services.ExternalRefs{
		ThreadID:  r.ExternalThreadID,
		MessageID: r.ExternalMessageID,
		URL:       r.ExternalURL,
		TaskID:    r.ExternalTaskID,
		EventID:   r.ExternalEventID,
	}
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                uint64              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	ParentID          *uint64             `json:"parent_id"`
	ColumnLevel       int                 `json:"column_level"`
	PositionOrder     int                 `json:"position_order"`
	Priority          models.TaskPriority `json:"priority"`
	IsCompleted       bool                `json:"is_completed"`
	CompletedAt       *time.Time          `json:"completed_at"`
	ExternalThreadID  *string             `json:"external_thread_id,omitempty"`
	ExternalMessageID *string             `json:"external_message_id,omitempty"`
	ExternalURL       *string             `json:"external_url,omitempty"`
	ExternalTaskID    *string             `json:"external_task_id,omitempty"`
	ExternalEventID   *string             `json:"external_event_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// TaskViewDTO is a task of a column with its child annotation
type TaskViewDTO struct {
	TaskDTO
	HasChildren bool  `json:"has_children"`
	ChildCount  int64 `json:"child_count"`
}

// TaskNodeDTO is a task with its nested subtree
type TaskNodeDTO struct {
	TaskDTO
	HasChildren bool          `json:"has_children"`
	Children    []TaskNodeDTO `json:"children"`
}

// StatsDTO is the response of get_stats
type StatsDTO struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
	MaxDepth  int   `json:"max_depth"`
}

// SuggestedSubtaskDTO is one AI suggestion
type SuggestedSubtaskDTO struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
}

// SuggestionsDTO is the response of suggest_subtasks
type SuggestionsDTO struct {
	Suggestions []SuggestedSubtaskDTO `json:"suggestions"`
	Created     []TaskDTO             `json:"created"`
}

// ProviderStatusDTO reports the connection state of an external provider
type ProviderStatusDTO struct {
	Provider        string     `json:"provider"`
	AccountID       string     `json:"account_id,omitempty"`
	Connected       bool       `json:"connected"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	Expiry          *time.Time `json:"expiry"`
	Scopes          []string   `json:"scopes"`
}

// UserDTO represents the logged in user
type UserDTO struct {
	Username string `json:"username"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:                task.ID,
		Title:             task.Title,
		Description:       task.Description,
		ParentID:          task.ParentID,
		ColumnLevel:       task.ColumnLevel,
		PositionOrder:     task.PositionOrder,
		Priority:          task.Priority,
		IsCompleted:       task.IsCompleted,
		CompletedAt:       task.CompletedAt,
		ExternalThreadID:  task.ExternalThreadID,
		ExternalMessageID: task.ExternalMessageID,
		ExternalURL:       task.ExternalURL,
		ExternalTaskID:    task.ExternalTaskID,
		ExternalEventID:   task.ExternalEventID,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks, never returning nil
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskViewDTOs converts annotated column tasks
func ToTaskViewDTOs(views []services.TaskView) []TaskViewDTO {
	items := make([]TaskViewDTO, len(views))
	for i, view := range views {
		items[i] = TaskViewDTO{
			TaskDTO:     ToTaskDTO(view.Task),
			HasChildren: view.HasChildren,
			ChildCount:  view.ChildCount,
		}
	}
	return items
}

// ToTaskNodeDTO converts a task tree recursively
func ToTaskNodeDTO(node *services.TaskNode) TaskNodeDTO {
	children := make([]TaskNodeDTO, len(node.Children))
	for i, child := range node.Children {
		children[i] = ToTaskNodeDTO(child)
	}
	return TaskNodeDTO{
		TaskDTO:     ToTaskDTO(node.Task),
		HasChildren: len(children) > 0,
		Children:    children,
	}
}

// ToStatsDTO converts service stats
func ToStatsDTO(stats *services.Stats) StatsDTO {
	return StatsDTO{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending,
		MaxDepth:  stats.MaxDepth,
	}
}

// ToSuggestionsDTO converts AI suggestions and the tasks created from them
func ToSuggestionsDTO(suggestions []services.SuggestedSubtask, created []models.Task) SuggestionsDTO {
	items := make([]SuggestedSubtaskDTO, len(suggestions))
	for i, s := range suggestions {
		items[i] = SuggestedSubtaskDTO{
			Title:       s.Title,
			Description: s.Description,
			Priority:    s.Priority,
		}
	}
	return SuggestionsDTO{
		Suggestions: items,
		Created:     ToTaskDTOs(created),
	}
}

// ToProviderStatusDTO converts a provider status
func ToProviderStatusDTO(status *services.ProviderStatus) ProviderStatusDTO {
	scopes := status.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return ProviderStatusDTO{
		Provider:        status.Provider,
		AccountID:       status.AccountID,
		Connected:       status.Connected,
		HasRefreshToken: status.HasRefreshToken,
		Expiry:          status.Expiry,
		Scopes:          scopes,
	}
}
