package models

import (
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities, high first when sorted descending.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is a node of the task forest. ParentID nil means a root task.
type Task struct {
	ID            uint64       `gorm:"primarykey" json:"id"`
	Title         string       `gorm:"type:varchar(255);not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	ParentID      *uint64      `gorm:"index;index:idx_tasks_parent_position,priority:1" json:"parent_id"`
	ColumnLevel   int          `gorm:"not null;default:1;index" json:"column_level"`
	PositionOrder int          `gorm:"not null;default:0;index:idx_tasks_parent_position,priority:2" json:"position_order"`
	Priority      TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	IsCompleted   bool         `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt   *time.Time   `json:"completed_at"`

	ExternalThreadID  *string `gorm:"type:varchar(255)" json:"external_thread_id"`
	ExternalMessageID *string `gorm:"type:varchar(255)" json:"external_message_id"`
	ExternalURL       *string `gorm:"type:varchar(1024)" json:"external_url"`
	ExternalTaskID    *string `gorm:"type:varchar(255)" json:"external_task_id"`
	ExternalEventID   *string `gorm:"type:varchar(255)" json:"external_event_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasExternalRef reports whether the task is linked to a provider thread or message.
func (t *Task) HasExternalRef() bool {
	return (t.ExternalThreadID != nil && *t.ExternalThreadID != "") ||
		(t.ExternalMessageID != nil && *t.ExternalMessageID != "")
}
