package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the closed set of task workflow states.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// TaskPriority is the closed set of task priorities.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// Task carries a denormalized OrganizationID copied from its project at
// creation so tenant-scope checks never need a join. It is immutable after
// creation, as is ProjectID.
type Task struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string       `json:"title" gorm:"size:200;not null"`
	Description    string       `json:"description" gorm:"type:text"`
	Status         TaskStatus   `json:"status" gorm:"size:20;default:'TODO'"`
	Priority       TaskPriority `json:"priority" gorm:"size:20;default:'MEDIUM'"`
	DueDate        *time.Time   `json:"due_date"`
	ProjectID      uuid.UUID    `json:"project_id" gorm:"type:uuid;not null;index"`
	OrganizationID uuid.UUID    `json:"organization_id" gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Relations
	Project     *Project         `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Assignments []TaskAssignment `json:"assignments,omitempty" gorm:"foreignKey:TaskID"`
}
