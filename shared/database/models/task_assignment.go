package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskAssignment links a task to an assigned user. The composite unique
// index is the authoritative duplicate-assignment guard under races.
type TaskAssignment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TaskID     uuid.UUID `json:"task_id" gorm:"type:uuid;not null;uniqueIndex:idx_task_assignments_task_user"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_task_assignments_task_user"`
	AssignedBy uuid.UUID `json:"assigned_by" gorm:"type:uuid;not null"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Task *Task `json:"task,omitempty" gorm:"foreignKey:TaskID"`
}
