package models

import (
	"time"
)

type CompletionStatus string

const (
	CompletionPending   CompletionStatus = "PENDING"
	CompletionCompleted CompletionStatus = "COMPLETED"
	CompletionRejected  CompletionStatus = "REJECTED"
)

func (s CompletionStatus) Valid() bool {
	switch s {
	case CompletionPending, CompletionCompleted, CompletionRejected:
		return true
	}
	return false
}

// UserTask records a person completing a task. CompletionDay is set only while
// the row is COMPLETED; the unique index makes a second completion of the same
// task on the same day impossible. PointsAwarded is the task's reward at
// completion time and is what a reversal takes back.
type UserTask struct {
	ID            uint64           `gorm:"primarykey" json:"id"`
	UserID        uint64           `gorm:"not null;uniqueIndex:idx_user_task_day,priority:1" json:"user_id"`
	TaskID        uint64           `gorm:"not null;uniqueIndex:idx_user_task_day,priority:2;index" json:"task_id"`
	Status        CompletionStatus `gorm:"type:varchar(20);not null" json:"status"`
	CompletionDay *string          `gorm:"type:varchar(10);uniqueIndex:idx_user_task_day,priority:3" json:"completion_day,omitempty"`
	PointsAwarded int              `gorm:"not null;default:0" json:"points_awarded"`
	CreatedAt     time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}
