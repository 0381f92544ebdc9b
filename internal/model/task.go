package model

import (
	"time"
)

// Task is a to-do item. A task with a ParentTaskID is a subtask of that task.
type Task struct {
	ID           uint64   `gorm:"primaryKey;autoIncrement"`
	Title        string   `gorm:"type:varchar(200);not null"`
	Description  *string  `gorm:"type:text"`
	DueDate      *Date    `gorm:"type:date"`
	Priority     Priority `gorm:"type:varchar(20);not null"`
	Category     Category `gorm:"type:varchar(20);not null"`
	Status       Status   `gorm:"type:varchar(20);not null"`
	ParentTaskID *uint64  `gorm:"index"`
	IsDeleted    bool     `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// SubTasks is filled by queries, never persisted.
	SubTasks []Task `gorm:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentTaskID == nil
}
