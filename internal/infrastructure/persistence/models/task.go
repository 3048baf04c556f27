// Package models contains the GORM persistence models.
package models

import (
	"time"

	"github.com/taskboard/taskboard/internal/domain/task"
)

// TaskModel is the persistence model for the Task aggregate
type TaskModel struct {
	ID          int64       `gorm:"primaryKey;autoIncrement"`
	Title       string      `gorm:"type:varchar(20);not null"`
	Description *string     `gorm:"type:text"`
	Status      task.Status `gorm:"type:varchar(20);not null;default:'NotStarted';index"`
	DueDate     *time.Time  `gorm:"index"`
	CreatedAt   time.Time   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task
func (m *TaskModel) ToDomain() *task.Task {
	t := &task.Task{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt.UTC(),
	}
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// FromDomain populates the persistence model from a domain Task
func (m *TaskModel) FromDomain(t *task.Task) {
	m.ID = t.ID
	m.Title = t.Title
	m.Description = t.Description
	m.Status = t.Status
	m.DueDate = t.DueDate
	m.CreatedAt = t.CreatedAt
}

// TaskModelFromDomain creates a new persistence model from a domain Task
func TaskModelFromDomain(t *task.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}
