package models

import "time"

// Priority and status values used by the database-backed pipeline.
const (
	StoredPriorityHigh   = "High"
	StoredPriorityMedium = "Medium"
	StoredPriorityLow    = "Low"

	StoredStatusPending = "Pending"

	StoredSourceEmail = "email"
	StoredSourceTodo  = "todo"
)

type StoredTask struct {
	ID            uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title         string     `json:"title" gorm:"not null"`
	Source        string     `json:"source" gorm:"index"`
	SourceRef     string     `json:"source_ref"`
	ETA           *time.Time `json:"eta" gorm:"type:date;index"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status" gorm:"not null;default:'Pending'"`
	ExtractedFrom string     `json:"extracted_from"`
}

func (StoredTask) TableName() string {
	return "tasks"
}

// StoredPriorityFor maps a canonical priority onto the three-level scale.
func StoredPriorityFor(p Priority) string {
	switch p {
	case PriorityCritical, PriorityHigh:
		return StoredPriorityHigh
	case PriorityLow:
		return StoredPriorityLow
	default:
		return StoredPriorityMedium
	}
}

// View projects a stored row onto the canonical task shape so the query
// engine can serve both pipelines.
func (s StoredTask) View() Task {
	source := SourceEmail
	if s.Source == StoredSourceTodo {
		source = SourceLoop
	}

	status := StatusPending
	switch s.Status {
	case "Completed", "completed", "Done", "done":
		status = StatusCompleted
	case "In Progress", "in-progress", "In-Progress":
		status = StatusInProgress
	}

	priority := PriorityMedium
	switch s.Priority {
	case StoredPriorityHigh:
		priority = PriorityHigh
	case StoredPriorityLow:
		priority = PriorityLow
	}

	task := Task{
		Title:       s.Title,
		Description: s.ExtractedFrom,
		SourceType:  source,
		SourceID:    s.SourceRef,
		Priority:    priority,
		DueDate:     s.ETA,
		Status:      status,
		Metadata:    map[string]any{"stored_id": s.ID},
	}
	return task
}
