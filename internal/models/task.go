package models

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

type SourceType string

const (
	SourceEmail SourceType = "email"
	SourceTeams SourceType = "teams"
	SourceLoop  SourceType = "loop"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Task is the canonical unit of work produced by extraction. ID, SourceType
// and SourceID never change after creation.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	SourceType  SourceType     `json:"source_type"`
	SourceID    string         `json:"source_id"`
	Priority    Priority       `json:"priority"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	Status      Status         `json:"status"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	Metadata    map[string]any `json:"metadata"`
}

func (t *Task) SetMetadata(key string, value any) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]any)
	}
	t.Metadata[key] = value
}

// Rank orders priorities from most to least urgent. Anything outside the
// enum ranks after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

func (p Priority) Valid() bool {
	return p.Rank() < 4
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s SourceType) Valid() bool {
	switch s {
	case SourceEmail, SourceTeams, SourceLoop:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q", s)
	}
	return p, nil
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid source type %q", s)
	}
	return st, nil
}
