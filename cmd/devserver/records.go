package main

import (
	"strings"
	"time"

	"github.com/google/uuid"

	formula "github.com/rowbase/formula"
)

// Task is the demo table backing the development server. Field names
// double as the formula field identifiers.
type Task struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"not null"`
	Status    string     `json:"status" gorm:"not null"`
	Priority  float64    `json:"priority"`
	Done      bool       `json:"done"`
	DueDate   *time.Time `json:"dueDate"`
	Tags      string     `json:"tags"` // comma-separated multi select
	CreatedAt time.Time  `json:"createdAt"`
}

// taskFields is the field metadata the engine evaluates against.
func taskFields() []formula.FieldDescriptor {
	return []formula.FieldDescriptor{
		{Name: "name", Type: formula.FieldTypeText},
		{Name: "status", Type: formula.FieldTypeSingleSelect},
		{Name: "priority", Type: formula.FieldTypeNumber},
		{Name: "done", Type: formula.FieldTypeCheckbox},
		{Name: "dueDate", Type: formula.FieldTypeDate},
		{Name: "tags", Type: formula.FieldTypeMultiSelect},
	}
}

// row converts a task into the raw value map one evaluation runs against.
func (t Task) row() formula.Row {
	row := formula.Row{
		"name":     t.Name,
		"status":   t.Status,
		"priority": t.Priority,
		"done":     t.Done,
	}
	if t.DueDate != nil {
		row["dueDate"] = *t.DueDate
	}
	if t.Tags != "" {
		row["tags"] = strings.Split(t.Tags, ",")
	}
	return row
}

// sampleTasks seeds the demo table.
func sampleTasks(now time.Time) []Task {
	day := func(offset int) *time.Time {
		t := now.AddDate(0, 0, offset)
		return &t
	}

	return []Task{
		{ID: uuid.NewString(), Name: "Draft quarterly report", Status: "in_progress", Priority: 2, DueDate: day(-1), Tags: "reporting,finance"},
		{ID: uuid.NewString(), Name: "Review pull requests", Status: "todo", Priority: 1, DueDate: day(0), Tags: "engineering"},
		{ID: uuid.NewString(), Name: "Plan team offsite", Status: "todo", Priority: 3, DueDate: day(14)},
		{ID: uuid.NewString(), Name: "Update onboarding docs", Status: "done", Priority: 2, Done: true, DueDate: day(-7), Tags: "docs"},
		{ID: uuid.NewString(), Name: "Fix flaky integration test", Status: "in_progress", Priority: 1, DueDate: day(2), Tags: "engineering,ci"},
		{ID: uuid.NewString(), Name: "Renew SSL certificates", Status: "todo", Priority: 1, DueDate: day(-3), Tags: "ops"},
	}
}
