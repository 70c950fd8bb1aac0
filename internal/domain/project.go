package domain

import (
	"fmt"
	"time"
)

// Project is the scope boundary for cache entries, context chunks, and
// conversation history. Data from one project never crosses into another's
// retrieval or cache lookups.
type Project struct {
	ID              string
	Name            string
	Description     string
	StartDate       *time.Time
	Deadline        *time.Time
	ParentCompany   string
	BusinessPartner string
	Budget          float64
	CurrentProgress float64
	ActualSpend     float64
	CreatedAt       time.Time
}

// NewProject creates a new Project instance
func NewProject(id, name string, createdAt time.Time) *Project {
	return &Project{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// ValidateProject validates a Project instance
func ValidateProject(p *Project) error {
	if p == nil {
		return fmt.Errorf("project cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("project ID is required")
	}

	if p.Name == "" {
		return fmt.Errorf("project Name is required")
	}

	if p.Budget < 0 {
		return fmt.Errorf("project Budget cannot be negative")
	}

	return nil
}
