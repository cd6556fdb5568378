package portfolio

import "time"

type ProjectStatus string

const (
	ProjectPlanned   ProjectStatus = "planned"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	return s == ProjectPlanned || s == ProjectActive || s == ProjectCompleted
}

type Project struct {
	ID                   int64
	Name                 string
	Type                 string
	Description          string
	Priority             int
	Status               ProjectStatus
	CompletionPercentage float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Skill struct {
	ID             int64
	Name           string
	Category       string
	Proficiency    int
	MendixRelevant bool
	Notes          string
	PracticeHours  float64
	LastPracticed  *time.Time
	CreatedAt      time.Time
}
