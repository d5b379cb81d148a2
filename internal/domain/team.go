package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team owns projects. Users belong to at most one team.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Project groups tasks into a roadmap and belongs to one team.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeamID    uuid.UUID `json:"team_id"`
	TeamName  string    `json:"team_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Roadmap is a project together with its tasks ordered by deadline.
type Roadmap struct {
	Project Project `json:"project"`
	Tasks   []Task  `json:"tasks"`
}

// Dashboard summarizes the progress of one project.
type Dashboard struct {
	ProjectID       uuid.UUID  `json:"project_id"`
	ProjectName     string     `json:"project_name"`
	TeamName        string     `json:"team_name"`
	TaskCount       int        `json:"task_count"`
	DoneCount       int        `json:"done_count"`
	InProgressCount int        `json:"in_progress_count"`
	AverageComplete float64    `json:"average_complete"`
	NextDeadline    *time.Time `json:"next_deadline,omitempty"`
}
