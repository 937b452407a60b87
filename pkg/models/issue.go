// Package models holds the pipeline's shared data types: issues, subtasks,
// the deployment document, generated files, project memory, review results,
// per-issue pipeline state, activity events and daily metrics. Types here
// are plain data — the behavior that operates on them lives in the
// planner/assembler/developer/reviewer/orchestrator packages.
package models

import "time"

// Issue is a unit of work read from the external work tracker. It is
// immutable through the pipeline: every node treats it as input data.
type Issue struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	Type        string    `json:"type,omitempty"`
	Components  []string  `json:"components,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
