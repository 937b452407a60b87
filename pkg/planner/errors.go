package planner

import "errors"

// ErrPlanningFailed is returned whenever any planning step cannot produce a
// usable result, matching the teacher's single-sentinel-per-subgraph idiom.
var ErrPlanningFailed = errors.New("PlanningFailed")

// ErrEmptySubtaskList guards the "subtask list must be non-empty" invariant.
var ErrEmptySubtaskList = errors.New("planner produced an empty subtask list")
