package planner

import "github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"

// Method is the planner's linear-vs-graph classification.
type Method string

const (
	MethodLinear Method = "linear"
	MethodGraph  Method = "graph"
)

type methodChoice struct {
	Method    string `json:"method"`
	Reasoning string `json:"reasoning"`
}

type subtaskNode struct {
	ID                  int    `json:"id"`
	Description         string `json:"description"`
	Priority            int    `json:"priority"`
	RequirementsCovered []int  `json:"requirements_covered"`
	Reasoning           string `json:"reasoning"`
}

type edgeSpec struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type graphGeneration struct {
	Nodes []subtaskNode `json:"nodes"`
	Edges []edgeSpec    `json:"edges"`
}

type scoredNode struct {
	ID                  int     `json:"id"`
	Score               float64 `json:"score"`
	Reasoning           string  `json:"reasoning"`
	RequirementsCovered []int   `json:"requirements_covered"`
}

type mergedSubtask struct {
	ID                  int     `json:"id"`
	Description         string  `json:"description"`
	Priority            int     `json:"priority"`
	RequirementsCovered []int   `json:"requirements_covered"`
	Reasoning           string  `json:"reasoning"`
	CoveredSubtasks     []int   `json:"covered_subtasks"`
	Score               float64 `json:"score,omitempty"`
}

// Result is what the planner subgraph hands to the orchestrator.
type Result struct {
	Method     Method
	Subtasks   []*models.Subtask
	Overall    float64
	NeedsHuman bool
	Tokens     int
}
