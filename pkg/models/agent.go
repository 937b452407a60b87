package models

// AgentName is a closed enum of the five pipeline agents plus the
// rebuilder (which is the developer subgraph run in correction mode, but
// keeps its own telemetry sub-total for parity with the other agents).
// Using a named type instead of a raw string avoids a typo silently
// creating a new telemetry bucket.
type AgentName string

const (
	AgentPlanner   AgentName = "planner"
	AgentAssembler AgentName = "assembler"
	AgentDeveloper AgentName = "developer"
	AgentReviewer  AgentName = "reviewer"
	AgentRebuilder AgentName = "rebuilder"
)

// AllAgents lists every agent in canonical order.
func AllAgents() []AgentName {
	return []AgentName{AgentPlanner, AgentAssembler, AgentDeveloper, AgentReviewer, AgentRebuilder}
}

// String returns the underlying string value.
func (a AgentName) String() string { return string(a) }
