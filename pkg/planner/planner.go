// Package planner implements the method-choice, subtask generation, scoring,
// merging and HITL-gated approval stages of the planning subgraph.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/jsonx"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/llm"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/promptlib"
)

const defaultScore = 7.5

// Planner drives the planning subgraph for a single issue.
type Planner struct {
	LLM       llm.Client
	Templates *promptlib.Registry
	Gate      *HITLGate
	Model     string

	ScoreThreshold float64
	HITLTimeout    time.Duration
}

// Plan runs the full planning subgraph: method choice, generation, scoring
// (graph path only), merging, and the HITL gate.
func (p *Planner) Plan(ctx context.Context, issue models.Issue, threadID string) (*Result, error) {
	tokens := 0

	method, methodTokens, err := p.chooseMethod(ctx, issue)
	tokens += methodTokens
	if err != nil {
		return nil, fmt.Errorf("%w: method choice: %v", ErrPlanningFailed, err)
	}

	var subtasks []*models.Subtask
	var overall float64

	switch method {
	case MethodLinear:
		nodes, t, err := p.generateLinear(ctx, issue)
		tokens += t
		if err != nil {
			return nil, fmt.Errorf("%w: linear generation: %v", ErrPlanningFailed, err)
		}
		if len(nodes) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, ErrEmptySubtaskList)
		}
		subtasks = toSubtasks(nodes)
		overall = maxScore(subtasks)
	default:
		graph, t, err := p.generateGraph(ctx, issue)
		tokens += t
		if err != nil {
			return nil, fmt.Errorf("%w: graph generation: %v", ErrPlanningFailed, err)
		}
		if len(graph.Nodes) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, ErrEmptySubtaskList)
		}

		nodes := make([]subtaskNode, 0, len(graph.Nodes))
		for _, id := range graph.SortedIDs() {
			s := graph.Nodes[id]
			nodes = append(nodes, subtaskNode{ID: s.ID, Description: s.Description, Priority: s.Priority, RequirementsCovered: s.RequirementsCovered, Reasoning: s.Reasoning})
		}

		scored, t, err := p.score(ctx, issue, nodes)
		tokens += t
		if err != nil {
			return nil, fmt.Errorf("%w: scoring: %v", ErrPlanningFailed, err)
		}

		merged, t, err := p.merge(ctx, issue, nodes, scored)
		tokens += t
		if err != nil {
			return nil, fmt.Errorf("%w: merging: %v", ErrPlanningFailed, err)
		}
		if len(merged) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, ErrEmptySubtaskList)
		}
		subtasks = merged
		overall = meanScore(subtasks)
	}

	needsHuman := false
	if overall < p.ScoreThreshold {
		decision := p.Gate.Await(ctx, threadID, p.hitlTimeout())
		if decision == HITLReject {
			needsHuman = true
		}
	}

	return &Result{
		Method:     method,
		Subtasks:   subtasks,
		Overall:    overall,
		NeedsHuman: needsHuman,
		Tokens:     tokens,
	}, nil
}

func (p *Planner) hitlTimeout() time.Duration {
	if p.HITLTimeout <= 0 {
		return 30 * time.Second
	}
	return p.HITLTimeout
}

func (p *Planner) chooseMethod(ctx context.Context, issue models.Issue) (Method, int, error) {
	prompt, err := p.Templates.Format("planner_method", map[string]string{
		"issue_key":         issue.Key,
		"issue_title":       issue.Title,
		"issue_description": issue.Description,
	})
	if err != nil {
		return "", 0, err
	}

	text, tokens, err := p.LLM.Call(ctx, prompt, string(models.AgentPlanner), llm.Options{Model: p.Model})
	if err != nil {
		return "", tokens, err
	}

	var choice methodChoice
	if err := jsonx.Extract(text, &choice); err != nil {
		// Ambiguity defaults to graph per spec.md §4.4.
		return MethodGraph, tokens, nil
	}
	if strings.EqualFold(choice.Method, string(MethodLinear)) {
		return MethodLinear, tokens, nil
	}
	return MethodGraph, tokens, nil
}

func (p *Planner) generateLinear(ctx context.Context, issue models.Issue) ([]subtaskNode, int, error) {
	prompt, err := p.Templates.Format("planner_linear", map[string]string{
		"issue_key":         issue.Key,
		"issue_title":       issue.Title,
		"issue_description": issue.Description,
	})
	if err != nil {
		return nil, 0, err
	}

	text, tokens, err := p.LLM.Call(ctx, prompt, string(models.AgentPlanner), llm.Options{Model: p.Model})
	if err != nil {
		return nil, tokens, err
	}

	var nodes []subtaskNode
	if err := jsonx.Extract(text, &nodes); err != nil {
		return nil, tokens, err
	}
	return nodes, tokens, nil
}

func (p *Planner) generateGraph(ctx context.Context, issue models.Issue) (*models.SubtaskGraph, int, error) {
	prompt, err := p.Templates.Format("planner_graph_generate", map[string]string{
		"issue_key":         issue.Key,
		"issue_title":       issue.Title,
		"issue_description": issue.Description,
	})
	if err != nil {
		return nil, 0, err
	}

	text, tokens, err := p.LLM.Call(ctx, prompt, string(models.AgentPlanner), llm.Options{Model: p.Model})
	if err != nil {
		return nil, tokens, err
	}

	var gen graphGeneration
	if err := jsonx.Extract(text, &gen); err != nil {
		// The model may have emitted a bare node array instead of the
		// {"nodes":...,"edges":...} envelope.
		var bare []subtaskNode
		if bareErr := jsonx.Extract(text, &bare); bareErr != nil {
			return nil, tokens, err
		}
		gen.Nodes = bare
	}

	graph := models.NewSubtaskGraph()
	for _, n := range gen.Nodes {
		graph.AddNode(&models.Subtask{
			ID:                  n.ID,
			Description:         n.Description,
			Priority:            n.Priority,
			RequirementsCovered: n.RequirementsCovered,
			Reasoning:           n.Reasoning,
		})
	}
	if len(gen.Edges) > 0 {
		for _, e := range gen.Edges {
			graph.Edges = append(graph.Edges, models.Edge{From: e.From, To: e.To})
		}
	} else {
		graph.Edges = graph.ChainEdges()
	}
	return graph, tokens, nil
}

// score runs the batched scoring call; any subtask missing from the model's
// response defaults to 7.5 with "default" reasoning so scoring never stalls
// the pipeline (spec.md §4.4).
func (p *Planner) score(ctx context.Context, issue models.Issue, nodes []subtaskNode) (map[int]scoredNode, int, error) {
	subtasksJSON, err := json.Marshal(nodes)
	if err != nil {
		return nil, 0, err
	}

	prompt, err := p.Templates.Format("planner_graph_score", map[string]string{
		"issue_key":     issue.Key,
		"subtasks_json": string(subtasksJSON),
	})
	if err != nil {
		return nil, 0, err
	}

	text, tokens, err := p.LLM.Call(ctx, prompt, string(models.AgentPlanner), llm.Options{Model: p.Model})
	if err != nil {
		return nil, tokens, err
	}

	scored := unwrapScored(text)

	result := make(map[int]scoredNode, len(nodes))
	for _, n := range nodes {
		result[n.ID] = scoredNode{ID: n.ID, Score: defaultScore, Reasoning: "default"}
	}
	for _, s := range scored {
		result[s.ID] = s
	}
	return result, tokens, nil
}

// unwrapScored parses the scoring response, unwrapping one level of nesting
// if the model returned a singleton list-of-lists, and discarding anything
// that isn't a scored-node object (spec.md §4.4 edge cases).
func unwrapScored(text string) []scoredNode {
	var direct []scoredNode
	if err := jsonx.Extract(text, &direct); err == nil {
		return direct
	}

	var nested [][]scoredNode
	if err := jsonx.Extract(text, &nested); err == nil && len(nested) == 1 {
		return nested[0]
	}

	var raw []json.RawMessage
	if err := jsonx.Extract(text, &raw); err != nil {
		return nil
	}
	out := make([]scoredNode, 0, len(raw))
	for _, r := range raw {
		var s scoredNode
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func (p *Planner) merge(ctx context.Context, issue models.Issue, nodes []subtaskNode, scored map[int]scoredNode) ([]*models.Subtask, int, error) {
	type scoredPayload struct {
		subtaskNode
		Score     float64 `json:"score"`
		Reasoning string  `json:"reasoning"`
	}
	payload := make([]scoredPayload, 0, len(nodes))
	for _, n := range nodes {
		s := scored[n.ID]
		payload = append(payload, scoredPayload{subtaskNode: n, Score: s.Score, Reasoning: s.Reasoning})
	}
	scoredJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	prompt, err := p.Templates.Format("planner_merge", map[string]string{
		"issue_key":            issue.Key,
		"scored_subtasks_json": string(scoredJSON),
	})
	if err != nil {
		return nil, 0, err
	}

	text, tokens, err := p.LLM.Call(ctx, prompt, string(models.AgentPlanner), llm.Options{Model: p.Model})
	if err != nil {
		return nil, tokens, err
	}

	var merged []mergedSubtask
	if err := jsonx.Extract(text, &merged); err != nil {
		return nil, tokens, err
	}

	globalAvg := 0.0
	if len(scored) > 0 {
		sum := 0.0
		for _, s := range scored {
			sum += s.Score
		}
		globalAvg = sum / float64(len(scored))
	}

	out := make([]*models.Subtask, 0, len(merged))
	for _, m := range merged {
		score := m.Score
		if score == 0 {
			score = averageCoveredScores(m.CoveredSubtasks, scored, nodes, m.Description, globalAvg)
		}
		out = append(out, &models.Subtask{
			ID:                  m.ID,
			Description:         m.Description,
			Priority:            m.Priority,
			RequirementsCovered: m.RequirementsCovered,
			Reasoning:           m.Reasoning,
			Score:               score,
			ScoreReasoning:      "merged",
			CoveredSubtasks:     m.CoveredSubtasks,
		})
	}
	return out, tokens, nil
}

// averageCoveredScores computes the unweighted average of covered source
// scores; falls back to textual match, then to the global average.
func averageCoveredScores(covered []int, scored map[int]scoredNode, nodes []subtaskNode, description string, globalAvg float64) float64 {
	if len(covered) > 0 {
		sum, n := 0.0, 0
		for _, id := range covered {
			if s, ok := scored[id]; ok {
				sum += s.Score
				n++
			}
		}
		if n > 0 {
			return sum / float64(n)
		}
	}
	for _, node := range nodes {
		if strings.EqualFold(strings.TrimSpace(node.Description), strings.TrimSpace(description)) {
			if s, ok := scored[node.ID]; ok {
				return s.Score
			}
		}
	}
	return globalAvg
}

func toSubtasks(nodes []subtaskNode) []*models.Subtask {
	out := make([]*models.Subtask, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &models.Subtask{
			ID:                  n.ID,
			Description:         n.Description,
			Priority:            n.Priority,
			RequirementsCovered: n.RequirementsCovered,
			Reasoning:           n.Reasoning,
		})
	}
	return out
}

func maxScore(subtasks []*models.Subtask) float64 {
	max := 0.0
	for _, s := range subtasks {
		if s.Score > max {
			max = s.Score
		}
	}
	if max == 0 {
		return 10
	}
	return max
}

func meanScore(subtasks []*models.Subtask) float64 {
	if len(subtasks) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range subtasks {
		sum += s.Score
	}
	return sum / float64(len(subtasks))
}
