package reviewer

// scoredResponse is the JSON shape every scoring prompt (completeness,
// security, standards) returns.
type scoredResponse struct {
	Score     float64  `json:"score"`
	Mistakes  []string `json:"mistakes"`
	Reasoning string   `json:"reasoning"`
}

// lintScoreResponse is the JSON shape the lint-scoring prompt returns.
type lintScoreResponse struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}
