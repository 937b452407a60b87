// Package qualityscore implements the fixed 0-100 code-quality scoring
// formula from spec.md §6, used by the orchestrator's quality-scan node.
package qualityscore

import "math"

// GateStatus is the code-quality service's overall gate verdict.
type GateStatus string

const (
	GateOK    GateStatus = "OK"
	GateWarn  GateStatus = "WARN"
	GateError GateStatus = "ERROR"
)

// Measures is the subset of SonarQube-shaped metrics the formula consumes.
// Ratings (Sqale, Reliability, Security) are 1..5 (1=best), converted via
// (6-r)*20 inside the formula. Bugs/Vulnerabilities/CodeSmells/
// SecurityHotspots are raw counts.
type Measures struct {
	SqaleRating            float64
	ReliabilityRating      float64
	SecurityRating         float64
	Gate                   GateStatus
	Coverage               float64
	DuplicatedLinesDensity float64
	Bugs                   float64
	Vulnerabilities        float64
	CodeSmells             float64
	SecurityHotspots       float64
}

func gateScore(g GateStatus) float64 {
	switch g {
	case GateOK:
		return 100
	case GateWarn:
		return 70
	default:
		return 0
	}
}

func ratingScore(r float64) float64 { return (6 - r) * 20 }

// Score computes the fixed formula from spec.md §6:
//
//	0.5*mean(sqale, reliability, security-as-(6-r)*20)
//	+ 0.3*gate_score(OK=100, WARN=70, ERROR=0)
//	+ 0.2*min(100, coverage)
//	- penalty
//	- min(20, duplicated_lines_density)
//
// where penalty = min(50, 10*bugs + 15*vulnerabilities + 2*code_smells + 5*security_hotspots),
// clamped to [0,100] and rounded to 1 decimal place.
func Score(m Measures) float64 {
	ratingMean := (ratingScore(m.SqaleRating) + ratingScore(m.ReliabilityRating) + ratingScore(m.SecurityRating)) / 3
	coverageTerm := math.Min(100, m.Coverage)
	penalty := math.Min(50, 10*m.Bugs+15*m.Vulnerabilities+2*m.CodeSmells+5*m.SecurityHotspots)
	dupPenalty := math.Min(20, m.DuplicatedLinesDensity)

	raw := 0.5*ratingMean + 0.3*gateScore(m.Gate) + 0.2*coverageTerm - penalty - dupPenalty
	clamped := math.Max(0, math.Min(100, raw))
	return math.Round(clamped*10) / 10
}
