package qualityscore

import "testing"

func TestScorePerfect(t *testing.T) {
	m := Measures{
		SqaleRating: 1, ReliabilityRating: 1, SecurityRating: 1,
		Gate: GateOK, Coverage: 100,
	}
	got := Score(m)
	if got != 100 {
		t.Fatalf("expected perfect score 100, got %v", got)
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	m := Measures{
		SqaleRating: 5, ReliabilityRating: 5, SecurityRating: 5,
		Gate: GateError, Coverage: 0,
		Bugs: 100, Vulnerabilities: 100,
	}
	got := Score(m)
	if got != 0 {
		t.Fatalf("expected clamped score 0, got %v", got)
	}
}

func TestScorePenaltyCap(t *testing.T) {
	m := Measures{
		SqaleRating: 1, ReliabilityRating: 1, SecurityRating: 1,
		Gate: GateOK, Coverage: 100,
		Bugs: 1000, // penalty would far exceed 50 without the cap
	}
	got := Score(m)
	// ratingMean=100 -> 0.5*100=50; gate 0.3*100=30; coverage 0.2*100=20; total 100
	// penalty capped at 50 -> 100-50=50
	if got != 50 {
		t.Fatalf("expected penalty-capped score 50, got %v", got)
	}
}

func TestScoreRoundedToOneDecimal(t *testing.T) {
	m := Measures{
		SqaleRating: 2, ReliabilityRating: 3, SecurityRating: 1,
		Gate: GateWarn, Coverage: 83.33,
	}
	got := Score(m)
	// just assert it's rounded to at most 1 decimal
	scaled := got * 10
	if scaled != float64(int64(scaled)) {
		t.Fatalf("expected score rounded to 1 decimal, got %v", got)
	}
}
