package reviewer

import "errors"

// ErrAllDimensionsFailed is returned when completeness, security, and
// standards all fail to produce a usable score (spec.md §4.7 fail-soft
// policy: a single dimension failure degrades, but all three failing is a
// hard review failure).
var ErrAllDimensionsFailed = errors.New("reviewer: completeness, security and standards all failed")
