package models

import (
	"errors"
	"fmt"
)

// ErrorCode is the closed taxonomy of node-level failures from spec.md §7.
type ErrorCode string

const (
	ErrCodeTrackerUnavailable        ErrorCode = "TrackerUnavailable"
	ErrCodeRepoUnavailable           ErrorCode = "RepoUnavailable"
	ErrCodeQualityServiceUnavailable ErrorCode = "QualityServiceUnavailable"
	ErrCodeLLMUnavailable            ErrorCode = "LLMUnavailable"
	ErrCodeMalformedModelOutput      ErrorCode = "MalformedModelOutput"
	ErrCodePlanningFailed            ErrorCode = "PlanningFailed"
	ErrCodeAssemblyFailed            ErrorCode = "AssemblyFailed"
	ErrCodeGenerationFailed          ErrorCode = "GenerationFailed"
	ErrCodeReviewFailed              ErrorCode = "ReviewFailed"
	ErrCodeRebuildExhausted          ErrorCode = "RebuildExhausted"
	ErrCodeHumanRejected             ErrorCode = "HumanRejected"
	ErrCodeCancelled                 ErrorCode = "Cancelled"
)

// PipelineError carries a taxonomy code, the failing node's name, and the
// wrapped cause, so orchestrator routing predicates can errors.As against
// both the code and the original error without string-matching.
type PipelineError struct {
	Code ErrorCode
	Node string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s in %s: %v", e.Code, e.Node, e.Err)
	}
	return fmt.Sprintf("%s in %s", e.Code, e.Node)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *PipelineError) Unwrap() error { return e.Err }

// NewPipelineError constructs a PipelineError.
func NewPipelineError(code ErrorCode, node string, cause error) *PipelineError {
	return &PipelineError{Code: code, Node: node, Err: cause}
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) a
// *PipelineError; returns "" otherwise.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Sentinel errors for conditions not tied to a specific pipeline node.
var (
	ErrEmptyFileStructure = errors.New("file_structure.files must be non-empty")
	ErrEmptySubtaskList   = errors.New("planner produced an empty subtask list")
)
