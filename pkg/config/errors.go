package config

import "errors"

// Sentinel load/validation errors, matching the teacher's config package style.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidYAML    = errors.New("invalid YAML")
)

// LoadError wraps a failure to load a specific config file.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string { return "load " + e.File + ": " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError constructs a LoadError.
func NewLoadError(file string, err error) *LoadError {
	return &LoadError{File: file, Err: err}
}
