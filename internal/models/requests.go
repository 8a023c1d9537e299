package models

import "time"

// SuggestionRequest asks the engine to rank remediations for a detection.
type SuggestionRequest struct {
	Detection   DetectionResult
	Environment SuggestionEnvironment
}

// ApplyRequest asks the executor to apply one solution.
type ApplyRequest struct {
	SolutionID string
	Parameters map[string]any
}

// EffectivenessUpdate reports a real-world remediation outcome.
type EffectivenessUpdate struct {
	SolutionID     string
	DetectionType  DetectionType
	Platform       string
	Success        bool
	ResponseTimeMs float64
}

// PlatformStatus is the last observed detection for a platform.
type PlatformStatus struct {
	Platform   string
	Detection  DetectionResult
	ObservedAt time.Time
}
