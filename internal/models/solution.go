package models

import "time"

// Priority captures how strongly the catalog recommends a solution.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// RiskLevel captures the operational risk of applying a solution.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Complexity captures implementation effort for a solution.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Urgency ranks how soon a suggestion should be acted on.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyImmediate Urgency = "immediate"
)

// Environment restricts a solution to one runtime surface.
type Environment string

const (
	EnvironmentAny     Environment = ""
	EnvironmentDesktop Environment = "desktop"
	EnvironmentWeb     Environment = "web"
)

// PlatformAny marks a solution as applicable to every monitored platform.
const PlatformAny = "both"

// SolutionDefinition is an immutable catalog entry describing one
// countermeasure. Entries are validated once at load.
type SolutionDefinition struct {
	ID                       string          `yaml:"id" validate:"required"`
	Name                     string          `yaml:"name" validate:"required"`
	Description              string          `yaml:"description"`
	Category                 string          `yaml:"category" validate:"required"`
	Priority                 Priority        `yaml:"priority" validate:"required,oneof=low medium high critical"`
	DetectionTypes           []DetectionType `yaml:"detectionTypes"`
	RequiresUserInteraction  bool            `yaml:"requiresUserInteraction"`
	CanAutoApply             bool            `yaml:"canAutoApply"`
	EstimatedEffectiveness   float64         `yaml:"estimatedEffectiveness" validate:"gte=0,lte=100"`
	ImplementationComplexity Complexity      `yaml:"implementationComplexity" validate:"required,oneof=simple moderate complex"`
	RequiresRestart          bool            `yaml:"requiresRestart"`
	RiskLevel                RiskLevel       `yaml:"riskLevel" validate:"required,oneof=low medium high"`
	Dependencies             []string        `yaml:"dependencies"`
	Conflicts                []string        `yaml:"conflicts"`
	Platforms                []string        `yaml:"platforms" validate:"min=1"`
	Environment              Environment     `yaml:"environment" validate:"omitempty,oneof=desktop web"`
}

// HandlesDetectionType reports whether the definition targets the given type.
func (d SolutionDefinition) HandlesDetectionType(t DetectionType) bool {
	for _, dt := range d.DetectionTypes {
		if dt == t {
			return true
		}
	}
	return false
}

// SupportsPlatform reports whether the definition applies to the platform.
func (d SolutionDefinition) SupportsPlatform(platform string) bool {
	for _, p := range d.Platforms {
		if p == PlatformAny || p == platform {
			return true
		}
	}
	return false
}

// SolutionConfig holds the mutable per-solution user settings for one
// process session. Persistence of overrides is an external concern.
type SolutionConfig struct {
	SolutionID    string         `json:"solutionId"`
	Enabled       bool           `json:"enabled"`
	AutoApply     bool           `json:"autoApply"`
	Parameters    map[string]any `json:"parameters"`
	LastApplied   time.Time      `json:"lastApplied,omitzero"`
	SuccessCount  int            `json:"successCount"`
	FailureCount  int            `json:"failureCount"`
	Effectiveness float64        `json:"effectiveness"`
}

// SolutionConfigPatch is a partial configuration update. Nil fields are
// left untouched; Parameters are shallow-merged over the existing map.
type SolutionConfigPatch struct {
	Enabled    *bool          `json:"enabled,omitempty"`
	AutoApply  *bool          `json:"autoApply,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// SolutionSuggestion is a catalog entry scored and annotated against one
// detection. Ephemeral, produced per suggestion call.
type SolutionSuggestion struct {
	Solution         SolutionDefinition
	RelevanceScore   int
	Urgency          Urgency
	Config           SolutionConfig
	IsEnabled        bool
	CanApplyNow      bool
	ReasonIfDisabled string
	EstimatedImpact  string
	ApplicationSteps []string
}

// GroupedSuggestions partitions suggestions by urgency bucket. Every
// suggestion belongs to exactly one group.
type GroupedSuggestions struct {
	Immediate   []SolutionSuggestion
	Recommended []SolutionSuggestion
	Optional    []SolutionSuggestion
	Advanced    []SolutionSuggestion
}

// Total returns the number of suggestions across all groups.
func (g GroupedSuggestions) Total() int {
	return len(g.Immediate) + len(g.Recommended) + len(g.Optional) + len(g.Advanced)
}

// SuggestionEnvironment describes the runtime surface asking for suggestions.
type SuggestionEnvironment struct {
	IsDesktop bool
}

// SolutionApplicationResult reports one application attempt.
type SolutionApplicationResult struct {
	ApplicationID     string
	SolutionID        string
	Success           bool
	Message           string
	AppliedAt         time.Time
	Parameters        map[string]any
	Error             string
	RollbackAvailable bool
}

// Trend summarises the recent direction of a success rate.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// SolutionEffectiveness accumulates real-world outcomes for a
// (solution, detection type, platform) triple. Created lazily with the
// success rate seeded at a neutral 50, never removed within a session.
type SolutionEffectiveness struct {
	SolutionID          string        `json:"solutionId"`
	DetectionType       DetectionType `json:"detectionType"`
	Platform            string        `json:"platform"`
	SuccessCount        int           `json:"successCount"`
	FailureCount        int           `json:"failureCount"`
	TotalAttempts       int           `json:"totalAttempts"`
	SuccessRate         float64       `json:"successRate"`
	LastUpdated         time.Time     `json:"lastUpdated"`
	AverageResponseTime float64       `json:"averageResponseTime,omitempty"`
	RecentTrend         Trend         `json:"recentTrend"`
}
