package engine

import (
	"time"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

// Tunables collects the scoring and trend heuristics as named,
// overridable values. Defaults carry the constants inherited from the
// original tuning.
type Tunables struct {
	// Confidence buckets for the score multiplier.
	LowConfidenceMax    float64
	HighConfidenceMin   float64
	LowConfidenceFactor float64
	MidConfidenceFactor float64
	HighConfidenceBoost float64

	// TypeMatchBoost applies when a solution lists the detected type.
	TypeMatchBoost float64

	PriorityWeights map[models.Priority]float64
	RiskPenalties   map[models.RiskLevel]float64

	// Observed-outcome blending kicks in once a key has enough samples.
	BlendMinSamples     int
	BlendModelWeight    float64
	BlendObservedWeight float64

	// RecommendedScoreMin separates recommended from optional for
	// high-urgency suggestions.
	RecommendedScoreMin int

	// ImmediateConfidenceMin gates the critical-priority immediate rule.
	ImmediateConfidenceMin float64

	// Trend thresholds on the success rate.
	ImprovingRateMin float64
	DecliningRateMax float64

	// Simulated application latency per implementation complexity.
	ApplyLatencies map[models.Complexity]time.Duration
}

// DefaultTunables returns the stock heuristic values.
func DefaultTunables() Tunables {
	return Tunables{
		LowConfidenceMax:    0.3,
		HighConfidenceMin:   0.7,
		LowConfidenceFactor: 0.7,
		MidConfidenceFactor: 1.0,
		HighConfidenceBoost: 1.3,
		TypeMatchBoost:      1.2,
		PriorityWeights: map[models.Priority]float64{
			models.PriorityLow:      0.8,
			models.PriorityMedium:   1.0,
			models.PriorityHigh:     1.3,
			models.PriorityCritical: 1.5,
		},
		RiskPenalties: map[models.RiskLevel]float64{
			models.RiskLow:    1.0,
			models.RiskMedium: 0.95,
			models.RiskHigh:   0.9,
		},
		BlendMinSamples:        6,
		BlendModelWeight:       0.3,
		BlendObservedWeight:    0.7,
		RecommendedScoreMin:    70,
		ImmediateConfidenceMin: 0.8,
		ImprovingRateMin:       70,
		DecliningRateMax:       30,
		ApplyLatencies: map[models.Complexity]time.Duration{
			models.ComplexitySimple:   120 * time.Millisecond,
			models.ComplexityModerate: 350 * time.Millisecond,
			models.ComplexityComplex:  900 * time.Millisecond,
		},
	}
}
