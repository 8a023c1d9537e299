package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

// GenerateSuggestions filters the catalog against a detection, scores
// and gates the candidates, and partitions them by urgency. It never
// errors: a degenerate or unblocked detection yields a (possibly empty)
// result. State is read under one lock so a single call cannot mix pre-
// and post-update config or effectiveness values.
func (e *Engine) GenerateSuggestions(det models.DetectionResult, env models.SuggestionEnvironment) models.GroupedSuggestions {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var grouped models.GroupedSuggestions
	for _, def := range e.selectCandidates(det, env) {
		cfg := e.configs[def.ID]
		if cfg == nil {
			continue
		}

		score := e.scoreCandidate(def, det)
		urgency := e.urgencyFor(def, det)
		canApply, reason := e.applicability(def, cfg)

		suggestion := models.SolutionSuggestion{
			Solution:         def,
			RelevanceScore:   score,
			Urgency:          urgency,
			Config:           copyConfig(cfg),
			IsEnabled:        cfg.Enabled,
			CanApplyNow:      canApply,
			ReasonIfDisabled: reason,
			EstimatedImpact:  impactText(score),
			ApplicationSteps: applicationSteps(def, cfg),
		}

		// First matching group wins; every suggestion lands in exactly one.
		switch {
		case urgency == models.UrgencyImmediate:
			grouped.Immediate = append(grouped.Immediate, suggestion)
		case urgency == models.UrgencyHigh && score >= e.tunables.RecommendedScoreMin:
			grouped.Recommended = append(grouped.Recommended, suggestion)
		case urgency == models.UrgencyMedium || urgency == models.UrgencyHigh:
			grouped.Optional = append(grouped.Optional, suggestion)
		default:
			grouped.Advanced = append(grouped.Advanced, suggestion)
		}
	}

	sortByScore(grouped.Immediate)
	sortByScore(grouped.Recommended)
	sortByScore(grouped.Optional)
	sortByScore(grouped.Advanced)
	return grouped
}

// selectCandidates unions the detection-type index with the platform's
// platform-specific list, deduplicates, and drops entries incompatible
// with the platform or runtime environment.
func (e *Engine) selectCandidates(det models.DetectionResult, env models.SuggestionEnvironment) []models.SolutionDefinition {
	seen := make(map[string]struct{})
	candidates := make([]models.SolutionDefinition, 0)

	consider := func(def models.SolutionDefinition) {
		if _, dup := seen[def.ID]; dup {
			return
		}
		seen[def.ID] = struct{}{}
		if !def.SupportsPlatform(det.Platform) {
			return
		}
		if def.Environment == models.EnvironmentDesktop && !env.IsDesktop {
			return
		}
		if def.Environment == models.EnvironmentWeb && env.IsDesktop {
			return
		}
		candidates = append(candidates, def)
	}

	for _, def := range e.catalog.ByDetectionType(det.DetectionType) {
		consider(def)
	}
	for _, def := range e.catalog.PlatformSolutions(det.Platform) {
		consider(def)
	}
	return candidates
}

// scoreCandidate computes the relevance score in [0,100]. Caller holds
// at least a read lock.
func (e *Engine) scoreCandidate(def models.SolutionDefinition, det models.DetectionResult) int {
	t := e.tunables
	score := def.EstimatedEffectiveness

	switch {
	case det.Confidence <= t.LowConfidenceMax:
		score *= t.LowConfidenceFactor
	case det.Confidence <= t.HighConfidenceMin:
		score *= t.MidConfidenceFactor
	default:
		score *= t.HighConfidenceBoost
	}

	if def.HandlesDetectionType(det.DetectionType) {
		score *= t.TypeMatchBoost
	}

	if w, ok := t.PriorityWeights[def.Priority]; ok {
		score *= w
	}

	key := effKey{solutionID: def.ID, detectionType: det.DetectionType, platform: det.Platform}
	if rec, ok := e.effectiveness[key]; ok && rec.TotalAttempts >= t.BlendMinSamples {
		score = score*t.BlendModelWeight + rec.SuccessRate*t.BlendObservedWeight
	}

	if penalty, ok := t.RiskPenalties[def.RiskLevel]; ok {
		score *= penalty
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// urgencyFor evaluates the ordered urgency rule table top-down; the
// first matching rule decides.
func (e *Engine) urgencyFor(def models.SolutionDefinition, det models.DetectionResult) models.Urgency {
	hardBlock := det.DetectionType == models.DetectionIPBlock || det.DetectionType == models.DetectionCaptcha

	rules := []struct {
		match   bool
		urgency models.Urgency
	}{
		{def.Priority == models.PriorityCritical && det.Confidence > e.tunables.ImmediateConfidenceMin, models.UrgencyImmediate},
		{hardBlock && def.Priority == models.PriorityCritical, models.UrgencyImmediate},
		{hardBlock, models.UrgencyHigh},
		{det.DetectionType == models.DetectionRateLimit && def.Priority == models.PriorityHigh, models.UrgencyHigh},
	}
	for _, rule := range rules {
		if rule.match {
			return rule.urgency
		}
	}

	switch def.Priority {
	case models.PriorityCritical:
		return models.UrgencyHigh
	case models.PriorityHigh, models.PriorityMedium:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

// applicability evaluates the gate conditions in order; the first
// failure supplies the reason. Conflicts gate symmetrically.
func (e *Engine) applicability(def models.SolutionDefinition, cfg *models.SolutionConfig) (bool, string) {
	if !cfg.Enabled {
		return false, "solution is disabled"
	}
	if def.RequiresUserInteraction && !cfg.AutoApply {
		return false, "requires user interaction and auto-apply is off"
	}
	for _, dep := range def.Dependencies {
		if depCfg, ok := e.configs[dep]; ok && !depCfg.Enabled {
			return false, fmt.Sprintf("depends on disabled solution %q", dep)
		}
	}
	for _, other := range e.catalog.ConflictIDs(def.ID) {
		if otherCfg, ok := e.configs[other]; ok && otherCfg.Enabled {
			return false, fmt.Sprintf("conflicts with enabled solution %q", other)
		}
	}
	return true, ""
}

func applicationSteps(def models.SolutionDefinition, cfg *models.SolutionConfig) []string {
	steps := make([]string, 0, 4)
	if !cfg.Enabled {
		steps = append(steps, fmt.Sprintf("Enable %s in the solution settings", def.Name))
	}
	if def.RequiresUserInteraction {
		steps = append(steps, fmt.Sprintf("Complete the manual step for %s", def.Name))
	}
	steps = append(steps, "Apply the configuration change")
	if def.RequiresRestart {
		steps = append(steps, "Restart monitoring for the change to take effect")
	}
	return steps
}

func impactText(score int) string {
	switch {
	case score >= 80:
		return "High impact expected against this block"
	case score >= 50:
		return "Moderate impact expected"
	default:
		return "Low impact expected"
	}
}

func sortByScore(suggestions []models.SolutionSuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].RelevanceScore > suggestions[j].RelevanceScore
	})
}
