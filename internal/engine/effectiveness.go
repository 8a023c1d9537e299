package engine

import (
	"log/slog"
	"sort"

	"github.com/pricewatch/pricewatch-guard/internal/models"
)

// neutralPrior seeds a fresh effectiveness record at 50 so early
// outcomes pull the rate toward 0 or 100 gradually instead of jumping.
const neutralPrior = 50.0

// UpdateEffectiveness folds one real-world outcome into the record for
// (solution, detectionType, platform), creating it lazily, and mirrors
// the counters into the solution's config so scoring needs no join.
func (e *Engine) UpdateEffectiveness(update models.EffectivenessUpdate) {
	key := effKey{
		solutionID:    update.SolutionID,
		detectionType: update.DetectionType,
		platform:      update.Platform,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.effectiveness[key]
	if !ok {
		rec = &models.SolutionEffectiveness{
			SolutionID:    update.SolutionID,
			DetectionType: update.DetectionType,
			Platform:      update.Platform,
			SuccessRate:   neutralPrior,
			RecentTrend:   models.TrendStable,
		}
		e.effectiveness[key] = rec
	}

	rec.TotalAttempts++
	if update.Success {
		rec.SuccessCount++
	} else {
		rec.FailureCount++
	}

	// The neutral prior counts as one pseudo-observation, so N straight
	// successes move the rate 75, 83, 87... toward 100.
	rec.SuccessRate = (neutralPrior + 100*float64(rec.SuccessCount)) / float64(rec.TotalAttempts+1)

	if update.ResponseTimeMs > 0 {
		// Two-point rolling average: deliberately biased toward the most
		// recent sample regardless of history length.
		if rec.AverageResponseTime == 0 {
			rec.AverageResponseTime = update.ResponseTimeMs
		} else {
			rec.AverageResponseTime = (rec.AverageResponseTime + update.ResponseTimeMs) / 2
		}
	}

	switch {
	case rec.SuccessRate > e.tunables.ImprovingRateMin:
		rec.RecentTrend = models.TrendImproving
	case rec.SuccessRate < e.tunables.DecliningRateMax:
		rec.RecentTrend = models.TrendDeclining
	default:
		rec.RecentTrend = models.TrendStable
	}
	rec.LastUpdated = e.now()

	cfg, ok := e.configs[update.SolutionID]
	if !ok {
		e.logger.Warn("effectiveness update for solution without config",
			slog.String("solution", update.SolutionID))
		return
	}
	if update.Success {
		cfg.SuccessCount++
	} else {
		cfg.FailureCount++
	}
	cfg.Effectiveness = rec.SuccessRate
}

// EffectivenessData returns copies of every record in a stable order.
func (e *Engine) EffectivenessData() []models.SolutionEffectiveness {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.SolutionEffectiveness, 0, len(e.effectiveness))
	for _, rec := range e.effectiveness {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SolutionID != out[j].SolutionID {
			return out[i].SolutionID < out[j].SolutionID
		}
		if out[i].DetectionType != out[j].DetectionType {
			return out[i].DetectionType < out[j].DetectionType
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}
