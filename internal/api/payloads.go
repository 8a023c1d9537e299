package api

import (
	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

// Detection timestamps travel as epoch milliseconds on the wire.
type detectionPayload struct {
	IsBlocked       bool              `json:"isBlocked"`
	DetectionType   string            `json:"detectionType"`
	Confidence      float64           `json:"confidence"`
	Platform        string            `json:"platform"`
	ResponseCode    int               `json:"responseCode,omitempty"`
	ResponseTimeMs  int64             `json:"responseTimeMs,omitempty"`
	Timestamp       int64             `json:"timestamp,omitempty"`
	SuggestedAction string            `json:"suggestedAction,omitempty"`
	Details         map[string]string `json:"details,omitempty"`
}

func toDetectionPayload(det models.DetectionResult) detectionPayload {
	p := detectionPayload{
		IsBlocked:       det.IsBlocked,
		DetectionType:   string(det.DetectionType),
		Confidence:      det.Confidence,
		Platform:        det.Platform,
		ResponseCode:    det.ResponseCode,
		ResponseTimeMs:  det.ResponseTime.Milliseconds(),
		SuggestedAction: det.SuggestedAction,
		Details:         det.Details,
	}
	if !det.Timestamp.IsZero() {
		p.Timestamp = utils.ToMillis(det.Timestamp)
	}
	return p
}

func fromDetectionPayload(p detectionPayload) models.DetectionResult {
	det := models.DetectionResult{
		IsBlocked:       p.IsBlocked,
		DetectionType:   models.DetectionType(p.DetectionType),
		Confidence:      p.Confidence,
		Platform:        p.Platform,
		ResponseCode:    p.ResponseCode,
		SuggestedAction: p.SuggestedAction,
		Details:         p.Details,
	}
	if p.Timestamp != 0 {
		det.Timestamp = utils.FromMillis(p.Timestamp)
	}
	return det
}

type suggestionRequest struct {
	Detection   detectionPayload `json:"detection" binding:"required"`
	Environment struct {
		IsDesktop bool `json:"isDesktop"`
	} `json:"environment"`
}

type suggestionPayload struct {
	SolutionID       string         `json:"solutionId"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Category         string         `json:"category"`
	Priority         string         `json:"priority"`
	RelevanceScore   int            `json:"relevanceScore"`
	Urgency          string         `json:"urgency"`
	IsEnabled        bool           `json:"isEnabled"`
	CanApplyNow      bool           `json:"canApplyNow"`
	ReasonIfDisabled string         `json:"reasonIfDisabled,omitempty"`
	EstimatedImpact  string         `json:"estimatedImpact"`
	ApplicationSteps []string       `json:"applicationSteps,omitempty"`
	CanAutoApply     bool           `json:"canAutoApply"`
	RiskLevel        string         `json:"riskLevel"`
	Parameters       map[string]any `json:"parameters,omitempty"`
}

func toSuggestionPayloads(in []models.SolutionSuggestion) []suggestionPayload {
	out := make([]suggestionPayload, 0, len(in))
	for _, s := range in {
		out = append(out, suggestionPayload{
			SolutionID:       s.Solution.ID,
			Name:             s.Solution.Name,
			Description:      s.Solution.Description,
			Category:         s.Solution.Category,
			Priority:         string(s.Solution.Priority),
			RelevanceScore:   s.RelevanceScore,
			Urgency:          string(s.Urgency),
			IsEnabled:        s.IsEnabled,
			CanApplyNow:      s.CanApplyNow,
			ReasonIfDisabled: s.ReasonIfDisabled,
			EstimatedImpact:  s.EstimatedImpact,
			ApplicationSteps: s.ApplicationSteps,
			CanAutoApply:     s.Solution.CanAutoApply,
			RiskLevel:        string(s.Solution.RiskLevel),
			Parameters:       s.Config.Parameters,
		})
	}
	return out
}

type groupedPayload struct {
	Immediate   []suggestionPayload `json:"immediate"`
	Recommended []suggestionPayload `json:"recommended"`
	Optional    []suggestionPayload `json:"optional"`
	Advanced    []suggestionPayload `json:"advanced"`
	Total       int                 `json:"total"`
}

func toGroupedPayload(g models.GroupedSuggestions) groupedPayload {
	return groupedPayload{
		Immediate:   toSuggestionPayloads(g.Immediate),
		Recommended: toSuggestionPayloads(g.Recommended),
		Optional:    toSuggestionPayloads(g.Optional),
		Advanced:    toSuggestionPayloads(g.Advanced),
		Total:       g.Total(),
	}
}

type applyRequest struct {
	Parameters map[string]any `json:"parameters"`
}

type applyResultPayload struct {
	ApplicationID     string         `json:"applicationId"`
	SolutionID        string         `json:"solutionId"`
	Success           bool           `json:"success"`
	Message           string         `json:"message"`
	AppliedAt         int64          `json:"appliedAt"`
	Parameters        map[string]any `json:"parameters,omitempty"`
	Error             string         `json:"error,omitempty"`
	RollbackAvailable bool           `json:"rollbackAvailable"`
}

func toApplyResultPayload(r models.SolutionApplicationResult) applyResultPayload {
	return applyResultPayload{
		ApplicationID:     r.ApplicationID,
		SolutionID:        r.SolutionID,
		Success:           r.Success,
		Message:           r.Message,
		AppliedAt:         utils.ToMillis(r.AppliedAt),
		Parameters:        r.Parameters,
		Error:             r.Error,
		RollbackAvailable: r.RollbackAvailable,
	}
}

type effectivenessRequest struct {
	SolutionID     string  `json:"solutionId" binding:"required"`
	DetectionType  string  `json:"detectionType" binding:"required"`
	Platform       string  `json:"platform" binding:"required"`
	Success        bool    `json:"success"`
	ResponseTimeMs float64 `json:"responseTimeMs"`
}

type configPayload struct {
	SolutionID    string         `json:"solutionId"`
	Enabled       bool           `json:"enabled"`
	AutoApply     bool           `json:"autoApply"`
	Parameters    map[string]any `json:"parameters"`
	LastApplied   int64          `json:"lastApplied,omitempty"`
	SuccessCount  int            `json:"successCount"`
	FailureCount  int            `json:"failureCount"`
	Effectiveness float64        `json:"effectiveness"`
}

func toConfigPayload(cfg models.SolutionConfig) configPayload {
	p := configPayload{
		SolutionID:    cfg.SolutionID,
		Enabled:       cfg.Enabled,
		AutoApply:     cfg.AutoApply,
		Parameters:    cfg.Parameters,
		SuccessCount:  cfg.SuccessCount,
		FailureCount:  cfg.FailureCount,
		Effectiveness: cfg.Effectiveness,
	}
	if !cfg.LastApplied.IsZero() {
		p.LastApplied = utils.ToMillis(cfg.LastApplied)
	}
	return p
}

type statusPayload struct {
	Platform   string           `json:"platform"`
	Detection  detectionPayload `json:"detection"`
	ObservedAt int64            `json:"observedAt"`
}

type watchOutcomePayload struct {
	WatchID         string           `json:"watchId"`
	State           string           `json:"state"`
	Detection       detectionPayload `json:"detection"`
	Payload         string           `json:"payload,omitempty"`
	Attempts        int              `json:"attempts"`
	NetworkFailures int              `json:"networkFailures,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func toWatchOutcomePayload(o models.WatchOutcome) watchOutcomePayload {
	p := watchOutcomePayload{
		WatchID:         o.WatchID,
		State:           string(o.State),
		Detection:       toDetectionPayload(o.Detection),
		Payload:         o.Payload,
		Attempts:        o.Attempts,
		NetworkFailures: o.NetworkFailures,
	}
	if o.Err != nil {
		p.Error = o.Err.Error()
	}
	return p
}
