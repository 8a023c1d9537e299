package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"solutions": s.svc.Catalog().Len(),
	})
}

func (s *Server) handleSuggestions(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grouped := s.svc.Suggest(models.SuggestionRequest{
		Detection:   fromDetectionPayload(req.Detection),
		Environment: models.SuggestionEnvironment{IsDesktop: req.Environment.IsDesktop},
	})
	c.JSON(http.StatusOK, toGroupedPayload(grouped))
}

// handleApply returns 200 with a structured result even when the
// application fails; unknown ids are a failure result, not a 404.
func (s *Server) handleApply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.svc.Apply(c.Request.Context(), models.ApplyRequest{
		SolutionID: c.Param("id"),
		Parameters: req.Parameters,
	})
	c.JSON(http.StatusOK, toApplyResultPayload(result))
}

func (s *Server) handleGetConfig(c *gin.Context) {
	cfg, ok := s.svc.GetConfig(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": utils.ErrUnknownSolution.Error()})
		return
	}
	c.JSON(http.StatusOK, toConfigPayload(cfg))
}

func (s *Server) handlePatchConfig(c *gin.Context) {
	var patch models.SolutionConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := s.svc.UpdateConfig(id, patch); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	cfg, _ := s.svc.GetConfig(id)
	c.JSON(http.StatusOK, toConfigPayload(cfg))
}

func (s *Server) handleReportEffectiveness(c *gin.Context) {
	var req effectivenessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.svc.ReportOutcome(models.EffectivenessUpdate{
		SolutionID:     req.SolutionID,
		DetectionType:  models.DetectionType(req.DetectionType),
		Platform:       req.Platform,
		Success:        req.Success,
		ResponseTimeMs: req.ResponseTimeMs,
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

func (s *Server) handleListEffectiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"effectiveness": s.svc.EffectivenessData()})
}

func (s *Server) handlePlatformStatus(c *gin.Context) {
	platform := c.Param("platform")
	status, ok := s.svc.PlatformStatus(platform)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no observations for platform " + platform})
		return
	}
	c.JSON(http.StatusOK, statusPayload{
		Platform:   status.Platform,
		Detection:  toDetectionPayload(status.Detection),
		ObservedAt: utils.ToMillis(status.ObservedAt),
	})
}

func (s *Server) handleCheckTarget(c *gin.Context) {
	var target models.Target
	if err := c.ShouldBindJSON(&target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if target.Platform == "" || target.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform and url are required"})
		return
	}

	outcome := s.svc.CheckTarget(c.Request.Context(), target)
	c.JSON(http.StatusOK, toWatchOutcomePayload(outcome))
}
