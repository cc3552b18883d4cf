package apihandlers

import (
	"log/slog"
	"net/http"

	mw "github.com/early-steps/screening-backend/pkg/apihelpers/middlewares"
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
	"github.com/gin-gonic/gin"
)

// Validation endpoints are called by the screening devices during sync, so
// they authenticate with API keys instead of an operator token.
func (h *HttpEndpoints) AddValidationAPI(rg *gin.RouterGroup) {
	validationGroup := rg.Group("/validation")
	validationGroup.Use(mw.HasValidAPIKey(h.apiKeys))
	validationGroup.Use(mw.RequirePayload())
	{
		validationGroup.POST("/child", h.validateChild)
		validationGroup.POST("/session", h.validateSession)
		validationGroup.POST("/trial", h.validateTrial)
	}
}

func (h *HttpEndpoints) validateChild(c *gin.Context) {
	var child clinicalTypes.Child
	if err := c.ShouldBindJSON(&child); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isUpdate := !child.ID.IsZero()
	result := h.validator.ValidateChild(child, isUpdate)
	c.JSON(http.StatusOK, result)
}

func (h *HttpEndpoints) validateSession(c *gin.Context) {
	var session clinicalTypes.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isUpdate := !session.ID.IsZero()
	result := h.validator.ValidateSession(session, isUpdate)
	c.JSON(http.StatusOK, result)
}

func (h *HttpEndpoints) validateTrial(c *gin.Context) {
	var trial clinicalTypes.Trial
	if err := c.ShouldBindJSON(&trial); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.validator.ValidateTrial(trial)
	c.JSON(http.StatusOK, result)
}
