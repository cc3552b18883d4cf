package apihandlers

import (
	"log/slog"
	"net/http"

	mw "github.com/early-steps/screening-backend/pkg/apihelpers/middlewares"
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *HttpEndpoints) AddRecordsAPI(rg *gin.RouterGroup) {
	recordsGroup := rg.Group("/records")
	recordsGroup.Use(mw.OperatorAuthMiddleware(h.tokenSignKey))
	{
		recordsGroup.POST("/children", mw.RequirePayload(), h.createChild)
		recordsGroup.PUT("/children/:childID", mw.RequirePayload(), h.updateChild)
		recordsGroup.DELETE("/children/:childID", h.deleteChild)

		recordsGroup.POST("/sessions", mw.RequirePayload(), h.createSession)
		recordsGroup.PUT("/sessions/:sessionID", mw.RequirePayload(), h.updateSession)
		recordsGroup.DELETE("/sessions/:sessionID", h.deleteSessionWithTrials)

		recordsGroup.POST("/trials", mw.RequirePayload(), h.createTrial)
		recordsGroup.DELETE("/trials/:trialID", h.deleteTrial)
	}
}

// rejectOnValidationErrors ends the request with the first validation error.
// Returns true when the request was rejected.
func rejectOnValidationErrors(c *gin.Context, result clinicalTypes.ValidationResult) bool {
	if result.Valid {
		return false
	}
	slog.Warn("record rejected by validation", slog.String("error", result.Errors[0]), slog.String("path", c.Request.URL.Path))
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      result.Errors[0],
		"validation": result,
	})
	return true
}

func (h *HttpEndpoints) createChild(c *gin.Context) {
	var child clinicalTypes.Child
	if err := c.ShouldBindJSON(&child); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.validator.ValidateChild(child, false)
	if rejectOnValidationErrors(c, result) {
		return
	}

	saved, err := h.clinicalDBConn.AddChild(child)
	if err != nil {
		slog.Error("failed to save child", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save child"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"child": saved, "warnings": result.Warnings})
}

func (h *HttpEndpoints) updateChild(c *gin.Context) {
	childID := c.Param("childID")

	var child clinicalTypes.Child
	if err := c.ShouldBindJSON(&child); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_id, err := primitive.ObjectIDFromHex(childID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid child id"})
		return
	}
	child.ID = _id

	result := h.validator.ValidateChild(child, true)
	if rejectOnValidationErrors(c, result) {
		return
	}

	saved, err := h.clinicalDBConn.ReplaceChild(child)
	if err != nil {
		slog.Error("failed to update child", slog.String("childID", childID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update child"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"child": saved, "warnings": result.Warnings})
}

func (h *HttpEndpoints) deleteChild(c *gin.Context) {
	childID := c.Param("childID")

	if err := h.clinicalDBConn.DeleteChild(childID); err != nil {
		slog.Error("failed to delete child", slog.String("childID", childID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete child"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "child deleted"})
}

func (h *HttpEndpoints) createSession(c *gin.Context) {
	var session clinicalTypes.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session.SessionType = clinicalTypes.NormalizeSessionType(session.SessionType)

	result := h.validator.ValidateSession(session, false)
	if rejectOnValidationErrors(c, result) {
		return
	}

	saved, err := h.clinicalDBConn.AddSession(session)
	if err != nil {
		slog.Error("failed to save session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": saved, "warnings": result.Warnings})
}

func (h *HttpEndpoints) updateSession(c *gin.Context) {
	sessionID := c.Param("sessionID")

	var session clinicalTypes.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	session.ID = _id
	session.SessionType = clinicalTypes.NormalizeSessionType(session.SessionType)

	result := h.validator.ValidateSession(session, true)
	if rejectOnValidationErrors(c, result) {
		return
	}

	saved, err := h.clinicalDBConn.ReplaceSession(session)
	if err != nil {
		slog.Error("failed to update session", slog.String("sessionID", sessionID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": saved, "warnings": result.Warnings})
}

// deleteSessionWithTrials takes a safety backup first, then removes the
// session together with its trials.
func (h *HttpEndpoints) deleteSessionWithTrials(c *gin.Context) {
	sessionID := c.Param("sessionID")

	preOp := h.backupEngine.CreatePreOperationBackup(c.Request.Context(), "session_delete")
	if !preOp.Success {
		slog.Error("pre-operation backup failed, aborting session delete", slog.String("sessionID", sessionID), slog.String("error", preOp.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pre-operation backup failed"})
		return
	}

	deletedTrials, err := h.clinicalDBConn.DeleteSessionWithTrials(sessionID)
	if err != nil {
		slog.Error("failed to delete session", slog.String("sessionID", sessionID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}

	slog.Info("session deleted", slog.String("sessionID", sessionID), slog.Int64("deletedTrials", deletedTrials), slog.String("preOpBackupID", preOp.BackupID))
	c.JSON(http.StatusOK, gin.H{
		"message":       "session deleted",
		"deletedTrials": deletedTrials,
		"backupID":      preOp.BackupID,
	})
}

func (h *HttpEndpoints) createTrial(c *gin.Context) {
	var trial clinicalTypes.Trial
	if err := c.ShouldBindJSON(&trial); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.validator.ValidateTrial(trial)
	if rejectOnValidationErrors(c, result) {
		return
	}

	saved, err := h.clinicalDBConn.AddTrial(trial)
	if err != nil {
		slog.Error("failed to save trial", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save trial"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trial": saved, "warnings": result.Warnings})
}

func (h *HttpEndpoints) deleteTrial(c *gin.Context) {
	trialID := c.Param("trialID")

	if err := h.clinicalDBConn.DeleteTrial(trialID); err != nil {
		slog.Error("failed to delete trial", slog.String("trialID", trialID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete trial"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trial deleted"})
}
