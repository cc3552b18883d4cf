package apihandlers

import (
	"log/slog"
	"net/http"

	mw "github.com/early-steps/screening-backend/pkg/apihelpers/middlewares"
	"github.com/early-steps/screening-backend/pkg/backup"
	"github.com/early-steps/screening-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddBackupAPI(rg *gin.RouterGroup) {
	backupGroup := rg.Group("/backup")
	backupGroup.Use(mw.OperatorAuthMiddleware(h.tokenSignKey))
	backupGroup.Use(h.requireBackupCapability())
	{
		backupGroup.POST("/create", h.createBackup)
		backupGroup.POST("/restore", mw.RequirePayload(), h.restoreBackup)
		backupGroup.POST("/rollback", h.rollbackToLatestBackup)
		backupGroup.GET("/list", h.listBackups)
		backupGroup.DELETE("/:backupID", h.deleteBackup)
	}
}

// requireBackupCapability rejects backup operations while the engine cannot
// reach both the document store and the artifact store.
func (h *HttpEndpoints) requireBackupCapability() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.backupEngine.Health(c.Request.Context()); err != nil {
			slog.Warn("backup engine unavailable", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "backup service unavailable"})
			return
		}
		c.Next()
	}
}

type CreateBackupRequest struct {
	Name string `json:"name"`
}

func (h *HttpEndpoints) createBackup(c *gin.Context) {
	var req CreateBackupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Error("failed to bind request", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result := h.backupEngine.CreateBackup(c.Request.Context(), req.Name)
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

type RestoreBackupRequest struct {
	BackupID    string   `json:"backupID"`
	DryRun      bool     `json:"dryRun"`
	Collections []string `json:"collections"`
}

func (h *HttpEndpoints) restoreBackup(c *gin.Context) {
	var req RestoreBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.IsURLSafe(req.BackupID) {
		slog.Error("invalid backup ID", slog.String("backupID", req.BackupID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup ID"})
		return
	}

	result := h.backupEngine.RestoreBackup(c.Request.Context(), req.BackupID, backup.RestoreOptions{
		DryRun:      req.DryRun,
		Collections: req.Collections,
	})
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HttpEndpoints) rollbackToLatestBackup(c *gin.Context) {
	result := h.backupEngine.Rollback(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HttpEndpoints) listBackups(c *gin.Context) {
	backups, err := h.backupEngine.ListBackups(c.Request.Context())
	if err != nil {
		slog.Error("failed to list backups", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list backups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": backups})
}

func (h *HttpEndpoints) deleteBackup(c *gin.Context) {
	backupID := c.Param("backupID")
	if !utils.IsURLSafe(backupID) {
		slog.Error("invalid backup ID", slog.String("backupID", backupID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup ID"})
		return
	}

	if err := h.backupEngine.DeleteBackup(c.Request.Context(), backupID); err != nil {
		slog.Error("failed to delete backup", slog.String("backupID", backupID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete backup"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backup deleted"})
}
