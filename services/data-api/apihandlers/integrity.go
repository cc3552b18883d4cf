package apihandlers

import (
	"net/http"

	mw "github.com/early-steps/screening-backend/pkg/apihelpers/middlewares"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddIntegrityAPI(rg *gin.RouterGroup) {
	integrityGroup := rg.Group("/integrity")
	integrityGroup.Use(mw.OperatorAuthMiddleware(h.tokenSignKey))
	{
		integrityGroup.GET("/check", h.runAllIntegrityChecks)
		integrityGroup.GET("/orphaned-sessions", h.checkOrphanedSessions)
		integrityGroup.GET("/orphaned-trials", h.checkOrphanedTrials)
		integrityGroup.GET("/consistency", h.checkConsistency)
	}
}

func (h *HttpEndpoints) runAllIntegrityChecks(c *gin.Context) {
	report := h.checker.RunAllChecks(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

func (h *HttpEndpoints) checkOrphanedSessions(c *gin.Context) {
	issues := h.checker.CheckOrphanedSessions(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
}

func (h *HttpEndpoints) checkOrphanedTrials(c *gin.Context) {
	issues := h.checker.CheckOrphanedTrials(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
}

func (h *HttpEndpoints) checkConsistency(c *gin.Context) {
	issues := h.checker.CheckDataConsistency(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
}
