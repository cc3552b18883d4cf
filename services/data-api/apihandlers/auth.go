package apihandlers

import (
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	mw "github.com/early-steps/screening-backend/pkg/apihelpers/middlewares"
	jwthandling "github.com/early-steps/screening-backend/pkg/jwt-handling"
	"github.com/early-steps/screening-backend/pkg/pwhash"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddOperatorAuthAPI(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/login", mw.RequirePayload(), h.loginWithClinicianCredentials)
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *HttpEndpoints) loginWithClinicianCredentials(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clinician, err := h.clinicalDBConn.FindClinicianByName(req.Name)
	if err != nil {
		slog.Warn("login attempt with unknown clinician name", slog.String("name", req.Name), slog.String("error", err.Error()))
		randomWait(2, 5)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid name or password"})
		return
	}

	match, err := pwhash.ComparePasswordWithHash(clinician.CredentialHash, req.Password)
	if err != nil || !match {
		if err == nil {
			err = errors.New("passwords do not match")
		}
		slog.Warn("login attempt with wrong password", slog.String("name", req.Name), slog.String("error", err.Error()))
		randomWait(2, 5)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid name or password"})
		return
	}

	token, err := jwthandling.GenerateNewOperatorToken(
		h.tokenExpiresIn,
		clinician.ID.Hex(),
		clinician.Name,
		clinician.Hospital,
		h.tokenSignKey,
	)
	if err != nil {
		slog.Error("failed to generate token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"expiresIn":   int(h.tokenExpiresIn.Seconds()),
	})
}

func randomWait(minTimeSec int, maxTimeSec int) {
	time.Sleep(time.Duration(rand.Intn(maxTimeSec-minTimeSec)+minTimeSec) * time.Second)
}
