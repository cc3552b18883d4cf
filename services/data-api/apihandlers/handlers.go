package apihandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/early-steps/screening-backend/pkg/backup"
	clinicalDB "github.com/early-steps/screening-backend/pkg/db/clinical"
	"github.com/early-steps/screening-backend/pkg/integrity"
	"github.com/early-steps/screening-backend/pkg/validation"
	"github.com/gin-gonic/gin"
)

func HealthCheckHandle(c *gin.Context) {
	serviceInfos := make(map[string]interface{})
	infos, err := os.ReadFile("serviceInfos.json")
	if err != nil {
		slog.Debug("Error reading serviceInfos.json", slog.String("error", err.Error()))
	} else {
		err = json.Unmarshal(infos, &serviceInfos)
		if err != nil {
			slog.Debug("Error unmarshalling serviceInfos.json", slog.String("error", err.Error()))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"serviceInfos": serviceInfos,
	})
}

type HttpEndpoints struct {
	clinicalDBConn *clinicalDB.ClinicalDBService
	validator      *validation.Service
	checker        *integrity.Checker
	backupEngine   *backup.Engine
	tokenSignKey   string
	tokenExpiresIn time.Duration
	apiKeys        []string
}

func NewHTTPHandler(
	tokenSignKey string,
	tokenExpiresIn time.Duration,
	clinicalDBConn *clinicalDB.ClinicalDBService,
	validator *validation.Service,
	checker *integrity.Checker,
	backupEngine *backup.Engine,
	apiKeys []string,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:   tokenSignKey,
		tokenExpiresIn: tokenExpiresIn,
		clinicalDBConn: clinicalDBConn,
		validator:      validator,
		checker:        checker,
		backupEngine:   backupEngine,
		apiKeys:        apiKeys,
	}
}
