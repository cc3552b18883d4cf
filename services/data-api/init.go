package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/early-steps/screening-backend/pkg/apihelpers"
	"github.com/early-steps/screening-backend/pkg/backup"
	"github.com/early-steps/screening-backend/pkg/db"
	"github.com/early-steps/screening-backend/pkg/integrity"
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
	"github.com/early-steps/screening-backend/pkg/utils"
	"github.com/early-steps/screening-backend/pkg/validation"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	clinicalDB "github.com/early-steps/screening-backend/pkg/db/clinical"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_CLINICAL_DB_USERNAME = "CLINICAL_DB_USERNAME"
	ENV_CLINICAL_DB_PASSWORD = "CLINICAL_DB_PASSWORD"

	ENV_OPERATOR_JWT_SIGN_KEY = "OPERATOR_JWT_SIGN_KEY"
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`
		ApiKeys      []string `json:"api_keys" yaml:"api_keys"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// JWT configs
	OperatorAuthConfig struct {
		JWTSignKey   string `json:"jwt_sign_key" yaml:"jwt_sign_key"`
		JWTExpiresIn string `json:"jwt_expires_in" yaml:"jwt_expires_in"`
	} `json:"operator_auth_config" yaml:"operator_auth_config"`

	// DB configs
	DBConfigs struct {
		ClinicalDB db.DBConfigYaml `json:"clinical_db" yaml:"clinical_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// Backup configs
	BackupConfig struct {
		ArtifactStorePath string `json:"artifact_store_path" yaml:"artifact_store_path"`
		ServiceVersion    string `json:"service_version" yaml:"service_version"`
	} `json:"backup_config" yaml:"backup_config"`
}

var conf config

var (
	clinicalDBService *clinicalDB.ClinicalDBService
	validationService *validation.Service
	integrityChecker  *integrity.Checker
	backupEngine      *backup.Engine

	operatorTokenExpiresIn time.Duration
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
		conf.Logging.IncludeBuildInfo,
	)

	// Override secrets from environment variables
	secretsOverride()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	operatorTokenExpiresIn, err = utils.ParseDurationString(conf.OperatorAuthConfig.JWTExpiresIn)
	if err != nil {
		slog.Error("could not parse operator token expiry", slog.String("error", err.Error()), slog.String("value", conf.OperatorAuthConfig.JWTExpiresIn))
		panic(err)
	}

	initDBs()

	initServices()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_CLINICAL_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.ClinicalDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_CLINICAL_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.ClinicalDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_OPERATOR_JWT_SIGN_KEY); signKey != "" {
		conf.OperatorAuthConfig.JWTSignKey = signKey
	}
}

func initDBs() {
	var err error
	clinicalDBService, err = clinicalDB.NewClinicalDBService(db.DBConfigFromYamlObj(conf.DBConfigs.ClinicalDB))
	if err != nil {
		slog.Error("Error connecting to Clinical DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func initServices() {
	risk := clinicalTypes.DefaultRiskThresholds()

	validationService = validation.NewService(clinicalDBService, risk)
	integrityChecker = integrity.NewChecker(clinicalDBService, risk)

	if conf.BackupConfig.ArtifactStorePath == "" {
		slog.Error("Backup artifact store path not set")
		panic("backup artifact store path not set")
	}
	artifacts, err := backup.NewFileArtifactStore(conf.BackupConfig.ArtifactStorePath)
	if err != nil {
		slog.Error("Error initializing backup artifact store", slog.String("error", err.Error()))
		panic(err)
	}
	backupEngine = backup.NewEngine(clinicalDBService, artifacts, conf.BackupConfig.ServiceVersion)
}
