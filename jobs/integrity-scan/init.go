package main

import (
	"log/slog"
	"os"

	"github.com/early-steps/screening-backend/pkg/db"
	"github.com/early-steps/screening-backend/pkg/integrity"
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
	"github.com/early-steps/screening-backend/pkg/utils"
	"gopkg.in/yaml.v2"

	clinicalDB "github.com/early-steps/screening-backend/pkg/db/clinical"
	sc "github.com/early-steps/screening-backend/pkg/smtp-client"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_CLINICAL_DB_USERNAME = "CLINICAL_DB_USERNAME"
	ENV_CLINICAL_DB_PASSWORD = "CLINICAL_DB_PASSWORD"
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		ClinicalDB db.DBConfigYaml `json:"clinical_db" yaml:"clinical_db"`
	} `json:"db_configs" yaml:"db_configs"`

	ReportConfig struct {
		EmailOnFindings      bool     `json:"email_on_findings" yaml:"email_on_findings"`
		RecipientEmails      []string `json:"recipient_emails" yaml:"recipient_emails"`
		SMTPServerConfigPath string   `json:"smtp_server_config_path" yaml:"smtp_server_config_path"`
	} `json:"report_config" yaml:"report_config"`
}

var conf config

var (
	clinicalDBService *clinicalDB.ClinicalDBService
	integrityChecker  *integrity.Checker
	smtpClients       *sc.SmtpClients
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

	initDBs()

	integrityChecker = integrity.NewChecker(clinicalDBService, clinicalTypes.DefaultRiskThresholds())

	if conf.ReportConfig.EmailOnFindings {
		initSmtpClients()
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_CLINICAL_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.ClinicalDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_CLINICAL_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.ClinicalDB.Password = dbPassword
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

func initSmtpClients() {
	if len(conf.ReportConfig.RecipientEmails) < 1 {
		slog.Error("Email reporting enabled, but no recipient emails configured")
		panic("no recipient emails configured")
	}

	serverList := sc.SmtpServerList{}
	if err := serverList.ReadFromFile(conf.ReportConfig.SMTPServerConfigPath); err != nil {
		slog.Error("Error reading SMTP server config", slog.String("error", err.Error()))
		panic(err)
	}

	// SMTP passwords can be overridden per host through env variables
	for i, server := range serverList.Servers {
		envVarName := utils.GenerateSMTPPasswordEnvVarName(server.GetHost())
		if password := os.Getenv(envVarName); password != "" {
			serverList.Servers[i].SetPassword(password)
		}
	}

	var err error
	smtpClients, err = sc.NewSmtpClients(serverList)
	if err != nil {
		slog.Error("Error initializing SMTP clients", slog.String("error", err.Error()))
		panic(err)
	}
}
