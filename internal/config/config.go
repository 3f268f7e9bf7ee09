package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Import   *importConfig
	S3       *s3Config
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"coaches"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"COACH_IMPORTER_ADDRESS" default:":3443"`
	MetricsAddress  string `envconfig:"COACH_IMPORTER_METRICS_ADDRESS" default:":8080"`
	LogLevel        string `envconfig:"COACH_IMPORTER_LOG_LEVEL" default:"info"`
	MigrationFolder string `envconfig:"COACH_IMPORTER_MIGRATIONS_FOLDER" default:""`
}

type importConfig struct {
	BatchSize            int           `envconfig:"COACH_IMPORTER_BATCH_SIZE" default:"50"`
	GroupSize            int           `envconfig:"COACH_IMPORTER_GROUP_SIZE" default:"20"`
	MaxConcurrentBatches int           `envconfig:"COACH_IMPORTER_MAX_CONCURRENT_BATCHES" default:"10"`
	MaxErrorLog          int           `envconfig:"COACH_IMPORTER_MAX_ERROR_LOG" default:"1000"`
	SummaryErrors        int           `envconfig:"COACH_IMPORTER_SUMMARY_ERRORS" default:"100"`
	MaxAttempts          int           `envconfig:"COACH_IMPORTER_MAX_ATTEMPTS" default:"3"`
	PollInterval         time.Duration `envconfig:"COACH_IMPORTER_POLL_INTERVAL" default:"500ms"`
	DownloadTimeout      time.Duration `envconfig:"COACH_IMPORTER_DOWNLOAD_TIMEOUT" default:"2m"`
}

type s3Config struct {
	Endpoint  string `envconfig:"COACH_IMPORTER_S3_ENDPOINT" default:""`
	AccessKey string `envconfig:"COACH_IMPORTER_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"COACH_IMPORTER_S3_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"COACH_IMPORTER_S3_USE_SSL" default:"true"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a configuration holding only the default values. The
// environment is not read.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{
			Type:     "pgsql",
			Hostname: "localhost",
			Port:     "5432",
			Name:     "coaches",
			User:     "admin",
			Password: "adminpass",
		},
		Service: &svcConfig{
			Address:        ":3443",
			MetricsAddress: ":8080",
			LogLevel:       "info",
		},
		Import: &importConfig{
			BatchSize:            50,
			GroupSize:            20,
			MaxConcurrentBatches: 10,
			MaxErrorLog:          1000,
			SummaryErrors:        100,
			MaxAttempts:          3,
			PollInterval:         500 * time.Millisecond,
			DownloadTimeout:      2 * time.Minute,
		},
		S3: &s3Config{
			UseSSL: true,
		},
	}
}
