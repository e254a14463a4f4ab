// internal/common/config/config.go
package config

import (
	"fmt"
	"path/filepath"

	"loan-approval/internal/inference"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Artifacts     ArtifactsConfig         `mapstructure:"artifacts"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Cache         CacheConfig             `mapstructure:"cache"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Tracing       TracingConfig           `mapstructure:"tracing"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig configures the HTTP API. Timeouts are milliseconds.
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// ArtifactsConfig locates the model, scaler and encoders. Individual paths
// default to the conventional file names under Dir.
type ArtifactsConfig struct {
	Dir                 string `mapstructure:"dir"`
	Model               string `mapstructure:"model"`
	Scaler              string `mapstructure:"scaler"`
	EducationEncoder    string `mapstructure:"education_encoder"`
	SelfEmployedEncoder string `mapstructure:"self_employed_encoder"`
}

func (a ArtifactsConfig) Paths() inference.Paths {
	return inference.Paths{
		Model:               a.Model,
		Scaler:              a.Scaler,
		EducationEncoder:    a.EducationEncoder,
		SelfEmployedEncoder: a.SelfEmployedEncoder,
	}
}

// CamundaConfig is optional: an empty broker address disables the job workers.
type CamundaConfig struct {
	BrokerAddress     string `mapstructure:"broker_address"`
	UsePlaintext      bool   `mapstructure:"use_plaintext"`
	ConnectionTimeout int    `mapstructure:"connection_timeout"` // milliseconds
	MaxRetries        int    `mapstructure:"max_retries"`
}

func (c CamundaConfig) Enabled() bool {
	return c.BrokerAddress != ""
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	DecisionIndex string   `mapstructure:"decision_index"`
}

func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// CacheConfig controls the verdict cache.
type CacheConfig struct {
	VerdictTTL int    `mapstructure:"verdict_ttl"` // seconds
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// NotificationConfig holds settings for the notify-loan-decision worker.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	Email struct {
		Enabled       bool   `mapstructure:"enabled"`
		FromEmail     string `mapstructure:"from_email"`
		ReviewerEmail string `mapstructure:"reviewer_email"`
	} `mapstructure:"email"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func resolveArtifactPaths(a *ArtifactsConfig) {
	if a.Dir == "" {
		return
	}
	defaults := inference.PathsInDir(a.Dir)
	if a.Model == "" {
		a.Model = defaults.Model
	} else if !filepath.IsAbs(a.Model) {
		a.Model = filepath.Join(a.Dir, a.Model)
	}
	if a.Scaler == "" {
		a.Scaler = defaults.Scaler
	} else if !filepath.IsAbs(a.Scaler) {
		a.Scaler = filepath.Join(a.Dir, a.Scaler)
	}
	if a.EducationEncoder == "" {
		a.EducationEncoder = defaults.EducationEncoder
	} else if !filepath.IsAbs(a.EducationEncoder) {
		a.EducationEncoder = filepath.Join(a.Dir, a.EducationEncoder)
	}
	if a.SelfEmployedEncoder == "" {
		a.SelfEmployedEncoder = defaults.SelfEmployedEncoder
	} else if !filepath.IsAbs(a.SelfEmployedEncoder) {
		a.SelfEmployedEncoder = filepath.Join(a.Dir, a.SelfEmployedEncoder)
	}
}
