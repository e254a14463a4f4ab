package notifyloandecision

import (
	"fmt"
	"time"

	"loan-approval/internal/common/config"
	"loan-approval/internal/common/validation"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration

	SNSEnabled    bool
	TopicARN      string
	EmailEnabled  bool
	FromEmail     string
	ReviewerEmail string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
	}
}

func ConfigFromApp(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	workerCfg := config.GetWorkerConfig(appConfig, TaskType)
	cfg.Enabled = workerCfg.Enabled
	if workerCfg.MaxJobsActive > 0 {
		cfg.MaxJobsActive = workerCfg.MaxJobsActive
	}
	if workerCfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(workerCfg.Timeout)
	}

	n := appConfig.Notifications
	cfg.SNSEnabled = n.SNS.Enabled
	cfg.TopicARN = n.SNS.TopicARN
	cfg.EmailEnabled = n.Email.Enabled
	cfg.FromEmail = n.Email.FromEmail
	cfg.ReviewerEmail = n.Email.ReviewerEmail
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.SNSEnabled && c.TopicARN == "" {
		return fmt.Errorf("topic_arn is required when sns is enabled")
	}
	if c.EmailEnabled {
		if !validation.ValidateEmail(c.FromEmail) {
			return fmt.Errorf("from_email %q is not a valid address", c.FromEmail)
		}
		if !validation.ValidateEmail(c.ReviewerEmail) {
			return fmt.Errorf("reviewer_email %q is not a valid address", c.ReviewerEmail)
		}
	}
	return nil
}
