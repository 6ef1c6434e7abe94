package config

import "time"

type Limits struct {
	RetryBudget int             `yaml:"retry_budget" validate:"min=0,max=10"`
	CallTimeout time.Duration   `yaml:"call_timeout" validate:"required,min=1s,max=30m"`
	RateLimit   RateLimitConfig `yaml:"rate_limit" validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

func DefaultLimits() Limits {
	return Limits{
		RetryBudget: 2,
		CallTimeout: 2 * time.Minute,
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         5,
		},
	}
}
