// internal/workers/insight/parse-attrition-insight/config.go
package parseattritioninsight

import "time"

type Config struct {
	Timeout    time.Duration
	RenderHTML bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    5 * time.Second,
		RenderHTML: true,
	}
}
