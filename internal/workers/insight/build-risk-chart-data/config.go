// internal/workers/insight/build-risk-chart-data/config.go
package buildriskchartdata

import "time"

type Config struct {
	Timeout time.Duration
	// UnassignedLabel replaces an empty department or classification.
	UnassignedLabel string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         5 * time.Second,
		UnassignedLabel: "Unassigned",
	}
}
