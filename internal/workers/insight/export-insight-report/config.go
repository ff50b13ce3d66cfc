// internal/workers/insight/export-insight-report/config.go
package exportinsightreport

import (
	"os"
	"time"
)

type Config struct {
	Timeout   time.Duration
	OutputDir string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		OutputDir: os.TempDir(),
	}
}
