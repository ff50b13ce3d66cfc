// internal/workers/data-access/query-employee-records/config.go
package queryemployeerecords

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultLimit: 100,
	}
}
