package config

import (
	"os"
	"strings"
	"time"
)

// GatewayConfig holds the edge gateway configuration. The gateway fronts
// replicas of one backend API rather than a set of services.
type GatewayConfig struct {
	Port        string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// LoadConfig loads the gateway configuration from the environment.
// API_INSTANCES is a comma-separated list of backend base URLs.
func LoadConfig() *GatewayConfig {
	instances := strings.Split(getEnv("API_INSTANCES", "http://localhost:8080"), ",")
	for i := range instances {
		instances[i] = strings.TrimRight(strings.TrimSpace(instances[i]), "/")
	}

	return &GatewayConfig{
		Port:        getEnv("GATEWAY_PORT", "8000"),
		Instances:   instances,
		Timeout:     30 * time.Second,
		HealthCheck: "/health",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
