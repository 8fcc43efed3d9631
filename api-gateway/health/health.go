package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/deshimart/commerce/api-gateway/config"
)

// InstanceHealth is the health of one backend instance
type InstanceHealth struct {
	URL       string        `json:"url"`
	Status    string        `json:"status"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// GatewayHealth is the overall gateway health report
type GatewayHealth struct {
	Gateway   string           `json:"gateway"`
	Status    string           `json:"status"`
	Instances []InstanceHealth `json:"instances"`
	Uptime    float64          `json:"uptime_seconds"`
}

// HealthChecker probes backend instances
type HealthChecker struct {
	config    *config.GatewayConfig
	client    *http.Client
	startTime time.Time
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(cfg *config.GatewayConfig) *HealthChecker {
	return &HealthChecker{
		config:    cfg,
		client:    &http.Client{Timeout: 5 * time.Second},
		startTime: time.Now(),
	}
}

// QuickCheck reports the gateway's own liveness without touching backends
func (h *HealthChecker) QuickCheck() GatewayHealth {
	return GatewayHealth{
		Gateway: "api-gateway",
		Status:  "healthy",
		Uptime:  time.Since(h.startTime).Seconds(),
	}
}

// CheckInstance probes one backend instance
func (h *HealthChecker) CheckInstance(ctx context.Context, baseURL string) InstanceHealth {
	start := time.Now()
	result := InstanceHealth{
		URL:       baseURL,
		Timestamp: time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+h.config.HealthCheck, nil)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to create request: %v", err)
		result.Latency = time.Since(start)
		return result
	}

	resp, err := h.client.Do(req)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to reach instance: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)
	if resp.StatusCode == http.StatusOK {
		result.Status = "healthy"
	} else {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Unexpected status: %d", resp.StatusCode)
	}
	return result
}

// CheckAll probes every backend instance concurrently
func (h *HealthChecker) CheckAll(ctx context.Context) GatewayHealth {
	report := GatewayHealth{
		Gateway:   "api-gateway",
		Instances: make([]InstanceHealth, len(h.config.Instances)),
		Uptime:    time.Since(h.startTime).Seconds(),
	}

	var wg sync.WaitGroup
	for i, instance := range h.config.Instances {
		wg.Add(1)
		go func(i int, instance string) {
			defer wg.Done()
			report.Instances[i] = h.CheckInstance(ctx, instance)
		}(i, instance)
	}
	wg.Wait()

	healthy := 0
	for _, instance := range report.Instances {
		if instance.Status == "healthy" {
			healthy++
		}
	}

	switch {
	case healthy == len(report.Instances):
		report.Status = "healthy"
	case healthy > 0:
		report.Status = "degraded"
	default:
		report.Status = "unhealthy"
	}
	return report
}
