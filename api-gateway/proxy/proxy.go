package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deshimart/commerce/api-gateway/config"
	"github.com/deshimart/commerce/api-gateway/loadbalancer"
	"github.com/deshimart/commerce/pkg/logger"
)

// ReverseProxy forwards requests to a backend API instance chosen by the
// load balancer
type ReverseProxy struct {
	client *http.Client
	lb     *loadbalancer.RoundRobin
}

// NewReverseProxy creates a new reverse proxy over the configured backend
// instances
func NewReverseProxy(cfg *config.GatewayConfig) *ReverseProxy {
	return &ReverseProxy{
		client: &http.Client{Timeout: cfg.Timeout},
		lb:     loadbalancer.NewRoundRobin(cfg.Instances),
	}
}

// LoadBalancer exposes the balancer for stats endpoints
func (p *ReverseProxy) LoadBalancer() *loadbalancer.RoundRobin {
	return p.lb
}

// Forward proxies the request to the next backend instance
func (p *ReverseProxy) Forward(c *fiber.Ctx) error {
	serverURL := p.lb.Next()
	if serverURL == "" {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "No backend instances available",
		})
	}

	targetURL := buildTargetURL(c, serverURL)

	logger.Logger.Debug().
		Str("target_url", targetURL).
		Str("path", c.Path()).
		Msg("Forwarding request")

	req, err := http.NewRequestWithContext(
		c.UserContext(),
		c.Method(),
		targetURL,
		bytes.NewReader(c.Body()),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create request",
		})
	}

	copyRequestHeaders(c, req)

	resp, err := p.client.Do(req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to reach backend",
			"details": err.Error(),
		})
	}
	defer resp.Body.Close()

	copyResponseHeaders(c, resp)
	c.Status(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read response",
		})
	}

	return c.Send(body)
}

func buildTargetURL(c *fiber.Ctx, serverURL string) string {
	path := string(c.Request().URI().Path())
	queryString := string(c.Request().URI().QueryString())
	if queryString != "" {
		queryString = "?" + queryString
	}
	return serverURL + path + queryString
}

func copyRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		if strings.EqualFold(string(key), "host") {
			return
		}
		req.Header.Set(string(key), string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}

func copyResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for key, values := range resp.Header {
		if strings.EqualFold(key, "content-length") {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
}
