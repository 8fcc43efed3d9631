package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deshimart/commerce/api-gateway/config"
	"github.com/deshimart/commerce/api-gateway/health"
	"github.com/deshimart/commerce/api-gateway/middleware"
	"github.com/deshimart/commerce/api-gateway/proxy"
)

// RouteDefinition maps a path prefix to its edge policy
type RouteDefinition struct {
	Prefix       string
	Description  string
	RequireAuth  bool
	RequireAdmin bool
}

// Routes declares the edge policy per path prefix. Order matters: the first
// matching prefix wins, so the payment callbacks sit above the generic
// payment routes.
var Routes = []RouteDefinition{
	{
		Prefix:      "/api/auth",
		Description: "Registration and login",
	},
	{
		Prefix:      "/api/products",
		Description: "Storefront catalog (admin writes re-checked by the backend)",
	},
	{
		Prefix:      "/api/categories",
		Description: "Storefront categories (admin writes re-checked by the backend)",
	},
	{
		Prefix:      "/api/payments/callback",
		Description: "Gateway callbacks, verified against the payment provider",
	},
	{
		Prefix:      "/api/payments",
		Description: "Payment initiation and status",
		RequireAuth: true,
	},
	{
		Prefix:      "/api/orders",
		Description: "Checkout and order history",
		RequireAuth: true,
	},
	{
		Prefix:       "/api/customers",
		Description:  "Customer administration",
		RequireAuth:  true,
		RequireAdmin: true,
	},
	{
		Prefix:       "/api/dashboard",
		Description:  "Admin reporting",
		RequireAuth:  true,
		RequireAdmin: true,
	},
}

// SetupRoutes configures all gateway routes
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		report := healthChecker.CheckAll(ctx)
		statusCode := fiber.StatusOK
		if report.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}
		return c.Status(statusCode).JSON(report)
	})

	app.Get("/gateway/stats", func(c *fiber.Ctx) error {
		return c.JSON(reverseProxy.LoadBalancer().Stats())
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Deshimart API Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	for _, route := range Routes {
		registerRoute(app, route, reverseProxy)
	}
}

func registerRoute(app *fiber.App, route RouteDefinition, reverseProxy *proxy.ReverseProxy) {
	handler := func(c *fiber.Ctx) error {
		return reverseProxy.Forward(c)
	}

	var middlewares []fiber.Handler
	if route.RequireAdmin {
		middlewares = append(middlewares, middleware.AuthMiddleware(), middleware.AdminMiddleware())
	} else if route.RequireAuth {
		middlewares = append(middlewares, middleware.AuthMiddleware())
	}

	group := app.Group(route.Prefix, middlewares...)
	group.All("/*", handler)

	if len(middlewares) > 0 {
		app.All(route.Prefix, append(middlewares, handler)...)
	} else {
		app.All(route.Prefix, handler)
	}
}
