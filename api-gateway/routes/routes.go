package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tair/membership-platform/api-gateway/config"
	"github.com/tair/membership-platform/api-gateway/health"
	"github.com/tair/membership-platform/api-gateway/middleware"
	"github.com/tair/membership-platform/api-gateway/proxy"
)

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix        string
	ServiceName   string
	Description   string
	RequireAuth   bool // valid token required
	RequireAdmin  bool // admin role required
	OptionalAuth  bool // resolve identity when a token is present
	CheckoutLimit bool // tight per-identity rate limit
}

// Routes holds all route definitions. Auth-sensitive endpoints enforce their
// own JWT checks downstream; the gateway only pre-filters where a route is
// unambiguously members-only.
var Routes = []RouteDefinition{
	// Public routes
	{
		Prefix:      "/api/members",
		ServiceName: "checkout",
		Description: "Member accounts (register, login, profile)",
	},
	{
		Prefix:      "/api/events",
		ServiceName: "checkout",
		Description: "Event catalog (admin endpoints enforced downstream)",
	},
	{
		Prefix:      "/api/levels",
		ServiceName: "checkout",
		Description: "Membership levels",
	},
	{
		Prefix:        "/api/checkout",
		ServiceName:   "checkout",
		Description:   "Guest-or-member checkout",
		OptionalAuth:  true,
		CheckoutLimit: true,
	},
	{
		Prefix:      "/api/registrations",
		ServiceName: "checkout",
		Description: "Registration lookup by public id, check-in",
	},
	{
		Prefix:      "/api/webhooks",
		ServiceName: "checkout",
		Description: "Payment gateway callbacks (signature-verified downstream)",
	},

	// Members-only checkout
	{
		Prefix:        "/api/member",
		ServiceName:   "checkout",
		Description:   "Authenticated checkout",
		RequireAuth:   true,
		CheckoutLimit: true,
	},
}

// SetupRoutes configures all routes in the gateway
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig, cbManager *middleware.CircuitBreakerManager, redisClient *redis.Client) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream checks)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe (for Kubernetes)
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	// Readiness probe (checks the checkout backend)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)

		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(healthStatus)
	})

	// Detailed downstream health
	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		return c.JSON(healthChecker.CheckAllServices(ctx))
	})

	// Balancer and circuit breaker state, for operators
	app.Get("/gateway/stats", func(c *fiber.Ctx) error {
		balancers := make(map[string]interface{})
		for name, lb := range reverseProxy.GetLoadBalancers() {
			balancers[name] = lb.GetStats()
		}
		return c.JSON(fiber.Map{
			"load_balancers":   balancers,
			"circuit_breakers": cbManager.GetAllStats(),
		})
	})

	// API routes overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Membership Platform Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	for _, route := range Routes {
		registerServiceRoutes(app, route, reverseProxy, redisClient)
	}
}

// registerServiceRoutes registers all HTTP methods for a service prefix
func registerServiceRoutes(app *fiber.App, route RouteDefinition, proxyHandler *proxy.ReverseProxy, redisClient *redis.Client) {
	handler := func(c *fiber.Ctx) error {
		return proxyHandler.ProxyRequest(c, route.ServiceName)
	}

	var middlewares []fiber.Handler

	switch {
	case route.RequireAdmin:
		middlewares = append(middlewares, middleware.AuthMiddleware(), middleware.AdminMiddleware())
	case route.RequireAuth:
		middlewares = append(middlewares, middleware.AuthMiddleware())
	case route.OptionalAuth:
		middlewares = append(middlewares, middleware.OptionalAuthMiddleware())
	}

	// Identity resolution must run first so checkout limits bind to the
	// member account rather than the IP.
	if route.CheckoutLimit && redisClient != nil {
		middlewares = append(middlewares, middleware.CheckoutRateLimiter(redisClient))
	}

	group := app.Group(route.Prefix, middlewares...)
	group.All("/*", handler)

	// Also handle the exact prefix path (without /*)
	if len(middlewares) > 0 {
		app.All(route.Prefix, append(middlewares, handler)...)
	} else {
		app.All(route.Prefix, handler)
	}
}
