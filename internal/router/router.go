package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/studiolotus/yoga-attendance/internal/config"
	"github.com/studiolotus/yoga-attendance/internal/handler"    // import the handlers that implement business logic
	"github.com/studiolotus/yoga-attendance/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes.
// Unauthenticated operations live under /v1/auth; the /v1/me probe is
// wired by RegisterStudio together with the rest of the protected surface.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle coordinator registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle coordinator login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: the handler accepts a
	// JSON body containing a `refresh_token` (or a bearer header to revoke
	// all sessions) and invalidates it.
	g.POST("/logout", a.Logout)
}

// RegisterStudio registers the coordinator-facing endpoints under /v1.
// All routes require a valid JWT with the COORDINATOR role.  The class
// and student listings additionally go through the Redis response
// cache, and the whole group is rate limited.
func RegisterStudio(e *echo.Echo, a *handler.AuthHandler, s *handler.StudioHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("COORDINATOR"),
	)

	g.GET("/me", a.Me)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// ---- Classes ----
	g.GET("/classes", s.ListClasses, cache)
	g.POST("/classes", s.CreateClass)
	g.GET("/classes/:id", s.GetClass)
	g.PUT("/classes/:id/notes", s.UpdateNotes)

	// ---- Roster & attendance ----
	g.POST("/classes/:id/participants", s.AddParticipant)
	g.PUT("/classes/:id/participants/:login/attendance", s.SetAttendance)
	g.PUT("/classes/:id/participants/:login/pass", s.SetPassMissing)

	// ---- Students ----
	g.GET("/users", s.SearchStudents, cache)
	g.GET("/users/:login", s.GetStudent)

	// ---- Point-of-sale sync ----
	g.POST("/sync", s.RunSync)
	g.GET("/sync", s.SyncStatus)
}
