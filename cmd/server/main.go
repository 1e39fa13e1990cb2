package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/studiolotus/yoga-attendance/internal/config"   // Internal config loader
	"github.com/studiolotus/yoga-attendance/internal/database" // MySQL connection pool
	"github.com/studiolotus/yoga-attendance/internal/handler"
	"github.com/studiolotus/yoga-attendance/internal/ledger"
	"github.com/studiolotus/yoga-attendance/internal/queue"
	"github.com/studiolotus/yoga-attendance/internal/repository"
	"github.com/studiolotus/yoga-attendance/internal/router" // Internal router setup
	"github.com/studiolotus/yoga-attendance/internal/sales"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional; a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	classes := repository.NewClassRepo(db)
	students := repository.NewStudentRepo(db)
	participants := repository.NewParticipantRepo(db)
	orders := repository.NewOrderRepo(db)
	syncRepo := repository.NewSyncRepo(db)

	reconciler := ledger.NewReconciler(orders)
	ingestor := sales.NewIngestor(sales.NewClient(cfg.SalesAPIBase), students, orders, syncRepo)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	studioH := handler.NewStudioHandler(classes, students, participants, orders, syncRepo, reconciler, ingestor)

	// Attendance events are consumed in the background for the audit log.
	go func() {
		if err := queue.StartAttendanceConsumer(); err != nil {
			log.Printf("attendance consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, authH)
	router.RegisterStudio(e, authH, studioH, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
