package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"mailramp/config"
	controller "mailramp/controllers"
	"mailramp/middleware"
	"mailramp/routes"
	"mailramp/store"
	"mailramp/utils"
	"mailramp/warmup"
	"mailramp/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "WARMUP: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Structured logging and error reporting
	logrus.SetFormatter(&logrus.JSONFormatter{})
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("⚠️ Sentry init failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Warmup domain wiring
	wcfg := config.AppConfig.Warmup
	clock := warmup.SystemClock()
	rng := warmup.NewRNG(time.Now().UnixNano())

	st := store.New(config.DB)
	engine := warmup.NewEngine(st, clock, warmup.Config{
		DailyIncrease:  wcfg.DailyIncrease,
		MaxDailyEmails: wcfg.MaxDailyEmails,
		WarmupDays:     wcfg.WarmupDays,
	}, logger)
	stats := warmup.NewAggregator(st, clock)
	tracker := warmup.NewTracker(st, stats, clock)
	content := warmup.NewStaticContent(rng)
	simulator := warmup.NewSimulator(tracker, content, rng, warmup.SimulatorConfig{
		OpenProbability:  wcfg.OpenProbability,
		ReplyProbability: wcfg.ReplyProbability,
		MinDelay:         time.Duration(wcfg.MinEngageDelaySec) * time.Second,
		MaxDelay:         time.Duration(wcfg.MaxEngageDelaySec) * time.Second,
	}, logger)
	transport := utils.NewSMTPTransport()

	// Initialize and start cycle runner
	runner := worker.NewCycleRunner(config.DB, engine, tracker, simulator, transport, content, clock, rng, worker.RunnerConfig{
		MinTick:      time.Duration(wcfg.MinTickMinutes) * time.Minute,
		MaxTick:      time.Duration(wcfg.MaxTickMinutes) * time.Minute,
		PollInterval: 30 * time.Second,
		BaseURL:      config.AppConfig.BaseURL,
	}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	// Reply watcher picks up IMAP replies the webhooks miss
	watcher := worker.NewReplyWatcher(config.DB, tracker, log.New(os.Stdout, "REPLIES: ", log.LstdFlags))
	go watcher.Start(ctx)

	// Setup routes
	warmupController := controller.NewWarmupController(logger, engine, stats, simulator)
	trackingController := controller.NewTrackingController(log.New(os.Stdout, "TRACK: ", log.LstdFlags), tracker)
	routes.SetupRoutes(app, config.DB, warmupController, trackingController)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
