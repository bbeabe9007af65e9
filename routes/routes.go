package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "mailramp/controllers"
	"mailramp/middleware"
)

// SetupTrackingRoutes registers the public endpoints hit by recipient
// mail clients and provider webhooks. No authentication: the tracking
// token is the credential.
func SetupTrackingRoutes(app *fiber.App, tc *controller.TrackingController) {
	track := app.Group("/track", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	track.Get("/open/:trackingID/:token", tc.HandleOpenTracking)
	track.Post("/reply", tc.HandleReplyWebhook)
	track.Post("/spam", tc.HandleSpamReport)
	track.Post("/bounce", tc.HandleBounceWebhook)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, wc *controller.WarmupController) {
	campaignController := controller.NewCampaignController(db, log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Sender routes; connection tests are rate limited
	sender := api.Group("/senders")
	sender.Post("/", controller.CreateSender)
	sender.Get("/", controller.GetSenders)
	sender.Get("/:id", controller.GetSender)
	sender.Put("/:id", controller.UpdateSender)
	sender.Delete("/:id", controller.DeleteSender)
	sender.Post("/:id/test", middleware.SenderRateLimiter(), controller.TestSender)

	// Warmup routes
	warmup := sender.Group("/:id/warmup")
	warmup.Post("/start", wc.StartWarmup)
	warmup.Post("/stop", wc.StopWarmup)
	warmup.Get("/status", wc.GetWarmupStatus)
	warmup.Get("/progress", wc.GetWarmupProgress)
	warmup.Post("/reset", wc.ResetWarmup)
	warmup.Get("/stats", wc.GetWarmupStats)

	// Campaign routes
	campaign := api.Group("/campaigns")
	campaign.Post("/", campaignController.CreateCampaign)
	campaign.Get("/", campaignController.GetCampaigns)
	campaign.Post("/:id/recipients", campaignController.AddRecipients)
	campaign.Get("/:id/plan", campaignController.PreviewPlan)
	campaign.Get("/:id/estimate", campaignController.EstimateCampaign)

	// WebSocket route for live warmup progress
	app.Get("/api/v1/warmup/progress", websocket.New(func(c *websocket.Conn) {
		controller.HandleWarmupProgressWS(c)
	}))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, wc *controller.WarmupController, tc *controller.TrackingController) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupTrackingRoutes(app, tc)
	SetupAPIRoutes(app, db, wc)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
