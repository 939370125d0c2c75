package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"

	config "autosocial/configs"
	"autosocial/internal/api/handlers"
	"autosocial/internal/api/middleware"
	job "autosocial/internal/jobs"
	"autosocial/internal/queue"
	"autosocial/internal/repository"
	"autosocial/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db := repository.NewDynamoClient(*cfg)

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db, cfg.PostsTable)
	scheduleRepo := repository.NewScheduleRepository(db, cfg.SchedulesTable)
	tokenRepo := repository.NewTokenRepository(db, cfg.TokensTable)
	historyRepo := repository.NewPublishHistoryRepository(db, cfg.PublishHistoryTable)

	mediaService := service.NewMediaService(*cfg)
	postService := service.NewPostService(postRepo, mediaService)
	scheduleService := service.NewScheduleService(scheduleRepo)
	tokenService := service.NewTokenService(*cfg, tokenRepo, service.NoShortLivedSource{})
	facebookService := service.NewFacebookService(*cfg, postRepo, mediaService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	platform := handlers.NewPlatformHandler(tokenService, *cfg)
	app.Get("/auth/facebook/callback", platform.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/connect/facebook", platform.ConnectFacebook)

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)

	schedule := handlers.NewScheduleHandler(scheduleService)
	api.Post("/schedules", schedule.CreateSchedule)
	api.Get("/schedules", schedule.ListSchedules)
	api.Get("/schedules/:id", schedule.GetSchedule)
	api.Put("/schedules/:id", schedule.UpdateSchedule)
	api.Delete("/schedules/:id", schedule.RemoveSchedule)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media", media.UploadMedia)

	history := handlers.NewHistoryHandler(historyRepo)
	api.Get("/history", history.ListHistory)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(tokenService)
	dispatchJob := job.NewDispatchJob(scheduleRepo, postRepo, client)

	// queue
	queueW := queue.NewQueue(postRepo, historyRepo, facebookService, tokenService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h01m00s", dispatchJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}
