package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"mastery-service/internal/batch"
	"mastery-service/internal/config"
	"mastery-service/internal/db"
	"mastery-service/internal/event"
	"mastery-service/internal/handlers"
	"mastery-service/internal/mastery"
	"mastery-service/internal/repository"
	"mastery-service/internal/scheduling"
	"mastery-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.ServiceConfig

	db.InitMongo(cfg.MongoDB.URI)
	database := db.Client.Database(cfg.MongoDB.Database)

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, domain events will not be published")
	}

	// Repositories
	attemptRepo := repository.NewAttemptRepository(database)
	topicMasteryRepo := repository.NewTopicMasteryRepository(database)
	subjectMasteryRepo := repository.NewSubjectMasteryRepository(database)
	scheduleRepo := repository.NewScheduleRepository(database)
	userRepo := repository.NewUserRepository(database)
	curriculumRepo := repository.NewCurriculumRepository(database)

	// Engine configuration from env
	engineConfig := &mastery.EngineConfig{
		AttemptWindowDays: cfg.Engine.AttemptWindowDays,
		AttemptFetchLimit: int64(cfg.Engine.AttemptFetchLimit),
		AccuracyWeight:    cfg.Engine.AccuracyWeight,
		RecencyWeight:     cfg.Engine.RecencyWeight,
		RecencyHalfLife:   cfg.Engine.RecencyHalfLife,
		RecencySaturation: mastery.DefaultEngineConfig().RecencySaturation,
	}
	scheduleConfig := scheduling.DefaultScheduleConfig()
	scheduleConfig.HorizonDays = cfg.Engine.ResolverHorizon

	// Services
	masteryService := service.NewMasteryService(attemptRepo, topicMasteryRepo, subjectMasteryRepo, curriculumRepo, engineConfig)
	resolver := scheduling.NewResolver(curriculumRepo, scheduleRepo, scheduleConfig.HorizonDays)
	scheduleService := service.NewScheduleService(topicMasteryRepo, scheduleRepo, resolver, scheduleConfig)
	pipeline := service.NewPipelineService(masteryService, scheduleService)

	orchestrator := batch.NewOrchestrator(userRepo, pipeline, batch.Config{
		DefaultBatchSize: cfg.Batch.DefaultBatchSize,
		Concurrency:      cfg.Batch.Concurrency,
		UserTimeout:      cfg.Batch.UserTimeout,
	})

	// Handlers
	triggerHandler := handlers.NewTriggerHandler(pipeline, scheduleService, orchestrator, userRepo)
	masteryHandler := handlers.NewMasteryHandler(masteryService, scheduleService)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes - read surfaces
	publicMastery := r.Group("/public/mastery")
	{
		publicMastery.GET("/user/:id", func(c *gin.Context) {
			masteryHandler.GetUserMastery(c)
		})
		publicMastery.GET("/user/:id/schedule", func(c *gin.Context) {
			masteryHandler.GetUserSchedule(c)
		})
	}

	// Protected routes - engine triggers, bearer credential required
	protectedMastery := r.Group("/protected/mastery")
	protectedMastery.Use(bearerAuth(cfg.Server.TriggerToken))
	{
		protectedMastery.POST("/run/user", func(c *gin.Context) {
			triggerHandler.RunUser(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.Publish(event.UserMasteryUpdated, gin.H{
					"timestamp": time.Now(),
				})
				publisher.Publish(event.ScheduleUpdated, gin.H{
					"timestamp": time.Now(),
				})
			}
		})
		protectedMastery.POST("/run/batch", func(c *gin.Context) {
			triggerHandler.RunBatch(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.Publish(event.BatchCompleted, gin.H{
					"batch_size": c.Query("batch_size"),
					"offset":     c.Query("offset"),
					"timestamp":  time.Now(),
				})
			}
		})
		protectedMastery.POST("/review/completed", func(c *gin.Context) {
			triggerHandler.ReviewCompleted(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.Publish(event.ReviewCompleted, gin.H{
					"timestamp": time.Now(),
				})
			}
		})
	}

	// Recurring batch cadence: the cron entry calls the orchestrator
	// directly rather than going through the HTTP surface.
	if cfg.Batch.CronEnabled {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Batch.CronSpec, func() {
			log.Println("Cron: starting full batch pass")
			stats, err := orchestrator.ProcessAllUsers(context.Background())
			if err != nil {
				log.Printf("Cron: batch pass failed: %v", err)
				return
			}
			if publisher != nil {
				publisher.Publish(event.BatchCompleted, stats)
			}
		})
		if err != nil {
			log.Fatalf("Invalid BATCH_CRON spec %q: %v", cfg.Batch.CronSpec, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("Batch cron scheduled: %s", cfg.Batch.CronSpec)
	}

	r.Run(":" + cfg.Server.Port)
}

// bearerAuth rejects trigger calls lacking the platform credential. The
// engine itself performs no further authentication.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			log.Println("TRIGGER_API_TOKEN not set, rejecting trigger call")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Trigger surface disabled",
				"code":  "TRIGGER_DISABLED",
			})
			c.Abort()
			return
		}
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != token {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_BEARER_TOKEN",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
