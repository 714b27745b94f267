package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mathqc/internal/ai"
	"mathqc/internal/breaker"
	"mathqc/internal/cache"
	"mathqc/internal/config"
	"mathqc/internal/repository"
	"mathqc/internal/rules"
	"mathqc/internal/service"
	"mathqc/internal/transport/rest"
	"mathqc/internal/validate"
)

// @title Math Question Quality API
// @version 1.0
// @description Quality verification and duplicate detection for grade-school math questions
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Provider: %s", aiConfig.Provider)
	log.Printf("  Model:    %s", aiConfig.Model)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:  configured")
	} else {
		log.Println("  API Key:  NOT SET (deterministic checks only)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repository and cache
	questionRepo := repository.NewQuestionRepo(mongoClient)
	resultCache := cache.NewVerificationCache(rdb, cfg.Verify.CacheTTL)

	// Initialize verification stack
	rangePolicy := validate.PolicyDefaultGrade2
	if cfg.Verify.UnboundedUnknownGrades {
		rangePolicy = validate.PolicyUnbounded
	}
	validator := validate.NewValidator(rangePolicy)
	engine := rules.NewEngine(rangePolicy)
	analyzer := ai.FromConfig(aiConfig)

	breakerCfg := breaker.Config{
		MaxFailures:  cfg.Verify.BreakerMaxFailures,
		ResetTimeout: cfg.Verify.BreakerResetTimeout,
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.HostUsername, cfg.HostPassword, cfg.JWTSecret)
	verifierSvc := service.NewVerifierService(validator, engine, analyzer, breakerCfg)
	dedupeSvc := service.NewDedupeService(cfg.Verify.DedupeTimeout, cfg.Verify.SimilarityThreshold)
	distractorSvc := service.NewDistractorService(rangePolicy, time.Now().UnixNano())

	// Create router with container
	container := &rest.Container{
		AuthService:       authSvc,
		VerifierService:   verifierSvc,
		DedupeService:     dedupeSvc,
		DistractorService: distractorSvc,
		QuestionRepo:      questionRepo,
		ResultCache:       resultCache,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/questions")
		log.Println("  POST /v1/questions/{id}/validate")
		log.Println("  POST /v1/questions/{id}/verify")
		log.Println("  POST /v1/questions/verify-batch")
		log.Println("  POST /v1/questions/duplicates")
		log.Println("  POST /v1/questions/{id}/fixes")
		log.Println("  POST /v1/questions/{id}/distractors")
		log.Println("  GET  /health")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
