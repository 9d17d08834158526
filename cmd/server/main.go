package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"peergrade/internal/cache"
	"peergrade/internal/config"
	"peergrade/internal/repository"
	"peergrade/internal/service"
	"peergrade/internal/transport/rest"
	"peergrade/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

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

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	mappingRepo := repository.NewMappingRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	answerRepo := repository.NewAnswerRepo(db)
	questionnaireRepo := repository.NewQuestionnaireRepo(db)
	assignmentRepo := repository.NewAssignmentRepo(db)
	lockRepo := repository.NewLockRepo(db)

	// Initialize caches
	rubricCache := cache.NewRubricCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService()
	locks := service.NewLockManager(lockRepo, cfg.LockTimeout)
	resolver := service.NewResolverService(questionnaireRepo, assignmentRepo, answerRepo, rubricCache)
	scoring := service.NewScoringService(mappingRepo, responseRepo, answerRepo, resolver)
	notifier := service.NewNotifier(service.LogMailer{}, wsHub, cfg.BaseURL)
	responseSvc := service.NewResponseService(
		mappingRepo, responseRepo, answerRepo, assignmentRepo,
		resolver, scoring, locks, notifier, service.ReviewerOnlyPolicy{},
	)
	quizSvc := service.NewQuizService(mappingRepo, responseRepo, answerRepo, questionnaireRepo, resolver, service.ReviewerOnlyPolicy{})
	questionnaireSvc := service.NewQuestionnaireService(questionnaireRepo, rubricCache)

	// Create router with container
	container := &rest.Container{
		AuthService:          authSvc,
		ResponseService:      responseSvc,
		QuizService:          quizSvc,
		QuestionnaireService: questionnaireSvc,
		WSHub:                wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/auth/reviewer-token")
		log.Println("  POST/GET /v1/questionnaires")
		log.Println("  POST /v1/mappings/{mapId}/responses")
		log.Println("  PUT/GET/DELETE /v1/responses/{id}")
		log.Println("  POST/GET /v1/mappings/{mapId}/quiz")
		log.Println("  GET  /v1/assignments/{id}/review-comments")
		log.Println("  WS   /v1/ws/assignments/{id}/notifications")

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
