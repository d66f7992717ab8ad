package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/teamup-campus/teamup/config"
	"github.com/teamup-campus/teamup/internal/api/handlers"
	"github.com/teamup-campus/teamup/internal/api/middleware"
	"github.com/teamup-campus/teamup/internal/api/routes"
	"github.com/teamup-campus/teamup/internal/cache"
	"github.com/teamup-campus/teamup/internal/events"
	"github.com/teamup-campus/teamup/internal/logger"
	mongorepo "github.com/teamup-campus/teamup/internal/repositories/mongo"
	pgrepo "github.com/teamup-campus/teamup/internal/repositories/postgres"
	"github.com/teamup-campus/teamup/internal/services"
	"github.com/teamup-campus/teamup/internal/workers"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	log.Info("postgres connected")

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("mongo init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("mongo indexes failed")
	}
	log.Info("mongo connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("redis init failed")
	}
	log.Info("redis connected")

	weights, err := config.LoadANNWeights(os.Getenv("ANN_WEIGHTS_FILE"))
	if err != nil {
		log.WithError(err).Fatal("ann weights invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repos
	mdb := config.MongoDatabase()
	profileRepo := pgrepo.NewProfileRepo(config.PostgresDB)
	postRepo := pgrepo.NewPostRepo(config.PostgresDB)
	interactionRepo := pgrepo.NewInteractionRepo(config.PostgresDB)
	recRepo := pgrepo.NewRecommendationRepo(config.PostgresDB)
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	chatRepo := mongorepo.NewChatRepo(mdb)
	messageRepo := mongorepo.NewMessageRepo(mdb)

	bus := events.NewRedisBus(config.RedisClient)
	feedCache := cache.NewRedisCache(config.RedisClient)

	// Services
	interactionSvc := services.NewInteractionService(interactionRepo, bus, log)
	profileSvc := services.NewProfileService(profileRepo)
	userSvc := services.NewUserService(userRepo)
	postSvc := services.NewPostService(postRepo, feedCache, config.FeedCacheTTL(), interactionSvc, log)
	recSvc := services.NewRecommendService(postRepo, profileRepo, interactionRepo, recRepo, weights, log)
	chatSvc := services.NewChatService(chatRepo, messageRepo, profileRepo, bus, interactionSvc, log)

	pool := &workers.InteractionWorkerPool{
		Redis:      config.RedisClient,
		Store:      interactionSvc,
		NumWorkers: config.InteractionWorkers(),
		Logger:     log,
	}
	if err := pool.Start(ctx); err != nil {
		log.WithError(err).Fatal("interaction workers failed")
	}

	origins := config.FrontendOrigins()
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(origins))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:        middleware.JWTConfigFromEnv(),
		Profile:     handlers.NewProfileHandler(profileSvc),
		User:        handlers.NewUserHandler(userSvc),
		Post:        handlers.NewPostHandler(postSvc),
		Interaction: handlers.NewInteractionHandler(interactionSvc),
		Recommend:   handlers.NewRecommendHandler(recSvc),
		Chat:        handlers.NewChatHandler(chatSvc),
		WS:          handlers.NewWSHandler(chatSvc, bus, origins, log),
	})

	srv := &http.Server{
		Addr:              ":" + config.Port(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown failed")
	}
	closeClients(shutdownCtx, log)
}

func closeClients(ctx context.Context, log *logrus.Logger) {
	if err := config.RedisClient.Close(); err != nil {
		log.WithError(err).Warn("redis close failed")
	}
	if err := config.MongoClient.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("mongo disconnect failed")
	}
	if sqlDB, err := config.PostgresDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
