package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"

	"matchgraph/internal/auth"
	"matchgraph/internal/config"
	"matchgraph/internal/handlers/apiserver"
	appKafka "matchgraph/internal/kafka"
	"matchgraph/internal/logging"
	"matchgraph/internal/middleware"
	appRedis "matchgraph/internal/redis"
	"matchgraph/internal/services"
	"matchgraph/internal/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig(os.Getenv("MATCHGRAPH_CONFIG"))
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Warn("invalid log configuration, using defaults")
	}
	log.WithFields(log.Fields{"app": cfg.AppName, "version": cfg.AppVersion}).Info("configuration loaded")

	// 2. 数据库
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("数据库表迁移失败: %v", err)
	}

	// 3. Redis 令牌黑名单（可选）
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisClient, err := appRedis.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatalf("无法连接到 Redis: %v", err)
		}
		defer redisClient.Close()
		tokenBlacklist = appRedis.NewRedisTokenBlacklist(redisClient)
		log.WithField("addr", cfg.Redis.Addr).Info("connected to redis")
	} else {
		log.Warn("redis disabled; revoked tokens remain valid until they expire")
	}

	// 4. Kafka 事件生产者（可选）
	var producer appKafka.MessageProducer
	if cfg.Kafka.Enabled {
		producer, err = appKafka.NewConfluentKafkaProducer(cfg.Kafka)
		if err != nil {
			log.Fatalf("无法创建 Kafka 生产者: %v", err)
		}
		log.WithFields(log.Fields{"brokers": cfg.Kafka.Brokers, "topic": cfg.Kafka.EventsTopic}).Info("kafka producer ready")
	} else {
		producer = appKafka.NewNoopProducer()
		log.Info("kafka disabled; domain events are dropped")
	}
	defer producer.Close()

	// 5. Services
	userService := services.NewUserService(storage.NewGormUserRepository(db), cfg.Pagination)
	interactionService := services.NewInteractionService(db, producer, cfg.Kafka, cfg.Pagination)
	ratingService := services.NewRatingService(db, producer, cfg.Kafka)
	endorsementService := services.NewEndorsementService(db, producer, cfg.Kafka)

	// 6. Handlers 和路由
	r := apiserver.NewRouter(apiserver.Handlers{
		Interactions: apiserver.NewInteractionHandler(interactionService, userService),
		Ratings:      apiserver.NewRatingHandler(ratingService, interactionService, userService),
		Endorsements: apiserver.NewEndorsementHandler(endorsementService, userService),
		Users:        apiserver.NewUserHandler(userService),
		Auth:         apiserver.NewAuthHandler(tokenBlacklist),
		Health:       apiserver.NewHealthHandler(db, cfg.AppVersion),
	}, middleware.AuthMiddleware(cfg.Auth, tokenBlacklist))

	// 7. CORS
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}

	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      handlers.CORS(corsOptions...)(r),
		ReadTimeout:  cfg.APIServer.ReadTimeout,
		WriteTimeout: cfg.APIServer.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", serverAddr).Info("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API 服务器启动失败: %v", err)
		}
	}()

	// 8. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down API server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("API server forced to shut down")
	}
	log.Info("API server stopped")
}
