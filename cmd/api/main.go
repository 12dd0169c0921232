package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewhamarket/backend/internal/config"
	"github.com/ewhamarket/backend/internal/handler"
	"github.com/ewhamarket/backend/internal/middleware"
	"github.com/ewhamarket/backend/internal/routes"
	"github.com/ewhamarket/backend/internal/service"
	"github.com/ewhamarket/backend/internal/store"
	"github.com/ewhamarket/backend/pkg/jwt"
	pkglogger "github.com/ewhamarket/backend/pkg/logger"
	"github.com/ewhamarket/backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Ewha Market API
// @version         1.0
// @description     Campus second-hand marketplace backend
//
// @host            localhost:5001
// @BasePath        /api

func main() {
	dotenvFiles := config.LoadDotEnv()

	cfg := config.Load()
	pkglogger.InitStructured(cfg.Env)
	log := pkglogger.GetLogger()
	log.Info().Strs("env_files", dotenvFiles).Str("env", cfg.Env).Msg("starting")
	config.LogResolved(cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB 연결 실패해도 서버는 뜸 (disabled mode)
	storeLog := pkglogger.Component("store")
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	st := store.Open(openCtx, cfg.DBConfigPath, &storeLog)
	cancel()
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()
	middleware.SetStoreEnabled(st.Enabled())

	images, err := storage.New(cfg.Storage.Driver, cfg.UploadDir, s3Config(cfg))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to init image storage")
	}

	sessions := jwt.NewManager(cfg.SecretKey, time.Duration(cfg.SessionHours)*time.Hour)

	// Services
	authService := service.NewAuthService(st)
	itemService := service.NewItemService(st)
	reviewService := service.NewReviewService(st)
	wishService := service.NewWishService(st)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, sessions, images)
	itemHandler := handler.NewItemHandler(itemService, images)
	reviewHandler := handler.NewReviewHandler(reviewService, images)
	wishHandler := handler.NewWishHandler(wishService)
	healthHandler := handler.NewHealthHandler(st)

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, authHandler, itemHandler, reviewHandler, wishHandler, healthHandler, sessions, cfg.UploadDir)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// s3Config falls back to the storageBucket of the database credentials blob
func s3Config(cfg *config.Config) storage.S3Config {
	bucket := cfg.Storage.S3Bucket
	if bucket == "" {
		if dbCfg, err := config.LoadDBConfig(cfg.DBConfigPath); err == nil {
			bucket = dbCfg.StorageBucket
		}
	}
	return storage.S3Config{
		Endpoint:        cfg.Storage.S3Endpoint,
		Region:          cfg.Storage.S3Region,
		AccessKeyID:     cfg.Storage.S3AccessKeyID,
		SecretAccessKey: cfg.Storage.S3SecretKey,
		Bucket:          bucket,
		CDNURL:          cfg.Storage.S3CDNURL,
		ForcePathStyle:  cfg.Storage.S3PathStyle,
	}
}
