package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptosense/internal/app"
	"cryptosense/internal/bot"
	"cryptosense/internal/config"
	"cryptosense/internal/handler"
	"cryptosense/internal/job"
	"cryptosense/internal/notify"
	"cryptosense/pkg/tracing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "cryptosense/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	buildAppFunc           = app.Build
	startWarmerFunc        = func(w *job.SentimentWarmer, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Cryptosense API
// @version         1.0
// @description     Sentiment-adjusted price predictions for crypto assets.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	log.SetLevel(config.ParseLogLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.DefaultServiceName)
	if err != nil {
		log.Fatal("failed to initialize tracer", "err", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("error shutting down tracer provider", "err", err)
		}
	}()

	a := buildAppFunc(ctx, cfg, tracer, notify.Default())

	// Keep the sentiment cache warm (stopped by ctx cancel)
	warmer := job.NewSentimentWarmer(tracer, a.Sentiment, cfg.WarmPollSecs)
	startWarmerFunc(warmer, ctx)

	if _, err := startTelegramBotFunc(ctx, cfg.TelegramBotToken, a.Predictions); err != nil {
		log.Error("Telegram bot failed to start", "err", err)
	}

	h := newHandlerFunc(tracer, a.Predictions, cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.DefaultServiceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", "err", err)
	}

	log.Info("Server exiting")
}
