package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wasender/internal/api"
	"wasender/internal/config"
	"wasender/internal/database"
	"wasender/internal/dispatch"
	"wasender/internal/logx"
	"wasender/internal/metrics"
	"wasender/internal/pacing"
	"wasender/internal/promoter"
	"wasender/internal/quota"
	"wasender/internal/record"
	"wasender/internal/store"
	"wasender/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	logx.Init()
	defer logx.Sync()

	db, err := database.Open(cfg)
	if err != nil {
		logx.L().Fatalw("database_open_failed", "error", err)
	}

	st := store.New(db)
	client := whatsapp.NewClient(st)
	meter := quota.NewMeter(st)
	recorder := record.NewRecorder(st, logx.L())

	pacer, err := pacing.New(pacing.Config{
		MinDelay:   cfg.MinSendDelay,
		MaxDelay:   cfg.MaxSendDelay,
		QuietStart: cfg.QuietHoursStart,
		QuietEnd:   cfg.QuietHoursEnd,
		PauseFor:   cfg.QuietPause,
	})
	if err != nil {
		logx.L().Fatalw("pacing_config_invalid", "error", err)
	}

	manager := dispatch.NewManager(client, meter, recorder, pacer, dispatch.SystemClock{}, logx.L())
	prom := promoter.New(st, manager, cfg.PromoteBatchSize, cfg.VariationEnabled, logx.L())

	// Promotion ticker: the periodic trigger that moves due scheduled
	// batches into active dispatch.
	go func() {
		ticker := time.NewTicker(cfg.PromoteInterval)
		defer ticker.Stop()
		for now := range ticker.C {
			if n := prom.PromoteDue(context.Background(), now); n > 0 {
				logx.L().Infow("batches_promoted", "count", n)
			}
		}
	}()

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	dispatchHandler := api.NewDispatchHandler(manager, prom, cfg.VariationEnabled)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/campaigns", dispatchHandler.SubmitCampaign)
		apiGroup.GET("/campaigns/:tenantId/progress", dispatchHandler.GetProgress)
		apiGroup.POST("/campaigns/:tenantId/cancel", dispatchHandler.CancelCampaign)
		apiGroup.POST("/scheduler/promote", dispatchHandler.PromoteDue)
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		logx.L().Infow("server_starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.L().Fatalw("server_failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// Wake any campaign parked on a pacing delay or quiet-hours pause so
	// the process does not hang on a multi-minute sleep.
	manager.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.L().Errorw("server_shutdown_failed", "error", err)
	}
	logx.L().Infow("server_stopped")
}
