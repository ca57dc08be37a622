package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"pv-sizing/internal/api/handlers"
	"pv-sizing/internal/api/middleware"
	"pv-sizing/internal/store"
)

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	dbPath := os.Getenv("SIZING_DB")
	if dbPath == "" {
		dbPath = "sizing.db"
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)

	st, err := store.Open(context.Background(), dbPath)
	if err != nil {
		logger.Error("failed to open run store", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	st.SetLogger(logger.With("module", "store"))

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery())

	sizeHandler := handlers.NewSizeHandler(st, logger.With("module", "size"))
	runsHandler := handlers.NewRunsHandler(st)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/size", sizeHandler.RunSize)
		api.POST("/size/sensitivity", sizeHandler.RunSensitivity)

		api.GET("/runs", runsHandler.ListRuns)
		api.GET("/runs/:id", runsHandler.GetRun)
		api.GET("/runs/:id/surface", runsHandler.GetSurface)
	}

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	addr := fmt.Sprintf(":%s", port)
	logger.Info("starting API server", "addr", addr, "db", dbPath)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
