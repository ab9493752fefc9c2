package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ashwinrao/auction-arena/internal/api"
	"github.com/ashwinrao/auction-arena/internal/archive"
	"github.com/ashwinrao/auction-arena/internal/config"
	"github.com/ashwinrao/auction-arena/internal/directory"
	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/engine"
	"github.com/ashwinrao/auction-arena/internal/store/redisstore"
	"github.com/ashwinrao/auction-arena/internal/websocket"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	if cfg.Environment == "development" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	client, err := redisstore.Connect(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to redis")
	}
	roomStore := redisstore.New(client)

	var archiveRepo archive.Repository
	if cfg.DatabaseURL != "" {
		db, err := archive.NewConnection(cfg.DatabaseURL)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to archive database")
		}
		archiveRepo = archive.NewPostgresRepository(db)
	} else {
		logrus.Warn("DATABASE_URL not set, history and export disabled")
	}

	var onComplete func(*domain.Room)
	if archiveRepo != nil {
		onComplete = func(room *domain.Room) {
			rec, err := archive.Snapshot(room, time.Now().UTC())
			if err != nil {
				logrus.WithError(err).WithField("room", room.Code).Error("failed to snapshot completed auction")
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := archiveRepo.Save(ctx, rec); err != nil {
				logrus.WithError(err).WithField("room", room.Code).Error("failed to archive completed auction")
				return
			}
			logrus.WithField("room", room.Code).Info("auction archived")
		}
	}

	eng := engine.New(roomStore)
	dir := directory.New(roomStore)
	hub := websocket.NewHub(roomStore, eng, onComplete)

	router := api.NewRouter(api.Deps{
		Directory:  dir,
		Engine:     eng,
		Store:      roomStore,
		Hub:        hub,
		Config:     cfg,
		Archive:    archiveRepo,
		OnComplete: onComplete,
	})

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}

	logrus.Info("server stopped")
}
