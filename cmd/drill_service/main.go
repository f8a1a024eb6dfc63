package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mathdrill/internal/api"
	"mathdrill/internal/auth"
	"mathdrill/internal/config"
	"mathdrill/internal/database"
	"mathdrill/internal/grpc"
	"mathdrill/internal/server"
	"mathdrill/internal/session"
	"mathdrill/internal/worksheet"
)

const sessionSweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки настроек: %v", err)
	}

	store, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Ошибка открытия базы данных: %v", err)
	}
	defer store.Close()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	log.Printf("Время жизни токена: %.0f минут", tokens.TTL().Minutes())
	if cfg.JWTSecret == "" {
		log.Printf("ВНИМАНИЕ: JWT_SECRET не задан, используется секрет по умолчанию")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager()
	sessions.StartSweeper(ctx, cfg.SessionTTL, sessionSweepInterval)

	handler := api.NewHandler(store, tokens, sessions, cfg.Presets)
	router := server.New(cfg.Presets, worksheet.DefaultConfig()).NewRouter(api.SetupRouter(handler))

	grpcServer := grpc.NewServer(cfg.Presets)
	go func() {
		if err := grpc.StartServer(grpcServer, ":"+cfg.GRPCPort); err != nil {
			log.Printf("Ошибка gRPC сервера: %v", err)
			stop()
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP сервер запущен на порту %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Ошибка HTTP сервера: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("Остановка сервисов...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки HTTP сервера: %v", err)
	}
	grpcServer.GracefulStop()
	log.Printf("Сервисы остановлены")
}
