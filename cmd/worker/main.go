package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/avraam311/image-compressor/internal/infra/kafka"
	"github.com/avraam311/image-compressor/internal/infra/worker"
	"github.com/avraam311/image-compressor/internal/repository/compressions"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

const (
	configFilePath = "config/local.yaml"
	envFilePath    = ".env"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zlog.Init()
	cfg := config.New()
	if err := cfg.LoadEnvFiles(envFilePath); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to load env file, using environment only")
	}
	cfg.EnableEnv("")
	if err := cfg.LoadConfigFiles(configFilePath); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config file")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("db.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("db.max_idle_conns"),
		ConnMaxLifetime: cfg.GetDuration("db.conn_max_lifetime"),
	}
	slavesDNSs := []string{}
	masterDNS := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.GetString("DB_USER"), cfg.GetString("DB_PASSWORD"),
		cfg.GetString("DB_HOST"), cfg.GetString("DB_PORT"),
		cfg.GetString("DB_NAME"), cfg.GetString("DB_SSL_MODE"),
	)
	db, err := dbpg.New(masterDNS, slavesDNSs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	kafkaCons := kafka.New(cfg.GetStringSlice("kafka.brokers"), cfg.GetString("kafka.topic"), cfg.GetString("kafka.group_id"))
	repo := compressions.NewRepository(db)
	retryStrategy := retry.Strategy{
		Attempts: cfg.GetInt("retry.attempts"),
		Delay:    cfg.GetDuration("retry.delay"),
		Backoff:  cfg.GetFloat64("retry.backoff"),
	}

	work := worker.New(kafkaCons, repo, cfg.GetInt("worker.count"), retryStrategy)
	done := make(chan error, 1)
	go func() {
		done <- work.Run(ctx)
	}()
	zlog.Logger.Info().Int("workers", cfg.GetInt("worker.count")).Msg("worker is running")

	var runErr error
	select {
	case <-ctx.Done():
		zlog.Logger.Info().Msg("shutdown signal received")
		runErr = <-done
	case runErr = <-done:
	}

	if err := kafkaCons.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer")
	}

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}
	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	if runErr != nil {
		zlog.Logger.Fatal().Err(runErr).Msg("worker stopped, uncommitted events will be redelivered on restart")
	}
}
