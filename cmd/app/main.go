package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/avraam311/image-compressor/internal/api/handlers/images"
	"github.com/avraam311/image-compressor/internal/api/server"
	"github.com/avraam311/image-compressor/internal/infra/codec"
	"github.com/avraam311/image-compressor/internal/infra/events"
	service "github.com/avraam311/image-compressor/internal/service/images"
	"github.com/avraam311/image-compressor/pkg/pool"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/go-playground/validator/v10"
)

const (
	configFilePath = "config/local.yaml"
	envFilePath    = ".env"

	defaultShutdownTimeout = 5 * time.Second
	defaultEncodeBuffer    = 256 << 10
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zlog.Init()
	val := validator.New()
	cfg := config.New()
	if err := cfg.LoadEnvFiles(envFilePath); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to load env file, using environment only")
	}
	cfg.EnableEnv("")
	if err := cfg.LoadConfigFiles(configFilePath); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config file")
	}

	encodeBuffer := cfg.GetInt("image.encode_buffer_bytes")
	if encodeBuffer <= 0 {
		encodeBuffer = defaultEncodeBuffer
	}
	imageCodec := codec.New(int64(cfg.GetInt("image.max_pixels")), pool.NewBufferPool(encodeBuffer))

	var (
		pub       service.Publisher
		kafkaProd *kafka.Producer
	)
	if cfg.GetBool("journal.enabled") {
		kafkaProd = kafka.NewProducer(cfg.GetStringSlice("kafka.brokers"), cfg.GetString("kafka.topic"))
		pub = events.NewPublisher(kafkaProd, retry.Strategy{
			Attempts: cfg.GetInt("retry.attempts"),
			Delay:    cfg.GetDuration("retry.delay"),
			Backoff:  cfg.GetFloat64("retry.backoff"),
		})
		zlog.Logger.Info().Str("topic", cfg.GetString("kafka.topic")).Msg("compression journal enabled")
	}

	defaultQuality, err := handlers.ParseDefaultQuality(cfg.GetString("image.default_quality"))
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid image.default_quality")
	}

	srvc := service.NewService(imageCodec, pub)
	hand := handlers.NewHandler(srvc, val, defaultQuality, int64(cfg.GetInt("server.max_upload_bytes")))

	router := server.NewRouter(cfg.GetString("server.gin_mode"), hand)
	srv := server.NewServer(cfg.GetString("server.port"), router)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to run server")
		}
	}()
	zlog.Logger.Info().Str("addr", srv.Addr).Msg("server is running")

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownTimeout := cfg.GetDuration("server.shutdown_timeout")
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	shutdownCtx, shutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdown()

	zlog.Logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	if kafkaProd != nil {
		if err := kafkaProd.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close kafka producer")
		}
	}
}
