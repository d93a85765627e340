package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/festisolde/internal/config"
	"github.com/example/festisolde/internal/email"
	"github.com/example/festisolde/internal/infrastructure/kafka"
	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/notification"
)

// consumerGroup is the dedicated group for merchant notifications.
const consumerGroup = "merchant-notifier"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logging.SetLevel(cfg.LogLevel)
	logger := logging.New("notifier")

	logger.Info().
		Strs("kafka_brokers", cfg.KafkaBrokers).
		Str("kafka_topic", cfg.KafkaOrderTopic).
		Str("group", consumerGroup).
		Str("smtp", cfg.SMTPHost+":"+cfg.SMTPPort).
		Str("merchant_email", cfg.MerchantEmail).
		Msg("starting merchant notifier")

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, cfg.MerchantEmail)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, consumerGroup)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("consumer stopped")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	cancel()
	<-done
}
