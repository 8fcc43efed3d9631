package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/deshimart/commerce/kafka"
	"github.com/deshimart/commerce/pkg/logger"
	"github.com/deshimart/commerce/pkg/tracing"
)

// The notifier consumes order events and mails customers about them. It is a
// separate binary so a slow SMTP relay never blocks checkout.
func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "commerce-notifier")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().
		Str("service", serviceName).
		Msg("Starting notifier")

	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	brokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	consumer, err := kafka.NewConsumer(brokers, "commerce-notifier", []string{kafka.TopicOrderEvents})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	mailer := newMailerFromEnv()

	consumer.RegisterHandler(kafka.EventTypeOrderPlaced, func(ctx context.Context, payload []byte) error {
		var event kafka.OrderPlacedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to decode order placed event: %w", err)
		}
		return mailer.sendOrderConfirmation(ctx, event)
	})

	consumer.RegisterHandler(kafka.EventTypeOrderCancelled, func(ctx context.Context, payload []byte) error {
		var event kafka.OrderCancelledEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to decode order cancelled event: %w", err)
		}
		return mailer.sendCancellationNotice(ctx, event)
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Consumer stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	logger.Logger.Info().Msg("Shutting down notifier...")
}

// mailer sends notification emails over plain SMTP. With no SMTP_HOST
// configured it logs the email instead, which is what development and CI use.
type mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func newMailerFromEnv() *mailer {
	return &mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     getEnv("SMTP_PORT", "587"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getEnv("SMTP_FROM", "orders@deshimart.example"),
	}
}

func (m *mailer) sendOrderConfirmation(ctx context.Context, event kafka.OrderPlacedEvent) error {
	if event.CustomerEmail == "" {
		logger.Warn(ctx).Str("order_number", event.OrderNumber).Msg("Order has no customer email, skipping confirmation")
		return nil
	}

	var lines strings.Builder
	for _, item := range event.Items {
		fmt.Fprintf(&lines, "  %s x%d  %.2f\r\n", item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}

	subject := fmt.Sprintf("Order %s confirmed", event.OrderNumber)
	body := fmt.Sprintf(
		"Thank you for your order!\r\n\r\nOrder number: %s\r\n\r\nItems:\r\n%s\r\nSubtotal: %.2f\r\nShipping: %.2f\r\nTotal: %.2f\r\n\r\nPayment method: %s\r\n",
		event.OrderNumber, lines.String(), event.Subtotal, event.ShippingCost, event.Total, event.PaymentMethod,
	)

	return m.send(ctx, event.CustomerEmail, subject, body)
}

func (m *mailer) sendCancellationNotice(ctx context.Context, event kafka.OrderCancelledEvent) error {
	// Cancellation events carry no email snapshot; notify operations instead
	logger.Info(ctx).
		Str("order_number", event.OrderNumber).
		Str("reason", event.Reason).
		Msg("Order cancelled")
	return nil
}

func (m *mailer) send(ctx context.Context, to, subject, body string) error {
	if m.host == "" {
		logger.Info(ctx).
			Str("to", to).
			Str("subject", subject).
			Msg("SMTP not configured, logging email instead")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	logger.Info(ctx).Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
