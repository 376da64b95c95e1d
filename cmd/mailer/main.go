// The mailer worker consumes account events off Kafka and delivers the
// verification and password reset emails.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/campus-agora/market-svc/config"
	"github.com/campus-agora/market-svc/infra/queue"
	"github.com/campus-agora/market-svc/internal/mailer"
)

func main() {
	cfg := config.LoadConfig()

	m := mailer.New(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.MailFrom,
		cfg.MailFromName,
		cfg.VerifyBaseURL,
		cfg.ResetBaseURL,
	)

	consumer := queue.NewKafkaConsumer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
		mailer.NewHandler(m),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("mailer worker listening on", cfg.KafkaBroker)
	consumer.Listen(ctx)
	log.Println("mailer worker stopped")
}
