// Command sweep runs the expired-food check once. It is meant to be
// scheduled daily, shortly after midnight in APP_TIMEZONE.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"miaumarket-be/internal/config"
	"miaumarket-be/internal/db"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/metrics"
	"miaumarket-be/internal/product"

	"go.uber.org/zap"
)

// Swapped in tests.
var initDBFunc = db.NewDatabase

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	conn, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	rec, err := metrics.NewRecorder()
	if err != nil {
		return err
	}

	created, err := product.NewExpirySweeper(conn, rec, cfg.Location()).Sweep(ctx)
	if err != nil {
		return err
	}

	logger.L().Info("expiry sweep complete", zap.Int("notifications_created", created))
	return nil
}
