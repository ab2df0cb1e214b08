package product

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/metrics"
	"miaumarket-be/internal/notification"
	"miaumarket-be/internal/user"
	"miaumarket-be/internal/utils"

	"go.uber.org/zap"
)

// sweepLockKey serialises concurrent sweeps (HTTP trigger and cron binary)
// so an admin cannot receive the same alert twice.
const sweepLockKey int64 = 0x6d69617573776570

// ExpirySweeper alerts every admin about food products expiring today.
type ExpirySweeper struct {
	db      *sql.DB
	metrics *metrics.Recorder
	loc     *time.Location
	now     func() time.Time
}

func NewExpirySweeper(conn *sql.DB, rec *metrics.Recorder, loc *time.Location) *ExpirySweeper {
	return &ExpirySweeper{db: conn, metrics: rec, loc: loc, now: time.Now}
}

// Sweep runs SweepOn for the current calendar day.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	return s.SweepOn(ctx, utils.Today(s.now(), s.loc))
}

// SweepOn creates one producto_caducado notification per (admin, product)
// pair that has not been alerted yet and returns how many were created.
func (s *ExpirySweeper) SweepOn(ctx context.Context, day time.Time) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "sweeper"),
		zap.String("day", day.Format(dateLayout)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sweep: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, sweepLockKey); err != nil {
		return 0, fmt.Errorf("acquire sweep lock: %w", err)
	}

	expired, err := NewRepository(tx).ListExpiredFoodOn(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("list expired products: %w", err)
	}
	if len(expired) == 0 {
		log.Info("no food products expired today")
		return 0, nil
	}

	admins, err := user.NewRepository(tx).ListAdminIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list admins: %w", err)
	}

	notes := notification.NewRepository(tx, s.metrics)
	created := 0
	for _, p := range expired {
		log.Info("expired food product", zap.Uint("product_id", p.ID), zap.String("title", p.Title))

		for _, adminID := range admins {
			seen, err := notes.HasExpiryAlert(ctx, adminID, p.ID)
			if err != nil {
				return 0, err
			}
			if seen {
				continue
			}
			alert := notification.ExpiredProductAlert(adminID, p.ID, p.Title)
			if _, err := notes.Push(ctx, alert, notification.AdminCap); err != nil {
				return 0, err
			}
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sweep: %w", err)
	}
	committed = true

	log.Info("expiry sweep finished", zap.Int("products", len(expired)), zap.Int("created", created))
	return created, nil
}
