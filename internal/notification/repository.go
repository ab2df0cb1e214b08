package notification

import (
	"context"
	"fmt"

	"miaumarket-be/internal/db"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/metrics"

	"go.uber.org/zap"
)

type Repository interface {
	// Push inserts n and deletes the recipient's notifications beyond keep.
	Push(ctx context.Context, n *Notification, keep int) (*Notification, error)
	ListRecent(ctx context.Context, userID uint, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	HasExpiryAlert(ctx context.Context, userID, productID uint) (bool, error)
}

type repository struct {
	db      db.DBTX
	metrics *metrics.Recorder
}

// NewRepository accepts a pool or a transaction. rec may be nil.
func NewRepository(conn db.DBTX, rec *metrics.Recorder) Repository {
	return &repository{db: conn, metrics: rec}
}

func (r *repository) Push(ctx context.Context, n *Notification, keep int) (*Notification, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Push"),
		zap.Uint("user_id", n.UserID),
	)

	created := *n
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, title, message, type, order_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at`,
		n.UserID, n.Title, n.Message, string(n.Type), n.OrderID,
	).Scan(&created.ID, &created.IsRead, &created.CreatedAt)
	if err != nil {
		log.Error("failed to insert notification", zap.Error(err))
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE user_id = $1
		  AND id NOT IN (
			SELECT id FROM notifications
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		  )`,
		n.UserID, keep,
	)
	if err != nil {
		log.Error("failed to trim notifications", zap.Error(err))
		return nil, fmt.Errorf("trim notifications: %w", err)
	}

	evicted, _ := res.RowsAffected()
	if evicted > 0 {
		log.Debug("notifications evicted", zap.Int64("count", evicted), zap.Int("cap", keep))
	}
	r.metrics.NotificationCreated(ctx, string(n.Type))
	r.metrics.NotificationsEvicted(ctx, evicted)

	return &created, nil
}

func (r *repository) ListRecent(ctx context.Context, userID uint, limit int) ([]Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, type, order_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var (
			n       Notification
			typ     string
			orderID *int64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &orderID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = Type(typ)
		if orderID != nil {
			id := uint(*orderID)
			n.OrderID = &id
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead is idempotent: Postgres reports the row as affected even when
// is_read was already true, so zero rows means the id is not the caller's.
func (r *repository) MarkRead(ctx context.Context, userID, id uint) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) HasExpiryAlert(ctx context.Context, userID, productID uint) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND message LIKE $3
		)`,
		userID, string(TypeProductExpired), "%"+productMarker(productID),
	).Scan(&exists)
	return exists, err
}
