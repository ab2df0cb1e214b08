package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/metrics"
	"miaumarket-be/internal/notification"
	"miaumarket-be/internal/product"
	"miaumarket-be/internal/user"
	"miaumarket-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// PlaceOrder locks the products, writes the order with its lines,
	// decrements stock and notifies admins and the buyer, all in one
	// transaction.
	PlaceOrder(ctx context.Context, p PlaceOrderParams) (*Order, error)
	// UpdateStatus moves the order forward and notifies its owner in the
	// same transaction.
	UpdateStatus(ctx context.Context, id uint, next Status) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}

type repository struct {
	db      *sql.DB
	metrics *metrics.Recorder
	now     func() time.Time
}

func NewRepository(conn *sql.DB, rec *metrics.Recorder) Repository {
	return &repository{db: conn, metrics: rec, now: time.Now}
}

const orderColumns = `o.id, o.invoice_number, o.user_id, u.first_name || ' ' || u.last_name,
		o.total, o.payment_method, o.status, o.shipping_address, o.shipping_phone, o.created_at, o.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(&o.ID, &o.InvoiceNumber, &o.UserID, &o.CustomerName, &o.Total, &o.PaymentMethod,
		&status, &o.ShippingAddress, &o.ShippingPhone, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}

func (r *repository) PlaceOrder(ctx context.Context, p PlaceOrderParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PlaceOrder"),
		zap.Uint("user_id", p.UserID),
		zap.Int("line_count", len(p.Lines)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	products := product.NewRepository(tx)
	users := user.NewRepository(tx)
	notes := notification.NewRepository(tx, r.metrics)

	// Lock in ascending id order so concurrent orders over the same products
	// cannot deadlock.
	wanted, err := p.quantities()
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked, err := products.LockForUpdate(ctx, ids)
	if err != nil {
		log.Error("failed to lock products", zap.Error(err))
		return nil, err
	}
	byID := make(map[uint]product.Product, len(locked))
	for _, prod := range locked {
		byID[prod.ID] = prod
	}

	for _, id := range ids {
		prod, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
		}
		if prod.Stock < wanted[id] {
			log.Info("insufficient stock",
				zap.Uint("product_id", id),
				zap.Int("stock", prod.Stock),
				zap.Int("requested", wanted[id]),
			)
			return nil, fmt.Errorf("%w para %q: disponible %d, solicitado %d",
				ErrInsufficientStock, prod.Title, prod.Stock, wanted[id])
		}
	}

	buyer, err := users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	o := &Order{
		InvoiceNumber:   utils.GenerateInvoiceNumber(r.now()),
		UserID:          p.UserID,
		CustomerName:    strings.TrimSpace(buyer.FirstName + " " + buyer.LastName),
		Total:           p.Total,
		PaymentMethod:   p.PaymentMethod,
		Status:          StatusPending,
		ShippingAddress: p.ShippingAddress,
		ShippingPhone:   p.ShippingPhone,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (invoice_number, user_id, total, payment_method, status, shipping_address, shipping_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		o.InvoiceNumber, o.UserID, o.Total, o.PaymentMethod, string(o.Status), o.ShippingAddress, o.ShippingPhone,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i, l := range p.Lines {
		line := Line{
			OrderID:      o.ID,
			ProductID:    l.ProductID,
			ProductTitle: byID[l.ProductID].Title,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Subtotal:     l.subtotal(),
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal,
		).Scan(&line.ID)
		if err != nil {
			log.Error("failed to insert order line", zap.Int("line_index", i), zap.Error(err))
			return nil, fmt.Errorf("insert order line: %w", err)
		}
		o.Lines = append(o.Lines, line)
	}

	for _, id := range ids {
		ok, err := products.DecrementStock(ctx, id, wanted[id])
		if err != nil {
			log.Error("failed to decrement stock", zap.Uint("product_id", id), zap.Error(err))
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w para %q", ErrInsufficientStock, byID[id].Title)
		}
	}

	admins, err := users.ListAdminIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	for _, adminID := range admins {
		if _, err := notes.Push(ctx, newOrderAlert(adminID, o), notification.AdminCap); err != nil {
			return nil, err
		}
	}
	if _, err := notes.Push(ctx, orderConfirmation(o), notification.CapFor(buyer.IsStaff)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("order placed",
		zap.Uint("order_id", o.ID),
		zap.String("invoice_number", o.InvoiceNumber),
		zap.Int("admins_notified", len(admins)),
	)
	return o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, next Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.Uint("order_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if !Status(current).CanMoveTo(next) {
		return nil, fmt.Errorf("%w: de %s a %s", ErrInvalidTransition, current, next)
	}

	o, err := scanOrder(tx.QueryRowContext(ctx, `
		WITH updated AS (
			UPDATE orders SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING *
		)
		SELECT `+orderColumns+`
		FROM updated o
		JOIN users u ON u.id = o.user_id`,
		string(next), id,
	))
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, fmt.Errorf("update order status: %w", err)
	}

	staff, err := user.NewRepository(tx).IsStaff(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	notes := notification.NewRepository(tx, r.metrics)
	if _, err := notes.Push(ctx, statusNotice(o), notification.CapFor(staff)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit status update", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("order status updated", zap.String("from", current), zap.String("to", string(next)))
	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, rows)
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, rows)
}

// withLines drains rows and attaches every order's lines with a second query.
func (r *repository) withLines(ctx context.Context, rows *sql.Rows) ([]Order, error) {
	defer rows.Close()

	orders := []Order{}
	index := map[uint]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = int64(o.ID)
	}

	lineRows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.order_id, l.product_id, p.title, l.quantity, l.unit_price, l.subtotal
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = ANY($1)
		ORDER BY l.order_id, l.id`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l Line
		if err := lineRows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductTitle, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, err
		}
		i := index[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return orders, lineRows.Err()
}
