package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/webviva/shop-api/internal/domain"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// MarkOrderPaid is the single write path a verified notification drives. It
// sets absolute target values, so redelivering the same notification re-runs
// the same UPDATE to the same end state.
func (r *PaymentRepository) MarkOrderPaid(ctx context.Context, orderID int64, now time.Time) (bool, error) {
	const stmt = `
UPDATE orders
SET payment_status = $2, status = $3, updated_at = $4
WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt,
		orderID,
		domain.PaymentStatusPaid,
		domain.OrderStatusConfirmed,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PaymentRepository) RecordPaymentEvent(ctx context.Context, event domain.PaymentEvent) error {
	const stmt = `
INSERT INTO payment_events (id, order_ref, amount, currency, status_code, outcome, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, stmt,
		event.ID,
		event.OrderRef,
		event.Amount,
		event.Currency,
		event.StatusCode,
		event.Outcome,
		event.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("record payment event: %w", err)
	}
	return nil
}
