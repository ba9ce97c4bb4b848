package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/webviva/shop-api/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) (int64, error) {
	const stmt = `
INSERT INTO orders (user_id, order_number, status, payment_status, total_amount,
	shipping_address, payment_method, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

	var id int64
	err := r.queryRow(ctx, stmt,
		order.UserID,
		order.OrderNumber,
		order.Status,
		order.PaymentStatus,
		order.TotalAmount,
		order.ShippingAddress,
		order.PaymentMethod,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			// Millisecond-granularity order numbers can collide under
			// concurrent checkouts; the whole transaction rolls back.
			return 0, fmt.Errorf("create order: order number taken: %w", err)
		}
		return 0, fmt.Errorf("create order: %w", err)
	}
	return id, nil
}

func (r *OrderRepository) CreateOrderItem(ctx context.Context, item domain.OrderItem) error {
	const stmt = `
INSERT INTO order_items (order_id, product_id, product_name, color, size,
	quantity, unit_price, total_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		item.OrderID,
		item.ProductID,
		item.ProductName,
		item.Color,
		item.Size,
		item.Quantity,
		item.UnitPrice,
		item.LineTotal,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

const orderColumns = `o.id, o.user_id, o.order_number, o.status, o.payment_status,
	o.total_amount, o.shipping_address, o.payment_method, o.created_at, o.updated_at`

func (r *OrderRepository) GetOrderSummary(ctx context.Context, id int64) (domain.OrderSummary, error) {
	query := `
SELECT ` + orderColumns + `, u.first_name, u.last_name, u.email
FROM orders o
LEFT JOIN users u ON o.user_id = u.id
WHERE o.id = $1`

	summary, err := scanOrderSummary(r.queryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.OrderSummary{}, domain.ErrOrderNotFound
		}
		return domain.OrderSummary{}, fmt.Errorf("get order: %w", err)
	}
	return summary, nil
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, id int64) (domain.Order, error) {
	query := `
SELECT ` + orderColumns + `
FROM orders o
WHERE o.id = $1
FOR UPDATE`

	order, err := scanOrder(r.queryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order for update: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]domain.OrderSummary, error) {
	query := `
SELECT ` + orderColumns + `, u.first_name, u.last_name, u.email
FROM orders o
LEFT JOIN users u ON o.user_id = u.id
ORDER BY o.created_at DESC`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var summaries []domain.OrderSummary
	for rows.Next() {
		summary, err := scanOrderSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return summaries, nil
}

func (r *OrderRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	query := `
SELECT ` + orderColumns + `
FROM orders o
WHERE o.user_id = $1
ORDER BY o.created_at DESC`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list user orders: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const query = `
SELECT id, order_id, product_id, product_name, color, size, quantity,
	unit_price, total_price, created_at
FROM order_items
WHERE order_id = $1
ORDER BY id`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Color, &it.Size, &it.Quantity,
			&it.UnitPrice, &it.LineTotal, &it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list order items: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return items, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus, now time.Time) error {
	const stmt = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status, now)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &o.PaymentStatus,
		&o.TotalAmount, &o.ShippingAddress, &o.PaymentMethod,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func scanOrderSummary(row pgx.Row) (domain.OrderSummary, error) {
	var s domain.OrderSummary
	var firstName, lastName, email *string
	err := row.Scan(
		&s.ID, &s.UserID, &s.OrderNumber, &s.Status, &s.PaymentStatus,
		&s.TotalAmount, &s.ShippingAddress, &s.PaymentMethod,
		&s.CreatedAt, &s.UpdatedAt,
		&firstName, &lastName, &email,
	)
	if err != nil {
		return domain.OrderSummary{}, err
	}
	if firstName != nil && lastName != nil {
		s.CustomerName = *firstName + " " + *lastName
	} else {
		s.CustomerName = "Unknown Customer"
	}
	if email != nil {
		s.CustomerEmail = *email
	}
	return s, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
