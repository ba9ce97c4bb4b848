package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webviva/shop-api/internal/domain"
	"github.com/webviva/shop-api/internal/testutil"
)

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	now := time.Now().UTC().Truncate(time.Millisecond)

	newOrder := func(userID int64, number string) domain.Order {
		return domain.Order{
			UserID:        userID,
			OrderNumber:   number,
			Status:        domain.OrderStatusPending,
			PaymentStatus: domain.PaymentStatusPending,
			TotalAmount:   decimal.RequireFromString("3000.00"),
			PaymentMethod: "PAYHERE",
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	t.Run("CreateOrder persists and returns id", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		userID := testutil.InsertUser(t, ctx, pool, "Nimali", "Perera", "nimali@example.com")

		var orderID int64
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			id, err := repo.CreateOrder(txCtx, newOrder(userID, "ORD-1000"))
			if err != nil {
				return err
			}
			orderID = id
			return repo.CreateOrderItem(txCtx, domain.OrderItem{
				OrderID:   id,
				ProductID: 1,
				Color:     "Black",
				Size:      "L",
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("1500.00"),
				LineTotal: decimal.RequireFromString("3000.00"),
				CreatedAt: now,
			})
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}
		if orderID == 0 {
			t.Fatalf("expected order id to be set")
		}

		summary, err := repo.GetOrderSummary(ctx, orderID)
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if summary.OrderNumber != "ORD-1000" {
			t.Fatalf("expected ORD-1000, got %s", summary.OrderNumber)
		}
		if summary.CustomerName != "Nimali Perera" {
			t.Fatalf("expected customer name, got %s", summary.CustomerName)
		}
		if !summary.TotalAmount.Equal(decimal.RequireFromString("3000.00")) {
			t.Fatalf("expected total 3000.00, got %s", summary.TotalAmount)
		}

		items, err := repo.ListOrderItems(ctx, orderID)
		if err != nil {
			t.Fatalf("list items: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if !items[0].LineTotal.Equal(decimal.RequireFromString("3000.00")) {
			t.Fatalf("expected line total 3000.00, got %s", items[0].LineTotal)
		}
	})

	t.Run("CreateOrder maps missing user to ErrUserNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			_, err := repo.CreateOrder(txCtx, newOrder(999, "ORD-1001"))
			return err
		})
		if err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("CreateOrder rejects duplicate order number", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		userID := testutil.InsertUser(t, ctx, pool, "Nimali", "Perera", "nimali@example.com")

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			_, err := repo.CreateOrder(txCtx, newOrder(userID, "ORD-1002"))
			return err
		})
		if err != nil {
			t.Fatalf("first create failed: %v", err)
		}

		err = repo.WithTx(ctx, func(txCtx context.Context) error {
			_, err := repo.CreateOrder(txCtx, newOrder(userID, "ORD-1002"))
			return err
		})
		if err == nil {
			t.Fatalf("expected duplicate order number to fail")
		}
	})

	t.Run("item insert failure rolls back the order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		userID := testutil.InsertUser(t, ctx, pool, "Nimali", "Perera", "nimali@example.com")

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			id, err := repo.CreateOrder(txCtx, newOrder(userID, "ORD-1003"))
			if err != nil {
				return err
			}
			// quantity 0 violates the table check constraint
			return repo.CreateOrderItem(txCtx, domain.OrderItem{
				OrderID:   id,
				ProductID: 1,
				Quantity:  0,
				UnitPrice: decimal.RequireFromString("10.00"),
				LineTotal: decimal.Zero,
				CreatedAt: now,
			})
		})
		if err == nil {
			t.Fatalf("expected tx to fail")
		}

		orders, err := repo.ListOrders(ctx)
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		if len(orders) != 0 {
			t.Fatalf("expected no orders after rollback, got %d", len(orders))
		}
	})

	t.Run("GetOrderSummary missing order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if _, err := repo.GetOrderSummary(ctx, 404); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("ListOrdersByUser filters by user", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		alice := testutil.InsertUser(t, ctx, pool, "Alice", "Silva", "alice@example.com")
		bob := testutil.InsertUser(t, ctx, pool, "Bob", "Fernando", "bob@example.com")
		testutil.InsertOrder(t, ctx, pool, newOrder(alice, "ORD-2001"))
		testutil.InsertOrder(t, ctx, pool, newOrder(alice, "ORD-2002"))
		testutil.InsertOrder(t, ctx, pool, newOrder(bob, "ORD-2003"))

		orders, err := repo.ListOrdersByUser(ctx, alice)
		if err != nil {
			t.Fatalf("list user orders: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		for _, order := range orders {
			if order.UserID != alice {
				t.Fatalf("expected only alice's orders, got user %d", order.UserID)
			}
		}
	})

	t.Run("UpdateOrderStatus updates row or reports missing", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		userID := testutil.InsertUser(t, ctx, pool, "Nimali", "Perera", "nimali@example.com")
		orderID := testutil.InsertOrder(t, ctx, pool, newOrder(userID, "ORD-3001"))

		later := now.Add(time.Minute)
		if err := repo.UpdateOrderStatus(ctx, orderID, domain.OrderStatusCancelled, later); err != nil {
			t.Fatalf("update status: %v", err)
		}

		order, err := repo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if order.Status != domain.OrderStatusCancelled {
			t.Fatalf("expected CANCELLED, got %s", order.Status)
		}

		if err := repo.UpdateOrderStatus(ctx, 404, domain.OrderStatusCancelled, later); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}
