package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/webviva/shop-api/internal/app"
	"github.com/webviva/shop-api/internal/domain"
)

func testOrderDetail() app.OrderDetail {
	return app.OrderDetail{
		OrderSummary: domain.OrderSummary{
			Order: domain.Order{
				ID:            5,
				UserID:        7,
				OrderNumber:   "ORD-1741944600000",
				Status:        domain.OrderStatusConfirmed,
				PaymentStatus: domain.PaymentStatusPaid,
				TotalAmount:   decimal.RequireFromString("3000.00"),
			},
			CustomerName:  "Nimali Perera",
			CustomerEmail: "nimali@example.com",
		},
		Items: []domain.OrderItem{
			{OrderID: 5, ProductID: 1, ProductName: "Tee", Quantity: 2, UnitPrice: decimal.RequireFromString("1500.00"), LineTotal: decimal.RequireFromString("3000.00")},
		},
	}
}

func TestHandleListOrders(t *testing.T) {
	t.Parallel()

	t.Run("lists orders", func(t *testing.T) {
		svc := &stubOrderService{details: []app.OrderDetail{testOrderDetail()}}

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()

		HandleListOrders(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `"orderNumber":"ORD-1741944600000"`) {
			t.Fatalf("expected order number in body, got %q", body)
		}
		if !strings.Contains(body, `"customerName":"Nimali Perera"`) {
			t.Fatalf("expected customer name in body, got %q", body)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		svc := &stubOrderService{}

		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		rec := httptest.NewRecorder()

		HandleListOrders(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

func TestHandleOrderRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "get order",
			method:         http.MethodGet,
			path:           "/orders/5",
			expectedStatus: http.StatusOK,
			expectedSubstr: `"id":5`,
		},
		{
			name:           "get order bad id",
			method:         http.MethodGet,
			path:           "/orders/abc",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"invalid_id"`,
		},
		{
			name:           "get order not found",
			method:         http.MethodGet,
			path:           "/orders/5",
			serviceErr:     domain.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: `"code":"order_not_found"`,
		},
		{
			name:           "list user orders",
			method:         http.MethodGet,
			path:           "/orders/user/7",
			expectedStatus: http.StatusOK,
			expectedSubstr: `"userId":7`,
		},
		{
			name:           "list user orders bad id",
			method:         http.MethodGet,
			path:           "/orders/user/zero",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"invalid_id"`,
		},
		{
			name:           "update status",
			method:         http.MethodPut,
			path:           "/orders/5/status",
			body:           "status=SHIPPED",
			expectedStatus: http.StatusOK,
			expectedSubstr: `"status":"SHIPPED"`,
		},
		{
			name:           "update status missing field",
			method:         http.MethodPut,
			path:           "/orders/5/status",
			body:           "",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"missing_required_field"`,
		},
		{
			name:           "update status invalid value",
			method:         http.MethodPut,
			path:           "/orders/5/status",
			body:           "status=RETURNED",
			serviceErr:     domain.ErrInvalidStatus,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"invalid_status"`,
		},
		{
			name:           "update status bad transition",
			method:         http.MethodPut,
			path:           "/orders/5/status",
			body:           "status=CONFIRMED",
			serviceErr:     domain.ErrInvalidTransition,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"invalid_transition"`,
		},
		{
			name:           "update status wrong method",
			method:         http.MethodPost,
			path:           "/orders/5/status",
			body:           "status=SHIPPED",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "unknown subpath",
			method:         http.MethodGet,
			path:           "/orders/5/items/extra",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubOrderService{
				details: []app.OrderDetail{testOrderDetail()},
				err:     tt.serviceErr,
			}

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			rec := httptest.NewRecorder()

			HandleOrderRoutes(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

type stubOrderService struct {
	details []app.OrderDetail
	err     error
}

func (s *stubOrderService) ListOrders(_ context.Context) ([]app.OrderDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.details, nil
}

func (s *stubOrderService) GetOrder(_ context.Context, _ int64) (app.OrderDetail, error) {
	if s.err != nil {
		return app.OrderDetail{}, s.err
	}
	return s.details[0], nil
}

func (s *stubOrderService) ListUserOrders(_ context.Context, _ int64) ([]app.OrderDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.details, nil
}

func (s *stubOrderService) UpdateStatus(_ context.Context, id int64, status string) (domain.Order, error) {
	if s.err != nil {
		return domain.Order{}, s.err
	}
	return domain.Order{ID: id, Status: domain.OrderStatus(status)}, nil
}
