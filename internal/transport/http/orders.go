package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webviva/shop-api/internal/app"
	"github.com/webviva/shop-api/internal/domain"
)

// OrderLister serves the admin listing.
type OrderLister interface {
	ListOrders(ctx context.Context) ([]app.OrderDetail, error)
}

// OrderReader serves the per-order routes: single order, a user's orders and
// the administrative status update.
type OrderReader interface {
	GetOrder(ctx context.Context, id int64) (app.OrderDetail, error)
	ListUserOrders(ctx context.Context, userID int64) ([]app.OrderDetail, error)
	UpdateStatus(ctx context.Context, id int64, status string) (domain.Order, error)
}

// HandleListOrders returns the handler for GET /orders.
func HandleListOrders(svc OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		details, err := svc.ListOrders(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toOrderResponses(details))
	}
}

// HandleOrderRoutes returns the handler for the /orders/ subtree:
// GET /orders/{id}, GET /orders/user/{userId}, PUT /orders/{id}/status.
func HandleOrderRoutes(svc OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "orders" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case len(parts) == 2 && parts[1] != "user":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			getOrder(svc, w, r, parts[1])
		case len(parts) == 3 && parts[1] == "user":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			listUserOrders(svc, w, r, parts[2])
		case len(parts) == 3 && parts[2] == "status":
			if r.Method != http.MethodPut {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			updateOrderStatus(svc, w, r, parts[1])
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func getOrder(svc OrderReader, w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
		return
	}

	detail, err := svc.GetOrder(r.Context(), id)
	if err != nil {
		switch err {
		case domain.ErrOrderNotFound:
			writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(detail))
}

func listUserOrders(svc OrderReader, w http.ResponseWriter, r *http.Request, userIDStr string) {
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
		return
	}

	details, err := svc.ListUserOrders(r.Context(), userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(details))
}

func updateOrderStatus(svc OrderReader, w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "malformed form body")
		return
	}
	status := r.PostFormValue("status")
	if status == "" {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "status is required")
		return
	}

	order, err := svc.UpdateStatus(r.Context(), id, status)
	if err != nil {
		switch err {
		case domain.ErrOrderNotFound:
			writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
		case domain.ErrInvalidStatus:
			writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
		case domain.ErrInvalidTransition:
			writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, statusUpdateResponse{
		ID:     order.ID,
		Status: string(order.Status),
	})
}

type orderResponse struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"userId"`
	OrderNumber     string              `json:"orderNumber"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	ShippingAddress string              `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	CustomerName    string              `json:"customerName,omitempty"`
	CustomerEmail   string              `json:"customerEmail,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	Items           []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type statusUpdateResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func toOrderResponse(detail app.OrderDetail) orderResponse {
	items := make([]orderItemResponse, 0, len(detail.Items))
	for _, it := range detail.Items {
		items = append(items, orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Color:       it.Color,
			Size:        it.Size,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return orderResponse{
		ID:              detail.ID,
		UserID:          detail.UserID,
		OrderNumber:     detail.OrderNumber,
		Status:          string(detail.Status),
		PaymentStatus:   string(detail.PaymentStatus),
		TotalAmount:     detail.TotalAmount,
		ShippingAddress: detail.ShippingAddress,
		PaymentMethod:   detail.PaymentMethod,
		CustomerName:    detail.CustomerName,
		CustomerEmail:   detail.CustomerEmail,
		CreatedAt:       detail.CreatedAt,
		UpdatedAt:       detail.UpdatedAt,
		Items:           items,
	}
}

func toOrderResponses(details []app.OrderDetail) []orderResponse {
	out := make([]orderResponse, 0, len(details))
	for _, detail := range details {
		out = append(out, toOrderResponse(detail))
	}
	return out
}
