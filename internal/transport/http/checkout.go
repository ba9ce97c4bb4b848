package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/webviva/shop-api/internal/app"
	"github.com/webviva/shop-api/internal/domain"
)

// CheckoutRunner is the minimal interface needed to place an order.
type CheckoutRunner interface {
	Checkout(ctx context.Context, in app.CheckoutInput) (app.CheckoutResult, error)
}

// HandleCheckout returns an HTTP handler for placing orders. Input is
// form-encoded to match what the storefront posts.
func HandleCheckout(svc CheckoutRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "malformed form body")
			return
		}

		userIDStr := r.PostFormValue("userId")
		totalStr := r.PostFormValue("totalAmount")
		if userIDStr == "" || totalStr == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "userId and totalAmount are required")
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidUserID, domain.ErrInvalidUserID.Error())
			return
		}
		total, err := decimal.NewFromString(totalStr)
		if err != nil || total.IsNegative() {
			writeError(w, http.StatusBadRequest, codeInvalidAmount, domain.ErrInvalidAmount.Error())
			return
		}

		res, err := svc.Checkout(r.Context(), app.CheckoutInput{
			UserID:          userID,
			TotalAmount:     total,
			ShippingAddress: r.PostFormValue("shippingAddress"),
			PaymentMethod:   r.PostFormValue("paymentMethod"),
			Items:           parseCheckoutItems(r.PostFormValue("items")),
		})
		if err != nil {
			switch err {
			case domain.ErrInvalidUserID:
				writeError(w, http.StatusBadRequest, codeInvalidUserID, err.Error())
			case domain.ErrInvalidAmount:
				writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
			case domain.ErrUserNotFound:
				writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, checkoutResponse{
			ID:          res.Order.ID,
			OrderNumber: res.Order.OrderNumber,
			Status:      string(res.Order.Status),
			Payhere: payherePayload{
				MerchantID: res.Payment.MerchantID,
				ReturnURL:  res.Payment.ReturnURL,
				CancelURL:  res.Payment.CancelURL,
				NotifyURL:  res.Payment.NotifyURL,
				OrderID:    res.Payment.OrderRef,
				Amount:     res.Payment.Amount,
				Currency:   res.Payment.Currency,
				Hash:       res.Payment.Hash,
				FirstName:  res.Payment.FirstName,
				LastName:   res.Payment.LastName,
				Email:      res.Payment.Email,
			},
		})
	}
}

type checkoutResponse struct {
	ID          int64          `json:"id"`
	OrderNumber string         `json:"orderNumber"`
	Status      string         `json:"status"`
	Payhere     payherePayload `json:"payhere"`
}

// payherePayload mirrors the field names the gateway checkout form expects.
type payherePayload struct {
	MerchantID string `json:"merchant_id"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	OrderID    string `json:"order_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
}

const (
	defaultItemColor = "Default"
	defaultItemSize  = "M"
)

// parseCheckoutItems decodes the items form field leniently: an entry with no
// usable product id is skipped, an unparseable quantity falls back to 1 and
// an unparseable price to 0, so one bad line never loses an otherwise valid
// order.
func parseCheckoutItems(raw string) []app.CheckoutItem {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}

	items := make([]app.CheckoutItem, 0, len(entries))
	for _, entry := range entries {
		productID, ok := itemInt(entry["productId"])
		if !ok || productID <= 0 {
			continue
		}

		quantity, ok := itemInt(entry["quantity"])
		if !ok || quantity <= 0 {
			quantity = 1
		}
		price, ok := itemDecimal(entry["price"])
		if !ok || price.IsNegative() {
			price = decimal.Zero
		}

		items = append(items, app.CheckoutItem{
			ProductID:   productID,
			ProductName: itemString(entry["productName"], ""),
			Color:       itemString(entry["color"], defaultItemColor),
			Size:        itemString(entry["size"], defaultItemSize),
			Quantity:    int(quantity),
			UnitPrice:   price,
		})
	}
	return items
}

func itemInt(raw json.RawMessage) (int64, bool) {
	if raw == nil {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return v, true
		}
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func itemDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	if raw == nil {
		return decimal.Zero, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := decimal.NewFromString(n.String()); err == nil {
			return v, true
		}
		return decimal.Zero, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return decimal.Zero, false
}

func itemString(raw json.RawMessage, fallback string) string {
	if raw == nil {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return fallback
	}
	return s
}
