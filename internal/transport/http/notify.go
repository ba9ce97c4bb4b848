package http

import (
	"context"
	"net/http"

	"github.com/webviva/shop-api/internal/app"
)

// PaymentNotifier is the minimal interface needed to process a gateway
// notification.
type PaymentNotifier interface {
	HandleNotification(ctx context.Context, n app.Notification) app.NotificationResult
}

// HandleNotify returns the handler for PayHere's server-to-server
// notification. The gateway treats any non-200 response as a delivery
// failure and redelivers, so this endpoint acknowledges every request;
// outcomes are observable only through logs and the payment_events table.
func HandleNotify(svc PaymentNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			// Probes and health checks hit this with GET.
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}

		if err := r.ParseForm(); err == nil {
			svc.HandleNotification(r.Context(), app.Notification{
				MerchantID: r.PostFormValue("merchant_id"),
				OrderRef:   r.PostFormValue("order_id"),
				Amount:     r.PostFormValue("payhere_amount"),
				Currency:   r.PostFormValue("payhere_currency"),
				StatusCode: r.PostFormValue("status_code"),
				Signature:  r.PostFormValue("md5sig"),
			})
		}

		w.WriteHeader(http.StatusOK)
	}
}
