package app

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webviva/shop-api/internal/clock"
	"github.com/webviva/shop-api/internal/domain"
	"github.com/webviva/shop-api/internal/payhere"
)

type PaymentRepository interface {
	// MarkOrderPaid sets payment_status=PAID and status=CONFIRMED on the
	// order row. It reports false when no row matched; the write sets
	// absolute values, so redelivery is naturally idempotent.
	MarkOrderPaid(ctx context.Context, orderID int64, now time.Time) (bool, error)
	RecordPaymentEvent(ctx context.Context, event domain.PaymentEvent) error
}

type PaymentService struct {
	repo   PaymentRepository
	signer *payhere.Signer
	clock  clock.Clock
	logger *log.Logger
}

func NewPaymentService(repo PaymentRepository, cfg payhere.Config, clk clock.Clock, logger *log.Logger) *PaymentService {
	if logger == nil {
		logger = log.Default()
	}
	return &PaymentService{
		repo:   repo,
		signer: payhere.NewSigner(cfg.MerchantSecret),
		clock:  clk,
		logger: logger,
	}
}

// Notification carries the raw fields of a gateway callback. Everything is a
// string straight off the wire; nothing is trusted until the signature over
// these fields checks out.
type Notification struct {
	MerchantID string
	OrderRef   string
	Amount     string
	Currency   string
	StatusCode string
	Signature  string
}

type NotificationResult struct {
	Outcome domain.PaymentOutcome
	OrderID int64
}

// HandleNotification drives the order state machine from a gateway callback.
// The gateway interprets any non-success acknowledgement as a retry trigger,
// so every failure path collapses into a typed outcome that is logged and
// recorded instead of an error the transport would surface.
func (s *PaymentService) HandleNotification(ctx context.Context, n Notification) NotificationResult {
	res := s.process(ctx, n)
	s.record(ctx, n, res)
	s.logger.Printf(
		"payment notification order_ref=%s status_code=%s outcome=%s order_id=%d",
		n.OrderRef, n.StatusCode, res.Outcome, res.OrderID,
	)
	return res
}

func (s *PaymentService) process(ctx context.Context, n Notification) NotificationResult {
	if !s.signer.Verify(n.MerchantID, n.OrderRef, n.Amount, n.Currency, n.Signature) {
		return NotificationResult{Outcome: domain.PaymentOutcomeInvalidSignature}
	}

	code, err := strconv.Atoi(strings.TrimSpace(n.StatusCode))
	if err != nil {
		return NotificationResult{Outcome: domain.PaymentOutcomeBadStatusCode}
	}
	if code != payhere.StatusSuccess {
		// Pending/failed/canceled codes leave the order untouched.
		return NotificationResult{Outcome: domain.PaymentOutcomeNotSuccess}
	}

	orderID, err := payhere.ParseOrderRef(n.OrderRef)
	if err != nil {
		return NotificationResult{Outcome: domain.PaymentOutcomeBadReference}
	}

	applied, err := s.repo.MarkOrderPaid(ctx, orderID, s.clock.Now())
	if err != nil {
		s.logger.Printf("payment notification order_id=%d mark paid failed: %v", orderID, err)
		return NotificationResult{Outcome: domain.PaymentOutcomeStoreError, OrderID: orderID}
	}
	if !applied {
		// The order row may not exist yet if the callback raced the
		// checkout commit; zero rows affected is a no-op, not an error.
		return NotificationResult{Outcome: domain.PaymentOutcomeOrderNotFound, OrderID: orderID}
	}
	return NotificationResult{Outcome: domain.PaymentOutcomeApplied, OrderID: orderID}
}

func (s *PaymentService) record(ctx context.Context, n Notification, res NotificationResult) {
	event := domain.PaymentEvent{
		ID:         uuid.NewString(),
		OrderRef:   n.OrderRef,
		Amount:     n.Amount,
		Currency:   n.Currency,
		StatusCode: n.StatusCode,
		Outcome:    res.Outcome,
		ReceivedAt: s.clock.Now(),
	}
	if err := s.repo.RecordPaymentEvent(ctx, event); err != nil {
		s.logger.Printf("payment notification order_ref=%s record event failed: %v", n.OrderRef, err)
	}
}
