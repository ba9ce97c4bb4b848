package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webviva/shop-api/internal/clock"
	"github.com/webviva/shop-api/internal/domain"
	"github.com/webviva/shop-api/internal/payhere"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, order domain.Order) (int64, error)
	CreateOrderItem(ctx context.Context, item domain.OrderItem) error
}

// UserDirectory is the read-only collaborator used to prefill the payment
// form with the customer's identity.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
}

const defaultPaymentMethod = "PAYHERE"

type CheckoutService struct {
	repo   CheckoutRepository
	users  UserDirectory
	signer *payhere.Signer
	cfg    payhere.Config
	clock  clock.Clock
	logger *log.Logger
}

func NewCheckoutService(repo CheckoutRepository, users UserDirectory, cfg payhere.Config, clk clock.Clock, logger *log.Logger) *CheckoutService {
	if logger == nil {
		logger = log.Default()
	}
	return &CheckoutService{
		repo:   repo,
		users:  users,
		signer: payhere.NewSigner(cfg.MerchantSecret),
		cfg:    cfg,
		clock:  clk,
		logger: logger,
	}
}

type CheckoutInput struct {
	UserID          int64
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
	Items           []CheckoutItem
}

type CheckoutItem struct {
	ProductID   int64
	ProductName string
	Color       string
	Size        string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// PaymentRequest is the gateway-initiation payload returned to the client
// alongside the created order.
type PaymentRequest struct {
	MerchantID string
	ReturnURL  string
	CancelURL  string
	NotifyURL  string
	OrderRef   string
	Amount     string
	Currency   string
	Hash       string
	FirstName  string
	LastName   string
	Email      string
}

type CheckoutResult struct {
	Order   domain.Order
	Items   []domain.OrderItem
	Payment PaymentRequest
}

// Checkout persists the order and its line items in one transaction and then
// builds the payment-initiation payload. Line totals are always computed
// here; client-supplied per-item totals are never trusted.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	if in.UserID <= 0 {
		return CheckoutResult{}, domain.ErrInvalidUserID
	}
	if in.TotalAmount.IsNegative() {
		return CheckoutResult{}, domain.ErrInvalidAmount
	}

	method := in.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}

	now := s.clock.Now()
	order := domain.Order{
		UserID:          in.UserID,
		OrderNumber:     orderNumber(now),
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		TotalAmount:     in.TotalAmount,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var items []domain.OrderItem
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		id, err := s.repo.CreateOrder(txCtx, order)
		if err != nil {
			return err
		}
		order.ID = id

		for _, it := range in.Items {
			item := domain.OrderItem{
				OrderID:     id,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Color:       it.Color,
				Size:        it.Size,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				LineTotal:   it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
				CreatedAt:   now,
			}
			if err := s.repo.CreateOrderItem(txCtx, item); err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	// The transaction is committed at this point. A failure below leaves a
	// persisted PENDING order whose client never received payment
	// instructions, matching the original checkout ordering.
	payment, err := s.paymentRequest(ctx, order)
	if err != nil {
		s.logger.Printf("checkout order_id=%d payment payload failed: %v", order.ID, err)
		return CheckoutResult{}, err
	}

	return CheckoutResult{Order: order, Items: items, Payment: payment}, nil
}

func (s *CheckoutService) paymentRequest(ctx context.Context, order domain.Order) (PaymentRequest, error) {
	var user domain.User
	u, err := s.users.GetUser(ctx, order.UserID)
	switch err {
	case nil:
		user = u
	case domain.ErrUserNotFound:
		// Prefill stays blank; the order itself is already committed.
	default:
		return PaymentRequest{}, err
	}

	ref := payhere.FormatOrderRef(order.ID)
	amount := order.TotalAmount.StringFixed(2)

	return PaymentRequest{
		MerchantID: s.cfg.MerchantID,
		ReturnURL:  s.cfg.ReturnURL,
		CancelURL:  s.cfg.CancelURL,
		NotifyURL:  s.cfg.NotifyURL,
		OrderRef:   ref,
		Amount:     amount,
		Currency:   s.cfg.Currency,
		Hash:       s.signer.Sign(s.cfg.MerchantID, ref, amount, s.cfg.Currency),
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
	}, nil
}

// orderNumber derives the human-readable number from the current millisecond.
// Two checkouts in the same millisecond collide; the UNIQUE constraint on
// order_number turns that into a rolled-back checkout rather than silent
// reuse.
func orderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}
