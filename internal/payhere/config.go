package payhere

// Config carries the merchant account settings shared with the gateway.
// It is injected at construction time; nothing reads ambient globals.
type Config struct {
	MerchantID     string
	MerchantSecret string
	Currency       string
	ReturnURL      string
	CancelURL      string
	NotifyURL      string
}
