package payhere

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// StatusSuccess is the status_code PayHere sends for a completed payment.
// The other codes (0 pending, -1 canceled, -2 failed, -3 chargedback) never
// confirm an order.
const StatusSuccess = 2

// Signer computes and checks the integrity hash PayHere attaches to checkout
// payloads and notifications: MD5 over the public payment fields plus a
// pre-digested shared secret, rendered as uppercase hex. The digest algorithm
// is fixed by the gateway protocol.
type Signer struct {
	secretDigest string
}

func NewSigner(merchantSecret string) *Signer {
	return &Signer{secretDigest: digest(merchantSecret)}
}

// Sign returns the hash over (merchantID ‖ orderRef ‖ amount ‖ currency ‖
// digest(secret)). Amount must already be in the fixed two-decimal form sent
// to the gateway.
func (s *Signer) Sign(merchantID, orderRef, amount, currency string) string {
	return digest(merchantID + orderRef + amount + currency + s.secretDigest)
}

// Verify recomputes the hash from the received fields and compares it to the
// claimed signature in constant time.
func (s *Signer) Verify(merchantID, orderRef, amount, currency, claimed string) bool {
	expected := s.Sign(merchantID, orderRef, amount, currency)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(claimed)) == 1
}

func digest(input string) string {
	sum := md5.Sum([]byte(input))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

const orderRefPrefix = "#"

// FormatOrderRef renders the gateway-facing reference for an order id,
// zero-padded to six digits ("#000042" for order 42).
func FormatOrderRef(id int64) string {
	return fmt.Sprintf("%s%06d", orderRefPrefix, id)
}

// ParseOrderRef recovers the numeric order id from a reference, stripping the
// prefix and any zero padding.
func ParseOrderRef(ref string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ref), orderRefPrefix)
	trimmed = strings.TrimLeft(trimmed, "0")
	if trimmed == "" {
		return 0, fmt.Errorf("order ref %q has no numeric id", ref)
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse order ref %q: %w", ref, err)
	}
	return id, nil
}
