package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	// ErrInvalidSignature возвращается при несовпадении подписи шлюза.
	ErrInvalidSignature = errors.New("invalid gateway signature")
	// ErrMissingSecret возвращается, если секрет шлюза не сконфигурирован.
	ErrMissingSecret = errors.New("gateway secret is not configured")
)

// Verifier проверяет подписи платёжного шлюза.
// Шлюз подписывает строку "<orderID>|<paymentID>" алгоритмом HMAC-SHA256
// и передаёт подпись в hex.
type Verifier struct {
	secret string
}

// NewVerifier создаёт Verifier с секретным ключом шлюза.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Sign вычисляет ожидаемую подпись для пары orderID/paymentID.
func (v *Verifier) Sign(orderID, paymentID string) (string, error) {
	if v.secret == "" {
		return "", ErrMissingSecret
	}
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify сверяет подпись шлюза с ожидаемой. Сравнение — за постоянное время.
func (v *Verifier) Verify(orderID, paymentID, signature string) error {
	expected, err := v.Sign(orderID, paymentID)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
