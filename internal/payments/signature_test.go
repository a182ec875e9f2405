package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func TestVerifier_Verify(t *testing.T) {
	secret := "test-gateway-secret"
	v := NewVerifier(secret)

	// Считаем эталонную подпись тем же алгоритмом, что и шлюз
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("order_ABC|pay_XYZ"))
	valid := hex.EncodeToString(mac.Sum(nil))

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		wantErr   error
	}{
		{
			name:      "valid signature",
			orderID:   "order_ABC",
			paymentID: "pay_XYZ",
			signature: valid,
			wantErr:   nil,
		},
		{
			name:      "tampered signature",
			orderID:   "order_ABC",
			paymentID: "pay_XYZ",
			signature: valid[:len(valid)-1] + "0",
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "signature for different payment",
			orderID:   "order_ABC",
			paymentID: "pay_OTHER",
			signature: valid,
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "empty signature",
			orderID:   "order_ABC",
			paymentID: "pay_XYZ",
			signature: "",
			wantErr:   ErrInvalidSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.orderID, tt.paymentID, tt.signature)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifier_MissingSecret(t *testing.T) {
	v := NewVerifier("")
	if err := v.Verify("order", "pay", "sig"); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := v.Sign("order", "pay"); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret from Sign, got %v", err)
	}
}

func TestVerifier_SignDeterministic(t *testing.T) {
	v := NewVerifier("secret")
	a, err := v.Sign("o1", "p1")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	b, _ := v.Sign("o1", "p1")
	if a != b {
		t.Errorf("Sign() not deterministic: %s vs %s", a, b)
	}
	c, _ := v.Sign("o1", "p2")
	if a == c {
		t.Error("different payment ids must produce different signatures")
	}
}
