package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType определяет направление движения средств.
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// TransactionStatus — итог проведения операции.
type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionPending TransactionStatus = "PENDING"
	TransactionFailed  TransactionStatus = "FAILED"
)

// WalletTransaction представляет движение средств по кошельку пользователя.
type WalletTransaction struct {
	ID          uuid.UUID         `db:"id"`
	UserID      uuid.UUID         `db:"user_id"`
	Amount      decimal.Decimal   `db:"amount"`
	Type        TransactionType   `db:"type"`
	Status      TransactionStatus `db:"status"`
	ReferenceID string            `db:"reference_id"`
	ProcessedAt time.Time         `db:"processed_at"`
}

// BalanceResponse - ответ с балансом кошелька.
type BalanceResponse struct {
	Current   float64 `json:"current"`
	Withdrawn float64 `json:"withdrawn"`
}

// VerifyTopUpRequest — подтверждение платежа от платёжного шлюза.
// Поля приходят от клиента после завершения оплаты на стороне шлюза.
type VerifyTopUpRequest struct {
	GatewayOrderID   string  `json:"gatewayOrderId"`
	GatewayPaymentID string  `json:"gatewayPaymentId"`
	GatewaySignature string  `json:"gatewaySignature"`
	Amount           float64 `json:"amount"`
}

// WithdrawRequest DTO для запроса вывода средств.
type WithdrawRequest struct {
	Target string  `json:"target"`
	Sum    float64 `json:"sum"`
}

// TransactionResponse DTO для истории операций.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	ReferenceID string  `json:"referenceId"`
	ProcessedAt string  `json:"processedAt"`
}
