package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Catalog ---

type ToolResponse struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price,omitempty"`
}

type PlanResponse struct {
	Tier         string         `json:"tier"`
	Name         string         `json:"name"`
	Price        string         `json:"price"`
	DurationDays int            `json:"duration_days"`
	Tools        []ToolResponse `json:"tools"`
}

// --- Checkout ---

type CheckoutRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=plan tool"`
	ItemName string `json:"item_name" validate:"required,max=255"`
	Method   string `json:"method" validate:"required,oneof=card pix"`
	Email    string `json:"email" validate:"omitempty,email"`
	// StrictTier rejects plan names that do not map to a known tier instead
	// of falling back to the monthly plan.
	StrictTier bool `json:"strict_tier"`
}

type CheckoutResponse struct {
	PaymentId uuid.UUID `json:"payment_id"`
	Status    string    `json:"status"`
	ItemName  string    `json:"item_name"`
	Amount    string    `json:"amount"`
	Method    string    `json:"method"`

	// Instant payment
	PixPayload string `json:"pix_payload,omitempty"`
	PixTxId    string `json:"pix_txid,omitempty"`
	QRCodeURL  string `json:"qr_code_url,omitempty"`

	// Card
	SnapToken       string `json:"snap_token,omitempty"`
	SnapRedirectUrl string `json:"snap_redirect_url,omitempty"`
}

// --- Status & listing ---

type PaymentStatusResponse struct {
	PaymentId     uuid.UUID  `json:"payment_id"`
	Status        string     `json:"status"`
	Terminal      bool       `json:"terminal"`
	TransactionId string     `json:"transaction_id,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
}

type PaymentResponse struct {
	Id            uuid.UUID  `json:"id"`
	PayerId       uuid.UUID  `json:"payer_id"`
	Kind          string     `json:"kind"`
	ItemName      string     `json:"item_name"`
	Amount        string     `json:"amount"`
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	TransactionId string     `json:"transaction_id,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	FailedAt      *time.Time `json:"failed_at,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
}

type ListPaymentsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending completed failed"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

// --- Admin ---

type ConfirmPaymentRequest struct {
	TransactionId string `json:"transaction_id" validate:"required,max=255"`
}

type FailPaymentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// --- Gateway webhook ---

type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	TransactionId     string `json:"transaction_id"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	// Signature validation fields
	SignatureKey string `json:"signature_key"`
	StatusCode   string `json:"status_code"`
	GrossAmount  string `json:"gross_amount"`
}

// --- Jobs ---

// PaymentReceiptMessage is queued after a confirmation so the receipt
// e-mail is sent outside the request.
type PaymentReceiptMessage struct {
	PaymentId uuid.UUID `json:"payment_id"`
}
