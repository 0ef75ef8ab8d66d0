package models

import (
	"time"

	"gorm.io/datatypes"
)

// Payment statuses.
const (
	PaymentInitiated         = "initiated"
	PaymentSuccess           = "success"
	PaymentFailed            = "failed"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially_refunded"
)

// Transfer statuses (payout to the university's linked account).
const (
	TransferPending    = "pending"
	TransferProcessing = "processing"
	TransferSuccess    = "success"
	TransferFailed     = "failed"
	TransferReversed   = "reversed"
)

// Payment is one payment intent. All amounts are in minor units (paise).
type Payment struct {
	ID            string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID  string `gorm:"column:university_id;size:36;index" json:"university_id"`
	StudentID     string `gorm:"column:student_id;size:36;index" json:"student_id"`
	ApplicationID string `gorm:"column:application_id;size:36;index" json:"application_id"`

	AmountPaise int64  `gorm:"column:amount_paise" json:"amount_paise"`
	Currency    string `gorm:"column:currency;size:8;default:INR" json:"currency"`
	FeeType     string `gorm:"column:fee_type;size:32;default:registration" json:"fee_type"`

	RazorpayOrderID   string `gorm:"column:razorpay_order_id;size:64;index" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `gorm:"column:razorpay_payment_id;size:64;index" json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `gorm:"column:razorpay_signature;size:128" json:"-"`

	Status string `gorm:"column:status;size:32;default:initiated;index" json:"status"`

	TransferID          string     `gorm:"column:transfer_id;size:64" json:"transfer_id,omitempty"`
	TransferStatus      string     `gorm:"column:transfer_status;size:16;default:pending" json:"transfer_status"`
	TransferAmountPaise int64      `gorm:"column:transfer_amount_paise" json:"transfer_amount_paise,omitempty"`
	TransferredAt       *time.Time `gorm:"column:transferred_at" json:"transferred_at,omitempty"`

	RefundID          string     `gorm:"column:refund_id;size:64" json:"refund_id,omitempty"`
	RefundAmountPaise int64      `gorm:"column:refund_amount_paise" json:"refund_amount_paise,omitempty"`
	RefundStatus      string     `gorm:"column:refund_status;size:16" json:"refund_status,omitempty"`
	RefundReason      string     `gorm:"column:refund_reason;size:512" json:"refund_reason,omitempty"`
	RefundedAt        *time.Time `gorm:"column:refunded_at" json:"refunded_at,omitempty"`
	RefundedBy        string     `gorm:"column:refunded_by;size:36" json:"refunded_by,omitempty"`

	Metadata datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
