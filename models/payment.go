package models

import "time"

// Payment methods a student can state on the payment step.
const (
	PaymentMobileMoney  = "mobile_money"
	PaymentBankTransfer = "bank_transfer"
	PaymentCash         = "cash"
)

// PaymentAcknowledgment is what the payment step returns to the student.
// No money moves; staff confirm payment out of band.
type PaymentAcknowledgment struct {
	EnrollmentID  int64     `json:"enrollment_id"`
	PaymentMethod string    `json:"payment_method"`
	AmountDue     Money     `json:"amount_due"`
	Currency      string    `json:"currency"`
	IsPaid        bool      `json:"is_paid"`
	RecordedAt    time.Time `json:"recorded_at"`
}
