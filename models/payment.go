package models

import "time"

// Payment statuses mirror the gateway's view of a checkout session.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Payment struct {
	PaymentID string    `json:"paymentid" bson:"paymentid"`
	BookingID string    `json:"bookingid" bson:"bookingid"`
	UserID    string    `json:"userid" bson:"userid"`
	SessionID string    `json:"sessionid" bson:"sessionid"`
	Amount    int64     `json:"amount" bson:"amount"` // minor units
	Currency  string    `json:"currency" bson:"currency"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
