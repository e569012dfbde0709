package models

import "time"

// Booking statuses. A booking counts against its slot while it is
// pending-payment or booked.
const (
	StatusPendingPayment = "pending-payment"
	StatusBooked         = "booked"
	StatusCancelled      = "cancelled"
	StatusCompleted      = "completed"
)

// IsActiveStatus reports whether a status holds a seat.
func IsActiveStatus(status string) bool {
	return status == StatusPendingPayment || status == StatusBooked
}

type Booking struct {
	BookingID string     `json:"bookingid" bson:"bookingid"`
	UserID    string     `json:"userid" bson:"userid"`
	Date      string     `json:"date" bson:"date"` // YYYY-MM-DD
	Time      string     `json:"time" bson:"time"` // one of the fixed slots
	Guests    int        `json:"guests" bson:"guests"`
	Status    string     `json:"status" bson:"status"`
	Active    bool       `json:"-" bson:"active"` // derived from Status; indexed
	Seat      int        `json:"-" bson:"seat"`   // 0..capacity-1, unique per active slot
	Cart      []CartItem `json:"cart,omitempty" bson:"cart,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

type CartItem struct {
	MenuID   string  `json:"menuid,omitempty" bson:"menuid,omitempty"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

// SlotAvailability is one row of the availability response.
type SlotAvailability struct {
	Time      string `json:"time"`
	Remaining int    `json:"remaining"`
}
