package models

// Event is a lifecycle message published on the booking-events channel.
type Event struct {
	Type      string `json:"type"` // booking-created, payment-confirmed, ...
	BookingID string `json:"booking_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Guests    int    `json:"guests,omitempty"`
}
