package models

import "testing"

func TestIsActiveStatus(t *testing.T) {
	holding := []string{StatusPendingPayment, StatusBooked}
	for _, s := range holding {
		if !IsActiveStatus(s) {
			t.Errorf("IsActiveStatus(%q) = false; these bookings hold a seat", s)
		}
	}

	released := []string{StatusCancelled, StatusCompleted, "", "unknown"}
	for _, s := range released {
		if IsActiveStatus(s) {
			t.Errorf("IsActiveStatus(%q) = true; these bookings must release their seat", s)
		}
	}
}
