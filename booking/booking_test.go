package booking

import (
	"testing"

	"fastbreakfast/db"
	"fastbreakfast/models"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestValidDate(t *testing.T) {
	valid := []string{"2025-01-15", "1999-12-31", "2025-13-99"}
	for _, d := range valid {
		if !ValidDate(d) {
			t.Errorf("ValidDate(%q) = false, want true", d)
		}
	}

	invalid := []string{"", "2025-1-15", "15-01-2025", "2025/01/15", "2025-01-15T08:00", "tomorrow"}
	for _, d := range invalid {
		if ValidDate(d) {
			t.Errorf("ValidDate(%q) = true, want false", d)
		}
	}
}

func TestValidSlotTime(t *testing.T) {
	for _, s := range Slots {
		if !ValidSlotTime(s) {
			t.Errorf("ValidSlotTime(%q) = false for a scheduled slot", s)
		}
	}

	for _, s := range []string{"", "07:00", "12:00", "8:00", "08:30"} {
		if ValidSlotTime(s) {
			t.Errorf("ValidSlotTime(%q) = true, want false", s)
		}
	}
}

func TestRemaining(t *testing.T) {
	cases := []struct {
		active int64
		want   int
	}{
		{0, 5},
		{3, 2},
		{5, 0},
		{9, 0}, // overshoot from legacy data clamps to zero
	}
	for _, tc := range cases {
		if got := Remaining(tc.active); got != tc.want {
			t.Errorf("Remaining(%d) = %d, want %d", tc.active, got, tc.want)
		}
	}
}

func TestCanUpdate(t *testing.T) {
	if !CanUpdate(models.StatusBooked) {
		t.Error("confirmed bookings should be updatable")
	}
	for _, status := range []string{models.StatusPendingPayment, models.StatusCancelled, models.StatusCompleted, ""} {
		if CanUpdate(status) {
			t.Errorf("CanUpdate(%q) = true, want false", status)
		}
	}
}

func dupErr(index string) error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: "E11000 duplicate key error collection: breakfastdb.bookings index: " + index + " dup key: { date: \"2025-01-15\" }",
		}},
	}
}

func TestIsDupOf(t *testing.T) {
	seatErr := dupErr(db.IdxSeatSlot)
	if !isDupOf(seatErr, db.IdxSeatSlot) {
		t.Error("seat-index violation not recognized")
	}
	if isDupOf(seatErr, db.IdxUserSlot) {
		t.Error("seat-index violation misattributed to the user index")
	}

	userErr := dupErr(db.IdxUserSlot)
	if !isDupOf(userErr, db.IdxUserSlot) {
		t.Error("user-index violation not recognized")
	}

	plain := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121, Message: "Document failed validation"}}}
	if isDupOf(plain, db.IdxSeatSlot) {
		t.Error("non-duplicate write error treated as a seat conflict")
	}
	if isDupOf(nil, db.IdxSeatSlot) {
		t.Error("nil error treated as a conflict")
	}
}
