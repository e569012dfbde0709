package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fastbreakfast/db"
	"fastbreakfast/models"
	"fastbreakfast/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// CanUpdate reports whether a booking may still be rescheduled. Only
// paid (booked) reservations qualify.
func CanUpdate(status string) bool {
	return status == models.StatusBooked
}

// UpdateBooking reschedules a confirmed booking. Moving to a different
// slot re-claims a seat there under the same unique indexes as creation,
// so the duplicate and capacity rules hold for the target slot too.
func UpdateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	bookingID := ps.ByName("id")

	var input struct {
		Date   string `json:"date"`
		Time   string `json:"time"`
		Guests int    `json:"guests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var current models.Booking
	err := db.BookingsCollection.FindOne(ctx, bson.M{"bookingid": bookingID, "userid": userID}).Decode(&current)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found or unauthorized")
		return
	}

	if !CanUpdate(current.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Only confirmed bookings can be updated.")
		return
	}

	if input.Time != "" && !ValidSlotTime(input.Time) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid time slot")
		return
	}
	if input.Date != "" && !ValidDate(input.Date) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
		return
	}

	newDate := current.Date
	if input.Date != "" {
		newDate = input.Date
	}
	newTime := current.Time
	if input.Time != "" {
		newTime = input.Time
	}
	newGuests := current.Guests
	if input.Guests > 0 {
		newGuests = input.Guests
	}

	if newDate == current.Date && newTime == current.Time {
		// Slot unchanged; nothing to re-claim.
		_, err := db.BookingsCollection.UpdateOne(ctx,
			bson.M{"bookingid": bookingID, "userid": userID},
			bson.M{"$set": bson.M{"guests": newGuests, "updated_at": time.Now()}},
		)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update booking")
			return
		}
		current.Guests = newGuests
		utils.RespondWithJSON(w, http.StatusOK, map[string]any{
			"message": "Booking updated successfully",
			"booking": current,
		})
		return
	}

	// Slot move: claim a seat in the target slot seat-by-seat, exactly as
	// creation does. The user-slot index also rejects a move onto a slot
	// the caller already holds.
	moved := false
	for seat := 0; seat < CapacityPerSlot; seat++ {
		res, err := db.BookingsCollection.UpdateOne(ctx,
			bson.M{"bookingid": bookingID, "userid": userID, "status": models.StatusBooked},
			bson.M{"$set": bson.M{
				"date": newDate, "time": newTime, "seat": seat,
				"guests": newGuests, "updated_at": time.Now(),
			}},
		)
		if err == nil {
			if res.MatchedCount == 0 {
				// Cancelled or completed since the lookup above.
				utils.RespondWithError(w, http.StatusBadRequest, "Only confirmed bookings can be updated.")
				return
			}
			moved = true
			break
		}
		if isDupOf(err, db.IdxUserSlot) {
			utils.RespondWithError(w, http.StatusBadRequest, "You already have a booking for this slot.")
			return
		}
		if isDupOf(err, db.IdxSeatSlot) {
			continue
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update booking")
		return
	}
	if !moved {
		utils.RespondWithError(w, http.StatusConflict, "Slot fully booked")
		return
	}

	go BroadcastAvailability(current.Date)
	go BroadcastAvailability(newDate)

	current.Date = newDate
	current.Time = newTime
	current.Guests = newGuests
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Booking updated successfully",
		"booking": current,
	})
}
