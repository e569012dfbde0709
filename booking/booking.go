package booking

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"fastbreakfast/db"
	"fastbreakfast/models"
	"fastbreakfast/mq"
	"fastbreakfast/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The daily schedule is fixed: four slots, five seats each.
var Slots = []string{"08:00", "09:00", "10:00", "11:00"}

const CapacityPerSlot = 5

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func ValidDate(date string) bool {
	return dateRe.MatchString(date)
}

func ValidSlotTime(t string) bool {
	return utils.Contains(Slots, t)
}

// Remaining clamps availability at zero; legacy data written before the
// seat indexes existed may overshoot the capacity.
func Remaining(activeCount int64) int {
	if activeCount >= CapacityPerSlot {
		return 0
	}
	return CapacityPerSlot - int(activeCount)
}

// isDupOf reports whether err is a duplicate-key violation of the named
// index. The index name is the only way to tell the user-slot constraint
// from the seat constraint on the same insert.
func isDupOf(err error, indexName string) bool {
	return mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), indexName)
}

func activeFilter(date, slot string) bson.M {
	return bson.M{"date": date, "time": slot, "active": true}
}

// CreateBooking handles POST /api/bookings.
//
// Validation order: admin rejected, then date/time shape, then the
// duplicate and capacity checks. The two count queries only produce
// friendly errors in the common case — the partial unique indexes on
// (userid,date,time) and (date,time,seat) are what make the insert an
// atomic conditional claim, so racing requests for the last seat cannot
// both get in.
func CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if utils.GetRoleFromRequest(r) == "admin" {
		utils.RespondWithError(w, http.StatusForbidden, "Admins cannot create bookings.")
		return
	}

	var input struct {
		Date   string            `json:"date"`
		Time   string            `json:"time"`
		Guests int               `json:"guests"`
		Cart   []models.CartItem `json:"cart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if input.Date == "" || input.Time == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Date and time are required")
		return
	}
	if !ValidSlotTime(input.Time) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid time slot")
		return
	}
	if !ValidDate(input.Date) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
		return
	}
	if input.Guests < 1 {
		input.Guests = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Fast-path duplicate check for a friendly message.
	dupCount, err := db.BookingsCollection.CountDocuments(ctx, bson.M{
		"userid": userID, "date": input.Date, "time": input.Time, "active": true,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}
	if dupCount > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "You already have a booking for this slot.")
		return
	}

	// Fast-path capacity check.
	count, err := db.BookingsCollection.CountDocuments(ctx, activeFilter(input.Date, input.Time))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}
	if count >= CapacityPerSlot {
		utils.RespondWithError(w, http.StatusConflict, "Slot fully booked")
		return
	}

	b := models.Booking{
		BookingID: "b" + utils.GenerateRandomDigitString(14),
		UserID:    userID,
		Date:      input.Date,
		Time:      input.Time,
		Guests:    input.Guests,
		Status:    models.StatusPendingPayment,
		Active:    true,
		Cart:      input.Cart,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Seat-claim insert: each active booking owns one of the five seats
	// for its slot. A seat collision means someone else claimed it first;
	// move on to the next one. Running out of seats is the capacity
	// conflict, however the requests interleaved.
	claimed := false
	for seat := 0; seat < CapacityPerSlot; seat++ {
		b.Seat = seat
		_, err := db.BookingsCollection.InsertOne(ctx, b)
		if err == nil {
			claimed = true
			break
		}
		if isDupOf(err, db.IdxUserSlot) {
			utils.RespondWithError(w, http.StatusBadRequest, "You already have a booking for this slot.")
			return
		}
		if isDupOf(err, db.IdxSeatSlot) {
			continue
		}
		log.Printf("booking insert failed for %s: %v", userID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}
	if !claimed {
		utils.RespondWithError(w, http.StatusConflict, "Slot fully booked")
		return
	}

	go mq.Emit(context.Background(), models.Event{
		Type:      "booking-created",
		BookingID: b.BookingID,
		UserID:    b.UserID,
		Date:      b.Date,
		Time:      b.Time,
		Guests:    b.Guests,
	})
	go BroadcastAvailability(b.Date)

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Booking created successfully. Awaiting payment confirmation.",
		"booking": b,
	})
}

// GetBookings lists the caller's bookings.
func GetBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	bookings, err := utils.FindAndDecode[models.Booking](r.Context(), db.BookingsCollection, bson.M{"userid": userID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

// GetAllBookings is admin-only.
func GetAllBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := utils.FindAndDecode[models.Booking](r.Context(), db.BookingsCollection, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch all bookings")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

// GetAvailability reports remaining seats for each slot of a date.
func GetAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Date query parameter required")
		return
	}

	slots, err := availabilityFor(r.Context(), date)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch availability")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"date":  date,
		"slots": slots,
	})
}

func availabilityFor(ctx context.Context, date string) ([]models.SlotAvailability, error) {
	slots := make([]models.SlotAvailability, 0, len(Slots))
	for _, slot := range Slots {
		count, err := db.BookingsCollection.CountDocuments(ctx, activeFilter(date, slot))
		if err != nil {
			return nil, err
		}
		slots = append(slots, models.SlotAvailability{Time: slot, Remaining: Remaining(count)})
	}
	return slots, nil
}

// CancelBooking sets cancelled whatever the prior status; only the owner
// may cancel, anyone else sees not-found.
func CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	bookingID := ps.ByName("id")

	res := db.BookingsCollection.FindOneAndUpdate(r.Context(),
		bson.M{"bookingid": bookingID, "userid": userID},
		bson.M{"$set": bson.M{"status": models.StatusCancelled, "active": false, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Booking
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}

	go BroadcastAvailability(updated.Date)

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Booking cancelled successfully",
		"booking": updated,
	})
}

// CompleteBooking is admin-only and unconditional.
func CompleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	res := db.BookingsCollection.FindOneAndUpdate(r.Context(),
		bson.M{"bookingid": bookingID},
		bson.M{"$set": bson.M{"status": models.StatusCompleted, "active": false, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Booking
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}

	go BroadcastAvailability(updated.Date)

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Booking marked as completed",
		"booking": updated,
	})
}

// DeleteBooking hard-deletes the caller's booking.
func DeleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	bookingID := ps.ByName("id")

	res := db.BookingsCollection.FindOneAndDelete(r.Context(),
		bson.M{"bookingid": bookingID, "userid": userID},
	)
	var deleted models.Booking
	if err := res.Decode(&deleted); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found or unauthorized")
		return
	}

	go BroadcastAvailability(deleted.Date)

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Booking deleted successfully"})
}
