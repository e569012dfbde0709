package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fastbreakfast/db"
	"fastbreakfast/globals"
	"fastbreakfast/models"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func paramID(id string) httprouter.Params {
	return httprouter.Params{{Key: "id", Value: id}}
}

func postBooking(t *testing.T, userID, role string, body map[string]any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(payload))
	ctx := context.WithValue(req.Context(), globals.UserIDKey, userID)
	ctx = context.WithValue(ctx, globals.RoleKey, role)
	return req.WithContext(ctx)
}

// countResponse fakes the aggregate cursor CountDocuments reads.
func countResponse(n int32) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, "breakfastdb.bookings", mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, "breakfastdb.bookings", mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func seatTakenResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: breakfastdb.bookings index: " + db.IdxSeatSlot + " dup key",
	})
}

func TestCreateBooking(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	body := map[string]any{"date": "2025-01-15", "time": "08:00", "guests": 2}

	mt.Run("claims a seat", func(mt *mtest.T) {
		orig := db.BookingsCollection
		db.BookingsCollection = mt.Coll
		defer func() { db.BookingsCollection = orig }()

		mt.AddMockResponses(
			countResponse(0), // no active booking for this user+slot
			countResponse(3), // seats left
			mtest.CreateSuccessResponse(),
		)

		rr := httptest.NewRecorder()
		CreateBooking(rr, postBooking(mt.T, "u1", "user", body), nil)

		if rr.Code != http.StatusCreated {
			mt.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
		}
	})

	mt.Run("losing the race for the last seat conflicts", func(mt *mtest.T) {
		orig := db.BookingsCollection
		db.BookingsCollection = mt.Coll
		defer func() { db.BookingsCollection = orig }()

		// The fast-path count still sees a free seat, but by insert time
		// every seat index entry is taken: all five claims bounce.
		mt.AddMockResponses(
			countResponse(0),
			countResponse(4),
			seatTakenResponse(),
			seatTakenResponse(),
			seatTakenResponse(),
			seatTakenResponse(),
			seatTakenResponse(),
		)

		rr := httptest.NewRecorder()
		CreateBooking(rr, postBooking(mt.T, "u6", "user", body), nil)

		if rr.Code != http.StatusConflict {
			mt.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusConflict, rr.Body.String())
		}
	})

	mt.Run("full slot rejected before insert", func(mt *mtest.T) {
		orig := db.BookingsCollection
		db.BookingsCollection = mt.Coll
		defer func() { db.BookingsCollection = orig }()

		mt.AddMockResponses(
			countResponse(0),
			countResponse(5),
		)

		rr := httptest.NewRecorder()
		CreateBooking(rr, postBooking(mt.T, "u7", "user", body), nil)

		if rr.Code != http.StatusConflict {
			mt.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
		}
	})

	mt.Run("duplicate slot caught by the user index", func(mt *mtest.T) {
		orig := db.BookingsCollection
		db.BookingsCollection = mt.Coll
		defer func() { db.BookingsCollection = orig }()

		mt.AddMockResponses(
			countResponse(0), // racing duplicate not visible to the count yet
			countResponse(1),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error collection: breakfastdb.bookings index: " + db.IdxUserSlot + " dup key",
			}),
		)

		rr := httptest.NewRecorder()
		CreateBooking(rr, postBooking(mt.T, "u1", "user", body), nil)

		if rr.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	mt.Run("admins cannot book", func(mt *mtest.T) {
		rr := httptest.NewRecorder()
		CreateBooking(rr, postBooking(mt.T, "a1", "admin", body), nil)

		if rr.Code != http.StatusForbidden {
			mt.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
		}
	})
}

func TestUpdateBookingGoneBetweenLookupAndMove(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("cancelled mid-flight", func(mt *mtest.T) {
		orig := db.BookingsCollection
		db.BookingsCollection = mt.Coll
		defer func() { db.BookingsCollection = orig }()

		mt.AddMockResponses(
			// Lookup still sees a booked reservation...
			mtest.CreateCursorResponse(0, "breakfastdb.bookings", mtest.FirstBatch, bson.D{
				{Key: "bookingid", Value: "b1"},
				{Key: "userid", Value: "u1"},
				{Key: "date", Value: "2025-01-15"},
				{Key: "time", Value: "08:00"},
				{Key: "guests", Value: 2},
				{Key: "status", Value: models.StatusBooked},
				{Key: "active", Value: true},
				{Key: "seat", Value: 0},
			}),
			// ...but the status-gated move matches nothing.
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 0},
				bson.E{Key: "nModified", Value: 0},
			),
		)

		payload := bytes.NewReader([]byte(`{"time":"09:00"}`))
		req := httptest.NewRequest(http.MethodPut, "/api/bookings/update/b1", payload)
		ctx := context.WithValue(req.Context(), globals.UserIDKey, "u1")
		ctx = context.WithValue(ctx, globals.RoleKey, "user")
		req = req.WithContext(ctx)

		rr := httptest.NewRecorder()
		UpdateBooking(rr, req, paramID("b1"))

		if rr.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusBadRequest, rr.Body.String())
		}
	})
}
