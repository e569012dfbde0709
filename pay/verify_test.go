package pay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fastbreakfast/db"
	"fastbreakfast/stripe"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type stubGateway struct {
	details stripe.SessionDetails
	err     error
}

func (s stubGateway) CreateSession(context.Context, []stripe.LineItem, string, string, map[string]string) (stripe.Session, error) {
	return stripe.Session{}, s.err
}

func (s stubGateway) RetrieveSession(context.Context, string) (stripe.SessionDetails, error) {
	return s.details, s.err
}

func TestVerifyPaymentExpiredSession(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("marks the payment failed", func(mt *mtest.T) {
		origColl := db.PaymentsCollection
		db.PaymentsCollection = mt.Coll
		origGateway := Gateway
		Gateway = stubGateway{details: stripe.SessionDetails{
			ID:            "cs_1",
			Status:        "expired",
			PaymentStatus: "unpaid",
		}}
		defer func() {
			db.PaymentsCollection = origColl
			Gateway = origGateway
		}()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		req := httptest.NewRequest(http.MethodGet, "/api/payments/verify/cs_1", nil)
		rr := httptest.NewRecorder()
		VerifyPayment(rr, req, httprouter.Params{{Key: "sessionId", Value: "cs_1"}})

		if rr.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}

		evt := mt.GetStartedEvent()
		for evt != nil && evt.CommandName != "update" {
			evt = mt.GetStartedEvent()
		}
		if evt == nil {
			mt.Fatal("no update was issued for the expired session")
		}
		if cmd := evt.Command.String(); !strings.Contains(cmd, "failed") {
			mt.Errorf("update did not set the failed status: %s", cmd)
		}
	})

	mt.Run("open session stays pending", func(mt *mtest.T) {
		origColl := db.PaymentsCollection
		db.PaymentsCollection = mt.Coll
		origGateway := Gateway
		Gateway = stubGateway{details: stripe.SessionDetails{
			ID:            "cs_2",
			Status:        "open",
			PaymentStatus: "unpaid",
		}}
		defer func() {
			db.PaymentsCollection = origColl
			Gateway = origGateway
		}()

		req := httptest.NewRequest(http.MethodGet, "/api/payments/verify/cs_2", nil)
		rr := httptest.NewRecorder()
		VerifyPayment(rr, req, httprouter.Params{{Key: "sessionId", Value: "cs_2"}})

		if rr.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
		if evt := mt.GetStartedEvent(); evt != nil {
			mt.Errorf("unexpected %s command for a still-open session", evt.CommandName)
		}
	})
}
