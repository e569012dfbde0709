package pay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"fastbreakfast/db"
	"fastbreakfast/models"
	"fastbreakfast/mq"
	"fastbreakfast/stripe"
	"fastbreakfast/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Gateway is swapped out in tests.
var Gateway stripe.Gateway = stripe.NewClient()

const (
	minLinePrice    = 50  // floor per cart line, major units
	summaryMaxChars = 490 // gateway metadata value limit, minus headroom
)

func clientURL() string {
	if v := os.Getenv("CLIENT_URL"); v != "" {
		return v
	}
	return "http://localhost:5173"
}

// BuildLineItems converts a cart to gateway line items. Each unit price
// is floored to the 50 minimum and converted to minor units by
// multiply-by-100-and-round. Returns the items and the session total in
// minor units.
func BuildLineItems(cart []models.CartItem) ([]stripe.LineItem, int64) {
	items := make([]stripe.LineItem, 0, len(cart))
	var total int64
	for _, line := range cart {
		price := math.Max(line.Price, minLinePrice)
		unitAmount := int64(math.Round(price * 100))
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, stripe.LineItem{
			Name:       line.Name,
			UnitAmount: unitAmount,
			Quantity:   qty,
		})
		total += unitAmount * int64(qty)
	}
	return items, total
}

// CartSummary renders "name×qty, name×qty, ..." capped at 490 chars.
// Deliberately lossy: unit prices are not recoverable, only name and
// quantity survive for receipt reconstruction.
func CartSummary(cart []models.CartItem) string {
	parts := make([]string, 0, len(cart))
	for _, line := range cart {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		parts = append(parts, fmt.Sprintf("%s×%d", line.Name, qty))
	}
	summary := strings.Join(parts, ", ")
	if runes := []rune(summary); len(runes) > summaryMaxChars {
		summary = string(runes[:summaryMaxChars])
	}
	return summary
}

// ReconstructCart parses a summary back into cart lines. Prices come
// back as zero — the summary never carried them.
func ReconstructCart(summary string) []models.CartItem {
	if summary == "" {
		return nil
	}
	var items []models.CartItem
	for _, entry := range strings.Split(summary, ", ") {
		name, qtyStr, found := strings.Cut(entry, "×")
		qty := 1
		if found {
			if n, err := strconv.Atoi(qtyStr); err == nil && n > 0 {
				qty = n
			}
		}
		items = append(items, models.CartItem{Name: name, Quantity: qty, Price: 0})
	}
	return items
}

// CreateCheckoutSession delegates the money movement to the gateway and
// records a pending payment for the booking.
func CreateCheckoutSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	var input struct {
		Cart      []models.CartItem `json:"cart"`
		BookingID string            `json:"bookingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if len(input.Cart) == 0 || input.BookingID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	lineItems, totalMinor := BuildLineItems(input.Cart)
	metadata := map[string]string{
		"userId":      userID,
		"bookingId":   input.BookingID,
		"cartSummary": CartSummary(input.Cart),
	}

	session, err := Gateway.CreateSession(r.Context(), lineItems,
		clientURL()+"/payment-success?session_id={CHECKOUT_SESSION_ID}",
		clientURL()+"/payment-cancelled",
		metadata,
	)
	if err != nil {
		log.Printf("checkout session error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	payment := models.Payment{
		PaymentID: utils.GetUUID(),
		BookingID: input.BookingID,
		UserID:    userID,
		SessionID: session.ID,
		Amount:    totalMinor,
		Currency:  os.Getenv("PAY_CURRENCY"),
		Status:    models.PaymentPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if payment.Currency == "" {
		payment.Currency = "inr"
	}
	if _, err := db.PaymentsCollection.InsertOne(r.Context(), payment); err != nil {
		log.Printf("payment record insert failed for session %s: %v", session.ID, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"url": session.URL})
}

// VerifyPayment confirms a session with the gateway, flips the payment
// record to paid and the booking to booked, then mails the receipt in
// the background. The receipt is rendered in memory and thrown away;
// asking again regenerates it from the gateway record.
func VerifyPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("sessionId")
	if sessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid session")
		return
	}

	details, err := Gateway.RetrieveSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Payment not completed")
		return
	}
	if details.PaymentStatus != "paid" {
		// An expired session can never complete; record the failure so the
		// payment doc doesn't sit pending forever.
		if details.Status == "expired" {
			_, uerr := db.PaymentsCollection.UpdateOne(r.Context(),
				bson.M{"sessionid": sessionID, "status": models.PaymentPending},
				bson.M{"$set": bson.M{"status": models.PaymentFailed, "updated_at": time.Now()}},
			)
			if uerr != nil {
				log.Printf("payment fail-mark failed for session %s: %v", sessionID, uerr)
			}
		}
		utils.RespondWithError(w, http.StatusBadRequest, "Payment not completed")
		return
	}

	items := ReconstructCart(details.Metadata["cartSummary"])

	// Flip the payment record; idempotent on re-verification.
	_, err = db.PaymentsCollection.UpdateOne(r.Context(),
		bson.M{"sessionid": sessionID},
		bson.M{"$set": bson.M{"status": models.PaymentPaid, "updated_at": time.Now()}},
	)
	if err != nil {
		log.Printf("payment update failed for session %s: %v", sessionID, err)
	}

	// The booking moves pending-payment → booked; it stays active.
	if bookingID := details.Metadata["bookingId"]; bookingID != "" {
		_, err = db.BookingsCollection.UpdateOne(r.Context(),
			bson.M{"bookingid": bookingID, "status": models.StatusPendingPayment},
			bson.M{"$set": bson.M{"status": models.StatusBooked, "updated_at": time.Now()}},
		)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to confirm booking")
			return
		}

		go mq.Emit(context.Background(), models.Event{
			Type:      "payment-confirmed",
			BookingID: bookingID,
			UserID:    details.Metadata["userId"],
			SessionID: sessionID,
		})
	}

	go sendReceipt(details, items)

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"payment": map[string]any{
			"id":         details.ID,
			"amount":     fmt.Sprintf("%.2f", float64(details.AmountTotal)/100),
			"currency":   details.Currency,
			"status":     "PAID",
			"receiptUrl": clientURL() + "/api/payments/receipt/" + sessionID,
		},
	})
}

func sendReceipt(details stripe.SessionDetails, items []models.CartItem) {
	if details.CustomerEmail == "" {
		log.Printf("no email on session %s; skipping receipt", details.ID)
		return
	}

	pdf, err := BuildReceiptPDF(details, items)
	if err != nil {
		log.Printf("receipt render failed for session %s: %v", details.ID, err)
		return
	}

	var lines []string
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s × %d", item.Name, item.Quantity))
	}
	body := fmt.Sprintf(
		"Thank you for your payment of %.2f %s.\n\nOrdered Items:\n%s\n\nTransaction ID: %s\nStatus: PAID\n\nAttached is your receipt.",
		float64(details.AmountTotal)/100, strings.ToUpper(details.Currency),
		strings.Join(lines, "\n"), details.ID,
	)

	err = mailReceipt(details.CustomerEmail, body, details.ID, pdf)
	if err != nil {
		log.Printf("receipt email to %s failed: %v", details.CustomerEmail, err)
		return
	}
	log.Printf("receipt emailed to %s for session %s", details.CustomerEmail, details.ID)
}

// GetReceipt regenerates the receipt from the gateway record and streams
// it. Nothing is kept on disk between requests.
func GetReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("sessionId")

	details, err := Gateway.RetrieveSession(r.Context(), sessionID)
	if err != nil || details.PaymentStatus != "paid" {
		utils.RespondWithError(w, http.StatusNotFound, "Receipt not found")
		return
	}

	items := ReconstructCart(details.Metadata["cartSummary"])
	pdf, err := BuildReceiptPDF(details, items)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=receipt-"+sessionID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
