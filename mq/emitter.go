package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"fastbreakfast/db"
	"fastbreakfast/models"
	"fastbreakfast/notify"
	"fastbreakfast/rdx"

	"go.mongodb.org/mongo-driver/bson"
)

const channel = "booking-events"

// Emit publishes a lifecycle event to Redis. Dispatch is fire-and-forget:
// a publish failure is logged, never returned, so it can't undo the state
// change that triggered it.
func Emit(ctx context.Context, event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s event: %v", event.Type, err)
		return
	}
}

// StartNotificationWorker consumes booking events and dispatches the
// corresponding user notifications.
func StartNotificationWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[NotificationWorker] Listening for booking events...")

	for msg := range ch {
		var event models.Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[NotificationWorker] Failed to parse event: %v", err)
			continue
		}

		switch event.Type {
		case "booking-created":
			notifyBookingCreated(ctx, event)
		case "payment-confirmed":
			log.Printf("[NotificationWorker] Payment confirmed for booking %s", event.BookingID)
		default:
			log.Printf("[NotificationWorker] Unknown event type: %s", event.Type)
		}
	}
}

func notifyBookingCreated(ctx context.Context, event models.Event) {
	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": event.UserID}).Decode(&user); err != nil {
		log.Printf("[NotificationWorker] User %s not found: %v", event.UserID, err)
		return
	}
	if user.Email == "" {
		return
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nWe've received your booking request. Please complete payment to confirm.\n\nDate: %s\nTime: %s\nGuests: %d\nStatus: Pending Payment\n\nOnce payment is successful, you'll receive a confirmation email.\n\nThank you for choosing Fast Breakfast!",
		user.Name, event.Date, event.Time, event.Guests,
	)

	if err := notify.SendEmail(user.Email, "Booking Created - Awaiting Payment", body); err != nil {
		log.Printf("[NotificationWorker] Booking email to %s failed: %v", user.Email, err)
	}
}
