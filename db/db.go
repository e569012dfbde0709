package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection     *mongo.Collection
	MenuCollection     *mongo.Collection
	BookingsCollection *mongo.Collection
	PaymentsCollection *mongo.Collection
	Client             *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("breakfastdb")
	UserCollection = database.Collection("users")
	MenuCollection = database.Collection("menu")
	BookingsCollection = database.Collection("bookings")
	PaymentsCollection = database.Collection("payments")
}

// Index names referenced by the booking seat-claim logic when it needs
// to tell which constraint a duplicate-key error came from.
const (
	IdxUserSlot = "uniq_active_user_slot"
	IdxSeatSlot = "uniq_active_seat_slot"
)

// EnsureIndexes installs the unique constraints that make booking
// creation an atomic conditional insert. Both are partial over
// active bookings only, so cancelled/completed bookings release
// their claims without being rewritten.
func EnsureIndexes(ctx context.Context) error {
	activeOnly := bson.M{"active": true}

	_, err := BookingsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userid", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().
				SetName(IdxUserSlot).
				SetUnique(true).
				SetPartialFilterExpression(activeOnly),
		},
		{
			Keys: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "seat", Value: 1}},
			Options: options.Index().
				SetName(IdxSeatSlot).
				SetUnique(true).
				SetPartialFilterExpression(activeOnly),
		},
		{
			Keys:    bson.D{{Key: "bookingid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = PaymentsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
