package db

import (
	"context"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tengri/store"
)

var (
	ToursCollection      *mongo.Collection
	OrdersCollection     *mongo.Collection
	PassengersCollection *mongo.Collection
	SeatLedgerCollection *mongo.Collection
	UsersCollection      *mongo.Collection
	Client               *mongo.Client
)

// Init connects MongoDB and wires the portal collections.
func Init(ctx context.Context) error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	database := Client.Database("traveldb")
	ToursCollection = database.Collection("tours")
	OrdersCollection = database.Collection("orders")
	PassengersCollection = database.Collection("passengers")
	SeatLedgerCollection = database.Collection("seat_ledger")
	UsersCollection = database.Collection("users")
	return nil
}

// Store bundles the collections into the record-store implementation.
func Store() *store.Mongo {
	return &store.Mongo{
		Tours:      ToursCollection,
		Orders:     OrdersCollection,
		Passengers: PassengersCollection,
		Ledger:     SeatLedgerCollection,
	}
}
