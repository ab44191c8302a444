package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tengri/models"
)

// Mongo implements the record-store contracts over the portal collections.
type Mongo struct {
	Tours      *mongo.Collection
	Orders     *mongo.Collection
	Passengers *mongo.Collection
	Ledger     *mongo.Collection
}

// ---------- Tours ----------

func (m *Mongo) GetTour(ctx context.Context, id string) (models.Tour, error) {
	var t models.Tour
	err := m.Tours.FindOne(ctx, bson.M{"id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return t, ErrNotFound
	}
	return t, err
}

func (m *Mongo) ListTours(ctx context.Context, visibleOnly bool) ([]models.Tour, error) {
	filter := bson.M{}
	if visibleOnly {
		filter["visible"] = true
	}
	cur, err := m.Tours.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tours []models.Tour
	for cur.Next(ctx) {
		var t models.Tour
		if err := cur.Decode(&t); err != nil {
			continue
		}
		tours = append(tours, t)
	}
	return tours, cur.Err()
}

func (m *Mongo) InsertTour(ctx context.Context, t models.Tour) error {
	_, err := m.Tours.InsertOne(ctx, t)
	return err
}

func (m *Mongo) UpdateTour(ctx context.Context, t models.Tour) error {
	res, err := m.Tours.ReplaceOne(ctx, bson.M{"id": t.ID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteTour(ctx context.Context, id string) error {
	_, err := m.Tours.DeleteOne(ctx, bson.M{"id": id})
	return err
}

// ---------- Orders ----------

func (m *Mongo) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := m.Orders.FindOne(ctx, bson.M{"id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return o, ErrNotFound
	}
	return o, err
}

func (m *Mongo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.TourID != "" {
		filter["tourId"] = f.TourID
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.ExcludeCancelled {
		filter["status"] = bson.M{"$ne": models.OrderCancelled}
	}
	if f.VisibleOnly {
		filter["visible"] = true
	}

	cur, err := m.Orders.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orders []models.Order
	for cur.Next(ctx) {
		var o models.Order
		if err := cur.Decode(&o); err != nil {
			continue
		}
		orders = append(orders, o)
	}
	return orders, cur.Err()
}

func (m *Mongo) InsertOrder(ctx context.Context, o models.Order) error {
	_, err := m.Orders.InsertOne(ctx, o)
	return err
}

func (m *Mongo) UpdateOrderStatus(ctx context.Context, id, status, editedBy string) (models.Order, error) {
	res := m.Orders.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"status":    status,
			"editedBy":  editedBy,
			"updatedAt": time.Now().Unix(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Order
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return updated, ErrNotFound
		}
		return updated, err
	}
	return updated, nil
}

func (m *Mongo) DeleteOrder(ctx context.Context, id string) error {
	_, err := m.Orders.DeleteOne(ctx, bson.M{"id": id})
	return err
}

// ---------- Passengers ----------

func (m *Mongo) ListByOrder(ctx context.Context, orderID string) ([]models.CommittedPassenger, error) {
	cur, err := m.Passengers.Find(ctx, bson.M{"orderId": orderID},
		options.Find().SetSort(bson.M{"serialNo": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ps []models.CommittedPassenger
	for cur.Next(ctx) {
		var p models.CommittedPassenger
		if err := cur.Decode(&p); err != nil {
			continue
		}
		ps = append(ps, p)
	}
	return ps, cur.Err()
}

func (m *Mongo) CountByOrders(ctx context.Context, orderIDs []string) (int, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	n, err := m.Passengers.CountDocuments(ctx, bson.M{
		"orderId": bson.M{"$in": orderIDs},
		"status":  bson.M{"$ne": models.PassengerCancelled},
	})
	return int(n), err
}

func (m *Mongo) InsertPassengers(ctx context.Context, ps []models.CommittedPassenger) error {
	if len(ps) == 0 {
		return nil
	}
	docs := make([]interface{}, len(ps))
	for i, p := range ps {
		docs[i] = p
	}
	_, err := m.Passengers.InsertMany(ctx, docs)
	return err
}

func (m *Mongo) DeleteByOrder(ctx context.Context, orderID string) error {
	_, err := m.Passengers.DeleteMany(ctx, bson.M{"orderId": orderID})
	return err
}

func (m *Mongo) CancelByOrder(ctx context.Context, orderID string) error {
	_, err := m.Passengers.UpdateMany(ctx,
		bson.M{"orderId": orderID},
		bson.M{"$set": bson.M{"status": models.PassengerCancelled}},
	)
	return err
}

// ---------- Seat ledger ----------

// Reserve takes n seats for (tourID, date) with a single conditional write:
// the update matches only while booked <= capacity-n, so the increment can
// never push the ledger past capacity even under concurrent commits.
func (m *Mongo) Reserve(ctx context.Context, tourID, date string, n, capacity int) error {
	// Ensure the ledger row exists before the guarded increment.
	_, err := m.Ledger.UpdateOne(ctx,
		bson.M{"tourId": tourID, "date": date},
		bson.M{"$setOnInsert": bson.M{"tourId": tourID, "date": date, "booked": 0}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	res, err := m.Ledger.UpdateOne(ctx,
		bson.M{
			"tourId": tourID,
			"date":   date,
			"booked": bson.M{"$lte": capacity - n}, // prevent oversell
		},
		bson.M{"$inc": bson.M{"booked": n}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrNoSeats
	}
	return nil
}

func (m *Mongo) Release(ctx context.Context, tourID, date string, n int) error {
	_, err := m.Ledger.UpdateOne(ctx,
		bson.M{"tourId": tourID, "date": date, "booked": bson.M{"$gte": n}},
		bson.M{"$inc": bson.M{"booked": -n}},
	)
	return err
}
