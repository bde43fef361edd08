package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aerox-airport/lost-luggage/internal/models"
)

// BookingStore reads passenger-booking records from the flight_bookings
// collection. The QR generator page is its only consumer.
type BookingStore struct {
	col *mongo.Collection
}

func NewBookingStore(m *Mongo) *BookingStore {
	return &BookingStore{col: m.db.Collection("flight_bookings")}
}

// Get returns the booking with the given hex id, or ErrNotFound.
func (s *BookingStore) Get(ctx context.Context, id string) (*models.FlightBooking, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var booking models.FlightBooking
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flight booking: %w", err)
	}
	return &booking, nil
}
