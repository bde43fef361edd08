package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aerox-airport/lost-luggage/internal/models"
)

// LostStore persists lost reports in the lost_reports collection.
type LostStore struct {
	col *mongo.Collection
}

// NewLostStore returns a store bound to the lost_reports collection.
func NewLostStore(m *Mongo) *LostStore {
	col := m.db.Collection("lost_reports")
	ensureCreatedAtIndex(col)
	return &LostStore{col: col}
}

// List returns every lost report, newest first.
func (s *LostStore) List(ctx context.Context) ([]models.LostReport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list lost reports: %w", err)
	}
	defer cur.Close(ctx)

	reports := []models.LostReport{}
	if err := cur.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode lost reports: %w", err)
	}
	return reports, nil
}

// Insert assigns an id and timestamps and writes the report.
func (s *LostStore) Insert(ctx context.Context, report *models.LostReport) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	report.ID = primitive.NewObjectID()
	report.CreatedAt = now
	report.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("insert lost report: %w", err)
	}
	return nil
}

// Get returns the report with the given hex id, or ErrNotFound.
func (s *LostStore) Get(ctx context.Context, id string) (*models.LostReport, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var report models.LostReport
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lost report: %w", err)
	}
	return &report, nil
}

// Update applies the non-nil fields of upd and returns the updated document.
func (s *LostStore) Update(ctx context.Context, id string, upd models.LostReportUpdate) (*models.LostReport, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	setString(set, "passengerName", upd.PassengerName)
	setString(set, "passengerId", upd.PassengerID)
	setString(set, "email", upd.Email)
	setString(set, "phone", upd.Phone)
	setString(set, "whatsappNumber", upd.WhatsappNumber)
	setString(set, "airline", upd.Airline)
	setString(set, "flightNumber", upd.FlightNumber)
	setTime(set, "flightDate", upd.FlightDate)
	setString(set, "flightTime", upd.FlightTime)
	setString(set, "bagSize", upd.BagSize)
	setString(set, "bagColor", upd.BagColor)
	setString(set, "bagBrand", upd.BagBrand)
	setString(set, "uniqueIdentifiers", upd.UniqueIdentifiers)
	setTime(set, "dateOfLoss", upd.DateOfLoss)
	setString(set, "lastSeenLocation", upd.LastSeenLocation)
	setString(set, "qrCodeImage", upd.QRCodeImage)
	setString(set, "bagImage", upd.BagImage)
	setString(set, "status", upd.Status)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var report models.LostReport
	err = s.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": sanitizeSet(set)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update lost report: %w", err)
	}
	return &report, nil
}

// Delete removes the report and returns the deleted document.
func (s *LostStore) Delete(ctx context.Context, id string) (*models.LostReport, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var report models.LostReport
	err = s.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete lost report: %w", err)
	}
	return &report, nil
}
