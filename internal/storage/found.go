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

// FoundStore persists found reports in the found_reports collection.
type FoundStore struct {
	col *mongo.Collection
}

// NewFoundStore returns a store bound to the found_reports collection.
func NewFoundStore(m *Mongo) *FoundStore {
	col := m.db.Collection("found_reports")
	ensureCreatedAtIndex(col)
	return &FoundStore{col: col}
}

// List returns every found report, newest first.
func (s *FoundStore) List(ctx context.Context) ([]models.FoundReport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list found reports: %w", err)
	}
	defer cur.Close(ctx)

	reports := []models.FoundReport{}
	if err := cur.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode found reports: %w", err)
	}
	return reports, nil
}

// Insert assigns an id and timestamps and writes the report.
func (s *FoundStore) Insert(ctx context.Context, report *models.FoundReport) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	report.ID = primitive.NewObjectID()
	report.CreatedAt = now
	report.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("insert found report: %w", err)
	}
	return nil
}

// Get returns the report with the given hex id, or ErrNotFound.
func (s *FoundStore) Get(ctx context.Context, id string) (*models.FoundReport, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var report models.FoundReport
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get found report: %w", err)
	}
	return &report, nil
}

// Update applies the non-nil fields of upd and returns the updated document.
func (s *FoundStore) Update(ctx context.Context, id string, upd models.FoundReportUpdate) (*models.FoundReport, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	setString(set, "finderName", upd.FinderName)
	setString(set, "phone", upd.Phone)
	setString(set, "location", upd.Location)
	setTime(set, "findDate", upd.FindDate)
	setString(set, "findTime", upd.FindTime)
	setString(set, "bagDescription", upd.BagDescription)
	setString(set, "bagColor", upd.BagColor)
	setString(set, "bagSize", upd.BagSize)
	setString(set, "qrCodeImage", upd.QRCodeImage)
	setString(set, "bagImage", upd.BagImage)
	setString(set, "status", upd.Status)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var report models.FoundReport
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
		return nil, fmt.Errorf("update found report: %w", err)
	}
	return &report, nil
}

// Delete removes the report and returns the deleted document.
func (s *FoundStore) Delete(ctx context.Context, id string) (*models.FoundReport, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var report models.FoundReport
	err = s.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete found report: %w", err)
	}
	return &report, nil
}
