package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bag size options accepted on both report kinds.
const (
	BagSizeSmall  = "Small"
	BagSizeMedium = "Medium"
	BagSizeLarge  = "Large"
)

// Lost report workflow statuses.
const (
	LostStatusPending = "Pending"
	LostStatusMatched = "Matched"
	LostStatusClaimed = "Claimed"
)

// Found report workflow statuses.
const (
	FoundStatusUnmatched = "Unmatched"
	FoundStatusMatched   = "Matched"
	FoundStatusReturned  = "Returned"
	FoundStatusClosed    = "Closed"
)

// LostReport is a passenger-filed record of a missing bag.
type LostReport struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PassengerName     string             `bson:"passengerName" json:"passengerName"`
	PassengerID       string             `bson:"passengerId" json:"passengerId"`
	Email             string             `bson:"email" json:"email"`
	Phone             string             `bson:"phone" json:"phone"`
	WhatsappNumber    string             `bson:"whatsappNumber" json:"whatsappNumber"`
	Airline           string             `bson:"airline" json:"airline"`
	FlightNumber      string             `bson:"flightNumber" json:"flightNumber"`
	FlightDate        time.Time          `bson:"flightDate" json:"flightDate"`
	FlightTime        string             `bson:"flightTime" json:"flightTime"`
	BagSize           string             `bson:"bagSize" json:"bagSize"`
	BagColor          string             `bson:"bagColor" json:"bagColor"`
	BagBrand          string             `bson:"bagBrand" json:"bagBrand"`
	UniqueIdentifiers string             `bson:"uniqueIdentifiers" json:"uniqueIdentifiers"`
	DateOfLoss        time.Time          `bson:"dateOfLoss" json:"dateOfLoss"`
	LastSeenLocation  string             `bson:"lastSeenLocation" json:"lastSeenLocation"`
	QRCodeImage       string             `bson:"qrCodeImage,omitempty" json:"qrCodeImage,omitempty"`
	BagImage          string             `bson:"bagImage,omitempty" json:"bagImage,omitempty"`
	Status            string             `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FoundReport is a finder-filed record of a located bag.
type FoundReport struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FinderName     string             `bson:"finderName" json:"finderName"`
	Phone          string             `bson:"phone" json:"phone"`
	Location       string             `bson:"location" json:"location"`
	FindDate       time.Time          `bson:"findDate" json:"findDate"`
	FindTime       string             `bson:"findTime" json:"findTime"`
	BagDescription string             `bson:"bagDescription" json:"bagDescription"`
	BagColor       string             `bson:"bagColor" json:"bagColor"`
	BagSize        string             `bson:"bagSize" json:"bagSize"`
	QRCodeImage    string             `bson:"qrCodeImage,omitempty" json:"qrCodeImage,omitempty"`
	BagImage       string             `bson:"bagImage,omitempty" json:"bagImage,omitempty"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LostReportUpdate is the allow-list of fields the admin dashboard may change
// on a lost report. Nil fields are left untouched.
type LostReportUpdate struct {
	PassengerName     *string
	PassengerID       *string
	Email             *string
	Phone             *string
	WhatsappNumber    *string
	Airline           *string
	FlightNumber      *string
	FlightDate        *time.Time
	FlightTime        *string
	BagSize           *string
	BagColor          *string
	BagBrand          *string
	UniqueIdentifiers *string
	DateOfLoss        *time.Time
	LastSeenLocation  *string
	QRCodeImage       *string
	BagImage          *string
	Status            *string
}

// FoundReportUpdate is the allow-list of updatable fields on a found report.
type FoundReportUpdate struct {
	FinderName     *string
	Phone          *string
	Location       *string
	FindDate       *time.Time
	FindTime       *string
	BagDescription *string
	BagColor       *string
	BagSize        *string
	QRCodeImage    *string
	BagImage       *string
	Status         *string
}

// ValidLostStatus reports whether s is one of the lost workflow statuses.
func ValidLostStatus(s string) bool {
	switch s {
	case LostStatusPending, LostStatusMatched, LostStatusClaimed:
		return true
	}
	return false
}

// ValidFoundStatus reports whether s is one of the found workflow statuses.
func ValidFoundStatus(s string) bool {
	switch s {
	case FoundStatusUnmatched, FoundStatusMatched, FoundStatusReturned, FoundStatusClosed:
		return true
	}
	return false
}
