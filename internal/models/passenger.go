package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PassengerIdentity is the plaintext payload embedded in passenger QR codes.
// It is unrelated to the lost/found report entities.
type PassengerIdentity struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    string `json:"dateOfBirth"`
	Nationality    string `json:"nationality"`
	PassportNumber string `json:"passportNumber"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
}

// IsZero reports whether no identity field is set.
func (p PassengerIdentity) IsZero() bool {
	return p == PassengerIdentity{}
}

// FlightBooking is a passenger-booking record from the flight_bookings
// collection, consumed only by the QR generator flow.
type FlightBooking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	DateOfBirth    string             `bson:"dateOfBirth" json:"dateOfBirth"`
	Nationality    string             `bson:"nationality" json:"nationality"`
	PassportNumber string             `bson:"passportNumber" json:"passportNumber"`
	Email          string             `bson:"email" json:"email"`
	PhoneNumber    string             `bson:"phoneNumber" json:"phoneNumber"`
	FlightNumber   string             `bson:"flightNumber,omitempty" json:"flightNumber,omitempty"`
	Seat           string             `bson:"seat,omitempty" json:"seat,omitempty"`
}

// Identity extracts the QR payload fields from a booking.
func (b *FlightBooking) Identity() PassengerIdentity {
	return PassengerIdentity{
		FirstName:      b.FirstName,
		LastName:       b.LastName,
		DateOfBirth:    b.DateOfBirth,
		Nationality:    b.Nationality,
		PassportNumber: b.PassportNumber,
		Email:          b.Email,
		PhoneNumber:    b.PhoneNumber,
	}
}
