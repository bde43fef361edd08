package models

import "time"

// LostReportSubmitted is published after a lost report is persisted.
type LostReportSubmitted struct {
	ID            string    `json:"id"`
	PassengerName string    `json:"passenger_name"`
	Airline       string    `json:"airline"`
	FlightNumber  string    `json:"flight_number"`
	BagColor      string    `json:"bag_color"`
	BagSize       string    `json:"bag_size"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// FoundReportSubmitted is published after a found report is persisted.
type FoundReportSubmitted struct {
	ID             string    `json:"id"`
	FinderName     string    `json:"finder_name"`
	Location       string    `json:"location"`
	BagDescription string    `json:"bag_description"`
	BagColor       string    `json:"bag_color"`
	BagSize        string    `json:"bag_size"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
}

// LostStatusChanged is published after a lost report's status field has been
// committed with a new value. The update commits first; delivery of this
// event is best-effort and never rolls the update back.
type LostStatusChanged struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FoundStatusChanged mirrors LostStatusChanged for found reports.
type FoundStatusChanged struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}
