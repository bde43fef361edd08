package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/aerox-airport/lost-luggage/internal/models"
	"github.com/aerox-airport/lost-luggage/internal/storage"
)

// lostRequiredFields lists the fields a passenger must supply, in the order
// they are reported back when missing.
var lostRequiredFields = []string{
	"passengerName", "passengerId", "email", "phone", "whatsappNumber",
	"airline", "flightNumber", "flightDate", "flightTime",
	"bagSize", "bagColor", "bagBrand", "uniqueIdentifiers",
	"dateOfLoss", "lastSeenLocation",
}

// ListLost returns all lost reports.
func (h *Handler) ListLost(w http.ResponseWriter, r *http.Request) {
	reports, err := h.lost.List(r.Context())
	if err != nil {
		respondServerError(w, "Error fetching lost reports", err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// CreateLost handles the public lost-luggage submission form.
func (h *Handler) CreateLost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		log.Error().Err(err).Msg("Failed to parse lost report form")
		respondMessage(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	values := map[string]string{}
	for _, name := range lostRequiredFields {
		values[name] = strings.TrimSpace(r.FormValue(name))
	}

	if missing := missingFields(values, lostRequiredFields); len(missing) > 0 {
		log.Warn().Strs("missing_fields", missing).Msg("Lost report rejected")
		respondMissingFields(w, missing)
		return
	}

	if !validBagSize(values["bagSize"]) {
		respondMessage(w, http.StatusBadRequest, "Invalid bagSize value")
		return
	}

	flightDate, err := parseDate(values["flightDate"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid flightDate format")
		return
	}
	dateOfLoss, err := parseDate(values["dateOfLoss"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid dateOfLoss format")
		return
	}

	// Attachments are written before the document; a failed document write
	// leaves them orphaned (accepted, logged below).
	var qrCodeImage, bagImage string
	if fh := singleFile(r.MultipartForm, "qrCodeImage"); fh != nil {
		name, ok := h.saveAttachment(w, r, fh)
		if !ok {
			return
		}
		qrCodeImage = name
	}
	if fh := singleFile(r.MultipartForm, "bagImage"); fh != nil {
		name, ok := h.saveAttachment(w, r, fh)
		if !ok {
			return
		}
		bagImage = name
	}

	report := &models.LostReport{
		PassengerName:     values["passengerName"],
		PassengerID:       values["passengerId"],
		Email:             values["email"],
		Phone:             values["phone"],
		WhatsappNumber:    values["whatsappNumber"],
		Airline:           values["airline"],
		FlightNumber:      values["flightNumber"],
		FlightDate:        flightDate,
		FlightTime:        values["flightTime"],
		BagSize:           values["bagSize"],
		BagColor:          values["bagColor"],
		BagBrand:          values["bagBrand"],
		UniqueIdentifiers: values["uniqueIdentifiers"],
		DateOfLoss:        dateOfLoss,
		LastSeenLocation:  values["lastSeenLocation"],
		QRCodeImage:       qrCodeImage,
		BagImage:          bagImage,
		// Submissions always start Pending, whatever the form claims.
		Status: models.LostStatusPending,
	}

	if err := h.lost.Insert(r.Context(), report); err != nil {
		if qrCodeImage != "" || bagImage != "" {
			log.Warn().
				Str("qrCodeImage", qrCodeImage).
				Str("bagImage", bagImage).
				Msg("Report write failed after attachments were stored; files orphaned")
		}
		respondServerError(w, "Unable to add lost report", err)
		return
	}

	if err := h.events.LostSubmitted(r.Context(), models.LostReportSubmitted{
		ID:            report.ID.Hex(),
		PassengerName: report.PassengerName,
		Airline:       report.Airline,
		FlightNumber:  report.FlightNumber,
		BagColor:      report.BagColor,
		BagSize:       report.BagSize,
		Status:        report.Status,
		Timestamp:     time.Now().UTC(),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to publish lost.submitted event")
		// Don't fail the request - report is still created
	}

	log.Info().
		Str("report_id", report.ID.Hex()).
		Str("passenger", report.PassengerName).
		Msg("Lost report created")

	respondJSON(w, http.StatusCreated, report)
}

// GetLost returns a single lost report by id.
func (h *Handler) GetLost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.lost.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Lost report not found")
		return
	}
	if err != nil {
		respondServerError(w, "Error fetching lost report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// lostUpdateRequest is the JSON allow-list for PUT /lost/{id}. Attachment
// fields are only settable through multipart file uploads.
type lostUpdateRequest struct {
	PassengerName     *string `json:"passengerName"`
	PassengerID       *string `json:"passengerId"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	WhatsappNumber    *string `json:"whatsappNumber"`
	Airline           *string `json:"airline"`
	FlightNumber      *string `json:"flightNumber"`
	FlightDate        *string `json:"flightDate"`
	FlightTime        *string `json:"flightTime"`
	BagSize           *string `json:"bagSize"`
	BagColor          *string `json:"bagColor"`
	BagBrand          *string `json:"bagBrand"`
	UniqueIdentifiers *string `json:"uniqueIdentifiers"`
	DateOfLoss        *string `json:"dateOfLoss"`
	LastSeenLocation  *string `json:"lastSeenLocation"`
	Status            *string `json:"status"`
}

// UpdateLost merges the supplied fields into an existing report. A status
// change to Matched triggers the passenger notification after the update has
// been committed; delivery failures never affect the response.
func (h *Handler) UpdateLost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	existing, err := h.lost.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Lost report not found")
		return
	}
	if err != nil {
		respondServerError(w, "Error fetching lost report", err)
		return
	}

	var req lostUpdateRequest
	var upd models.LostReportUpdate

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			respondMessage(w, http.StatusBadRequest, "Failed to parse form")
			return
		}
		form := r.MultipartForm
		req = lostUpdateRequest{
			PassengerName:     formString(form, "passengerName"),
			PassengerID:       formString(form, "passengerId"),
			Email:             formString(form, "email"),
			Phone:             formString(form, "phone"),
			WhatsappNumber:    formString(form, "whatsappNumber"),
			Airline:           formString(form, "airline"),
			FlightNumber:      formString(form, "flightNumber"),
			FlightDate:        formString(form, "flightDate"),
			FlightTime:        formString(form, "flightTime"),
			BagSize:           formString(form, "bagSize"),
			BagColor:          formString(form, "bagColor"),
			BagBrand:          formString(form, "bagBrand"),
			UniqueIdentifiers: formString(form, "uniqueIdentifiers"),
			DateOfLoss:        formString(form, "dateOfLoss"),
			LastSeenLocation:  formString(form, "lastSeenLocation"),
			Status:            formString(form, "status"),
		}
		if fh := singleFile(form, "qrCodeImage"); fh != nil {
			name, ok := h.saveAttachment(w, r, fh)
			if !ok {
				return
			}
			upd.QRCodeImage = &name
		}
		if fh := singleFile(form, "bagImage"); fh != nil {
			name, ok := h.saveAttachment(w, r, fh)
			if !ok {
				return
			}
			upd.BagImage = &name
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	}

	upd.PassengerName = req.PassengerName
	upd.PassengerID = req.PassengerID
	upd.Email = req.Email
	upd.Phone = req.Phone
	upd.WhatsappNumber = req.WhatsappNumber
	upd.Airline = req.Airline
	upd.FlightNumber = req.FlightNumber
	upd.FlightTime = req.FlightTime
	upd.BagSize = req.BagSize
	upd.BagColor = req.BagColor
	upd.BagBrand = req.BagBrand
	upd.UniqueIdentifiers = req.UniqueIdentifiers
	upd.LastSeenLocation = req.LastSeenLocation

	if req.FlightDate != nil {
		d, err := parseDate(*req.FlightDate)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid flightDate format")
			return
		}
		upd.FlightDate = &d
	}
	if req.DateOfLoss != nil {
		d, err := parseDate(*req.DateOfLoss)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid dateOfLoss format")
			return
		}
		upd.DateOfLoss = &d
	}
	if req.BagSize != nil && !validBagSize(strings.TrimSpace(*req.BagSize)) {
		respondMessage(w, http.StatusBadRequest, "Invalid bagSize value")
		return
	}

	var newStatus string
	if req.Status != nil {
		newStatus = strings.TrimSpace(*req.Status)
		if !models.ValidLostStatus(newStatus) {
			respondMessage(w, http.StatusBadRequest, "Invalid status value")
			return
		}
		upd.Status = &newStatus
	}

	updated, err := h.lost.Update(r.Context(), id, upd)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Lost report not found")
		return
	}
	if err != nil {
		respondServerError(w, "Unable to update lost report", err)
		return
	}

	// The update is committed; everything below is best-effort.
	if upd.Status != nil && newStatus != existing.Status {
		if err := h.events.LostStatusChanged(r.Context(), models.LostStatusChanged{
			ID:         updated.ID.Hex(),
			From:       existing.Status,
			To:         newStatus,
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			log.Error().Err(err).Msg("Failed to publish lost.status_changed event")
		}
	}
	if upd.Status != nil && newStatus == models.LostStatusMatched {
		h.notifier.LostMatched(r.Context(), updated)
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteLost removes a lost report.
func (h *Handler) DeleteLost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.lost.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Lost report not found")
		return
	}
	if err != nil {
		respondServerError(w, "Unable to delete lost report", err)
		return
	}

	log.Info().Str("report_id", id).Msg("Lost report deleted")
	respondJSON(w, http.StatusOK, report)
}

func validBagSize(s string) bool {
	switch s {
	case models.BagSizeSmall, models.BagSizeMedium, models.BagSizeLarge:
		return true
	}
	return false
}
