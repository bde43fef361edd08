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

var foundRequiredFields = []string{
	"finderName", "phone", "location", "findDate", "findTime",
	"bagDescription", "bagColor", "bagSize",
}

// ListFound returns all found reports.
func (h *Handler) ListFound(w http.ResponseWriter, r *http.Request) {
	reports, err := h.found.List(r.Context())
	if err != nil {
		respondServerError(w, "Error fetching found reports", err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// CreateFound handles the public found-luggage submission form.
func (h *Handler) CreateFound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		log.Error().Err(err).Msg("Failed to parse found report form")
		respondMessage(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	values := map[string]string{}
	for _, name := range foundRequiredFields {
		values[name] = strings.TrimSpace(r.FormValue(name))
	}

	if missing := missingFields(values, foundRequiredFields); len(missing) > 0 {
		log.Warn().Strs("missing_fields", missing).Msg("Found report rejected")
		respondMissingFields(w, missing)
		return
	}

	if !validBagSize(values["bagSize"]) {
		respondMessage(w, http.StatusBadRequest, "Invalid bagSize value")
		return
	}

	findDate, err := parseDate(values["findDate"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid findDate format")
		return
	}

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

	report := &models.FoundReport{
		FinderName:     values["finderName"],
		Phone:          values["phone"],
		Location:       values["location"],
		FindDate:       findDate,
		FindTime:       values["findTime"],
		BagDescription: values["bagDescription"],
		BagColor:       values["bagColor"],
		BagSize:        values["bagSize"],
		QRCodeImage:    qrCodeImage,
		BagImage:       bagImage,
		Status:         models.FoundStatusUnmatched,
	}

	if err := h.found.Insert(r.Context(), report); err != nil {
		if qrCodeImage != "" || bagImage != "" {
			log.Warn().
				Str("qrCodeImage", qrCodeImage).
				Str("bagImage", bagImage).
				Msg("Report write failed after attachments were stored; files orphaned")
		}
		respondServerError(w, "Unable to add found report", err)
		return
	}

	if err := h.events.FoundSubmitted(r.Context(), models.FoundReportSubmitted{
		ID:             report.ID.Hex(),
		FinderName:     report.FinderName,
		Location:       report.Location,
		BagDescription: report.BagDescription,
		BagColor:       report.BagColor,
		BagSize:        report.BagSize,
		Status:         report.Status,
		Timestamp:      time.Now().UTC(),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to publish found.submitted event")
	}

	log.Info().
		Str("report_id", report.ID.Hex()).
		Str("finder", report.FinderName).
		Msg("Found report created")

	respondJSON(w, http.StatusCreated, report)
}

// GetFound returns a single found report by id.
func (h *Handler) GetFound(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.found.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Found report not found")
		return
	}
	if err != nil {
		respondServerError(w, "Error fetching found report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// foundUpdateRequest is the JSON allow-list for PUT /found/{id}.
type foundUpdateRequest struct {
	FinderName     *string `json:"finderName"`
	Phone          *string `json:"phone"`
	Location       *string `json:"location"`
	FindDate       *string `json:"findDate"`
	FindTime       *string `json:"findTime"`
	BagDescription *string `json:"bagDescription"`
	BagColor       *string `json:"bagColor"`
	BagSize        *string `json:"bagSize"`
	Status         *string `json:"status"`
}

// UpdateFound merges the supplied fields into an existing report. Status
// changes on found reports carry no notification side effect.
func (h *Handler) UpdateFound(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	existing, err := h.found.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Found report not found")
		return
	}
	if err != nil {
		respondServerError(w, "Error fetching found report", err)
		return
	}

	var req foundUpdateRequest
	var upd models.FoundReportUpdate

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			respondMessage(w, http.StatusBadRequest, "Failed to parse form")
			return
		}
		form := r.MultipartForm
		req = foundUpdateRequest{
			FinderName:     formString(form, "finderName"),
			Phone:          formString(form, "phone"),
			Location:       formString(form, "location"),
			FindDate:       formString(form, "findDate"),
			FindTime:       formString(form, "findTime"),
			BagDescription: formString(form, "bagDescription"),
			BagColor:       formString(form, "bagColor"),
			BagSize:        formString(form, "bagSize"),
			Status:         formString(form, "status"),
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

	upd.FinderName = req.FinderName
	upd.Phone = req.Phone
	upd.Location = req.Location
	upd.FindTime = req.FindTime
	upd.BagDescription = req.BagDescription
	upd.BagColor = req.BagColor
	upd.BagSize = req.BagSize

	if req.FindDate != nil {
		d, err := parseDate(*req.FindDate)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid findDate format")
			return
		}
		upd.FindDate = &d
	}
	if req.BagSize != nil && !validBagSize(strings.TrimSpace(*req.BagSize)) {
		respondMessage(w, http.StatusBadRequest, "Invalid bagSize value")
		return
	}

	var newStatus string
	if req.Status != nil {
		newStatus = strings.TrimSpace(*req.Status)
		if !models.ValidFoundStatus(newStatus) {
			respondMessage(w, http.StatusBadRequest, "Invalid status value")
			return
		}
		upd.Status = &newStatus
	}

	updated, err := h.found.Update(r.Context(), id, upd)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Found report not found")
		return
	}
	if err != nil {
		respondServerError(w, "Unable to update found report", err)
		return
	}

	if upd.Status != nil && newStatus != existing.Status {
		if err := h.events.FoundStatusChanged(r.Context(), models.FoundStatusChanged{
			ID:         updated.ID.Hex(),
			From:       existing.Status,
			To:         newStatus,
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			log.Error().Err(err).Msg("Failed to publish found.status_changed event")
		}
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteFound removes a found report.
func (h *Handler) DeleteFound(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	_, err := h.found.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Found report not found")
		return
	}
	if err != nil {
		respondServerError(w, "Unable to delete found report", err)
		return
	}

	log.Info().Str("report_id", id).Msg("Found report deleted")
	respondMessage(w, http.StatusOK, "Found report deleted successfully")
}
