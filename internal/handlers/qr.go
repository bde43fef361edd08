package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/aerox-airport/lost-luggage/internal/models"
	"github.com/aerox-airport/lost-luggage/internal/qr"
	"github.com/aerox-airport/lost-luggage/internal/storage"
)

// GetBooking fetches a passenger-booking record for the QR generator page.
// The flight_bookings collection is unrelated to the report entities.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	booking, err := h.bookings.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, "Booking not found")
		return
	}
	if err != nil {
		respondServerError(w, "Error fetching booking", err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type sendQREmailRequest struct {
	Email   string `json:"email"`
	QRImage string `json:"qrImage"`
}

// SendQREmail relays a base64 PNG QR code to the given address as an email
// attachment.
func (h *Handler) SendQREmail(w http.ResponseWriter, r *http.Request) {
	var req sendQREmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.QRImage == "" {
		respondMessage(w, http.StatusBadRequest, "Missing email or QR image")
		return
	}

	raw := strings.TrimPrefix(req.QRImage, "data:image/png;base64,")
	png, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid QR image encoding")
		return
	}

	if err := h.mailer.SendQRCode(req.Email, png); err != nil {
		respondServerError(w, "Failed to send email", err)
		return
	}
	respondMessage(w, http.StatusOK, "Email sent successfully")
}

// EncodeQR renders a passenger identity as a PNG QR image.
func (h *Handler) EncodeQR(w http.ResponseWriter, r *http.Request) {
	var identity models.PassengerIdentity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if identity.IsZero() {
		respondMessage(w, http.StatusBadRequest, "Empty passenger identity")
		return
	}

	png, err := qr.Encode(identity)
	if err != nil {
		respondServerError(w, "Failed to generate QR code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR image")
	}
}

// DecodeQR reads an uploaded QR image and returns the embedded passenger
// identity.
func (h *Handler) DecodeQR(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		respondMessage(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	fh := singleFile(r.MultipartForm, "image")
	if fh == nil {
		respondMessage(w, http.StatusBadRequest, "Image is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondServerError(w, "Failed to read image", err)
		return
	}
	defer f.Close()

	identity, err := qr.DecodeFile(f)
	if errors.Is(err, qr.ErrInvalidFormat) {
		respondMessage(w, http.StatusBadRequest, "Invalid QR code format")
		return
	}
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "No QR code found in image")
		return
	}
	respondJSON(w, http.StatusOK, identity)
}
