package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/aerox-airport/lost-luggage/internal/models"
	"github.com/aerox-airport/lost-luggage/internal/storage"
)

// maxFormMemory bounds in-memory multipart buffering; larger parts spill to
// temporary files.
const maxFormMemory = 10 << 20

const dateLayout = "2006-01-02"

// LostStore persists lost reports.
type LostStore interface {
	List(ctx context.Context) ([]models.LostReport, error)
	Insert(ctx context.Context, report *models.LostReport) error
	Get(ctx context.Context, id string) (*models.LostReport, error)
	Update(ctx context.Context, id string, upd models.LostReportUpdate) (*models.LostReport, error)
	Delete(ctx context.Context, id string) (*models.LostReport, error)
}

// FoundStore persists found reports.
type FoundStore interface {
	List(ctx context.Context) ([]models.FoundReport, error)
	Insert(ctx context.Context, report *models.FoundReport) error
	Get(ctx context.Context, id string) (*models.FoundReport, error)
	Update(ctx context.Context, id string, upd models.FoundReportUpdate) (*models.FoundReport, error)
	Delete(ctx context.Context, id string) (*models.FoundReport, error)
}

// BookingStore reads passenger-booking records for the QR generator page.
type BookingStore interface {
	Get(ctx context.Context, id string) (*models.FlightBooking, error)
}

// UploadStore stores report attachments and serves them back by filename.
type UploadStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
	HealthCheck(ctx context.Context) error
}

// Notifier dispatches passenger notifications on lost-report matches.
type Notifier interface {
	LostMatched(ctx context.Context, report *models.LostReport)
}

// EventPublisher publishes report lifecycle events.
type EventPublisher interface {
	LostSubmitted(ctx context.Context, event models.LostReportSubmitted) error
	FoundSubmitted(ctx context.Context, event models.FoundReportSubmitted) error
	LostStatusChanged(ctx context.Context, event models.LostStatusChanged) error
	FoundStatusChanged(ctx context.Context, event models.FoundStatusChanged) error
	HealthCheck() error
}

// Mailer relays QR codes as email attachments.
type Mailer interface {
	SendQRCode(to string, png []byte) error
}

// Pinger verifies the datastore connection for the health endpoint.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains all HTTP handlers.
type Handler struct {
	lost     LostStore
	found    FoundStore
	bookings BookingStore
	uploads  UploadStore
	notifier Notifier
	events   EventPublisher
	mailer   Mailer
	db       Pinger
}

// NewHandler creates a new handler instance.
func NewHandler(
	lost LostStore,
	found FoundStore,
	bookings BookingStore,
	uploads UploadStore,
	notifier Notifier,
	events EventPublisher,
	mailer Mailer,
	db Pinger,
) *Handler {
	return &Handler{
		lost:     lost,
		found:    found,
		bookings: bookings,
		uploads:  uploads,
		notifier: notifier,
		events:   events,
		mailer:   mailer,
		db:       db,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func respondServerError(w http.ResponseWriter, message string, err error) {
	log.Error().Err(err).Msg(message)
	respondJSON(w, http.StatusInternalServerError, map[string]string{
		"message": message,
		"error":   err.Error(),
	})
}

func respondMissingFields(w http.ResponseWriter, missing []string) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message":       "Missing required fields",
		"missingFields": missing,
	})
}

// missingFields returns the names of every empty required field, in the
// declared order, so the caller sees the full list at once.
func missingFields(values map[string]string, required []string) []string {
	missing := []string{}
	for _, name := range required {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// formString returns a pointer to the trimmed form value when the key was
// present in the request, nil otherwise.
func formString(form *multipart.Form, key string) *string {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := strings.TrimSpace(vals[0])
	return &v
}

// singleFile returns the first file uploaded under the named field, if any.
func singleFile(form *multipart.Form, key string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File[key]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// saveAttachment stores one uploaded file and writes the appropriate error
// response itself on failure. The bool reports success.
func (h *Handler) saveAttachment(w http.ResponseWriter, r *http.Request, fh *multipart.FileHeader) (string, bool) {
	name, err := h.uploads.Save(r.Context(), fh)
	if errors.Is(err, storage.ErrFileTooLarge) {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if err != nil {
		respondServerError(w, "Failed to store attachment", err)
		return "", false
	}
	return name, true
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(value))
}

// ServeUpload streams a stored attachment. URL convention: /uploads/<filename>.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	f, err := h.uploads.Open(r.Context(), filename)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, f); err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Failed to stream attachment")
	}
}

// HealthCheckHandler returns health status for the datastore, the event
// broker and the upload store.
func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]interface{}{
		"status": "healthy",
		"checks": map[string]string{
			"database": "ok",
			"events":   "ok",
			"uploads":  "ok",
		},
	}
	checks := health["checks"].(map[string]string)

	if err := h.db.HealthCheck(ctx); err != nil {
		health["status"] = "unhealthy"
		checks["database"] = err.Error()
	}
	if err := h.events.HealthCheck(); err != nil {
		health["status"] = "unhealthy"
		checks["events"] = err.Error()
	}
	if err := h.uploads.HealthCheck(ctx); err != nil {
		health["status"] = "unhealthy"
		checks["uploads"] = err.Error()
	}

	statusCode := http.StatusOK
	if health["status"] == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	respondJSON(w, statusCode, health)
}
