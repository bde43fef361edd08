package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aerox-airport/lost-luggage/internal/models"
	"github.com/aerox-airport/lost-luggage/internal/services"
	"github.com/aerox-airport/lost-luggage/internal/storage"
)

// --- fakes ---

type mapLostStore struct {
	reports   map[string]*models.LostReport
	insertErr error
}

func newMapLostStore() *mapLostStore {
	return &mapLostStore{reports: map[string]*models.LostReport{}}
}

func (s *mapLostStore) List(ctx context.Context) ([]models.LostReport, error) {
	out := []models.LostReport{}
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (s *mapLostStore) Insert(ctx context.Context, report *models.LostReport) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	report.ID = primitive.NewObjectID()
	s.reports[report.ID.Hex()] = report
	return nil
}

func (s *mapLostStore) Get(ctx context.Context, id string) (*models.LostReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *mapLostStore) Update(ctx context.Context, id string, upd models.LostReportUpdate) (*models.LostReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if upd.PassengerName != nil {
		r.PassengerName = *upd.PassengerName
	}
	if upd.PassengerID != nil {
		r.PassengerID = *upd.PassengerID
	}
	if upd.Email != nil {
		r.Email = *upd.Email
	}
	if upd.Phone != nil {
		r.Phone = *upd.Phone
	}
	if upd.WhatsappNumber != nil {
		r.WhatsappNumber = *upd.WhatsappNumber
	}
	if upd.Airline != nil {
		r.Airline = *upd.Airline
	}
	if upd.FlightNumber != nil {
		r.FlightNumber = *upd.FlightNumber
	}
	if upd.FlightDate != nil {
		r.FlightDate = *upd.FlightDate
	}
	if upd.FlightTime != nil {
		r.FlightTime = *upd.FlightTime
	}
	if upd.BagSize != nil {
		r.BagSize = *upd.BagSize
	}
	if upd.BagColor != nil {
		r.BagColor = *upd.BagColor
	}
	if upd.BagBrand != nil {
		r.BagBrand = *upd.BagBrand
	}
	if upd.UniqueIdentifiers != nil {
		r.UniqueIdentifiers = *upd.UniqueIdentifiers
	}
	if upd.DateOfLoss != nil {
		r.DateOfLoss = *upd.DateOfLoss
	}
	if upd.LastSeenLocation != nil {
		r.LastSeenLocation = *upd.LastSeenLocation
	}
	if upd.QRCodeImage != nil {
		r.QRCodeImage = *upd.QRCodeImage
	}
	if upd.BagImage != nil {
		r.BagImage = *upd.BagImage
	}
	if upd.Status != nil {
		r.Status = *upd.Status
	}
	cp := *r
	return &cp, nil
}

func (s *mapLostStore) Delete(ctx context.Context, id string) (*models.LostReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.reports, id)
	return r, nil
}

type mapFoundStore struct {
	reports map[string]*models.FoundReport
}

func newMapFoundStore() *mapFoundStore {
	return &mapFoundStore{reports: map[string]*models.FoundReport{}}
}

func (s *mapFoundStore) List(ctx context.Context) ([]models.FoundReport, error) {
	out := []models.FoundReport{}
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (s *mapFoundStore) Insert(ctx context.Context, report *models.FoundReport) error {
	report.ID = primitive.NewObjectID()
	s.reports[report.ID.Hex()] = report
	return nil
}

func (s *mapFoundStore) Get(ctx context.Context, id string) (*models.FoundReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *mapFoundStore) Update(ctx context.Context, id string, upd models.FoundReportUpdate) (*models.FoundReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if upd.FinderName != nil {
		r.FinderName = *upd.FinderName
	}
	if upd.Phone != nil {
		r.Phone = *upd.Phone
	}
	if upd.Location != nil {
		r.Location = *upd.Location
	}
	if upd.FindDate != nil {
		r.FindDate = *upd.FindDate
	}
	if upd.FindTime != nil {
		r.FindTime = *upd.FindTime
	}
	if upd.BagDescription != nil {
		r.BagDescription = *upd.BagDescription
	}
	if upd.BagColor != nil {
		r.BagColor = *upd.BagColor
	}
	if upd.BagSize != nil {
		r.BagSize = *upd.BagSize
	}
	if upd.QRCodeImage != nil {
		r.QRCodeImage = *upd.QRCodeImage
	}
	if upd.BagImage != nil {
		r.BagImage = *upd.BagImage
	}
	if upd.Status != nil {
		r.Status = *upd.Status
	}
	cp := *r
	return &cp, nil
}

func (s *mapFoundStore) Delete(ctx context.Context, id string) (*models.FoundReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.reports, id)
	return r, nil
}

type fakeBookingStore struct {
	bookings map[string]*models.FlightBooking
}

func (s *fakeBookingStore) Get(ctx context.Context, id string) (*models.FlightBooking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

type fakeUploadStore struct {
	saved []string
}

func (s *fakeUploadStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > storage.MaxUploadBytes {
		return "", storage.ErrFileTooLarge
	}
	name := fmt.Sprintf("1700000000000-%s", fh.Filename)
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *fakeUploadStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	for _, name := range s.saved {
		if name == filename {
			return io.NopCloser(strings.NewReader("image-bytes")), nil
		}
	}
	return nil, errors.New("no such file")
}

func (s *fakeUploadStore) HealthCheck(ctx context.Context) error { return nil }

// fakeMessageClient records per-channel send attempts for the real Notifier.
type fakeMessageClient struct {
	smsTo      []string
	whatsappTo []string
	smsErr     error
	waErr      error
}

func (c *fakeMessageClient) SendSMS(ctx context.Context, to, body string) error {
	c.smsTo = append(c.smsTo, to)
	return c.smsErr
}

func (c *fakeMessageClient) SendWhatsApp(ctx context.Context, to, body string) error {
	c.whatsappTo = append(c.whatsappTo, to)
	return c.waErr
}

type fakeEvents struct {
	lostSubmitted  []models.LostReportSubmitted
	foundSubmitted []models.FoundReportSubmitted
	lostChanged    []models.LostStatusChanged
	foundChanged   []models.FoundStatusChanged
	err            error
}

func (e *fakeEvents) LostSubmitted(ctx context.Context, ev models.LostReportSubmitted) error {
	e.lostSubmitted = append(e.lostSubmitted, ev)
	return e.err
}

func (e *fakeEvents) FoundSubmitted(ctx context.Context, ev models.FoundReportSubmitted) error {
	e.foundSubmitted = append(e.foundSubmitted, ev)
	return e.err
}

func (e *fakeEvents) LostStatusChanged(ctx context.Context, ev models.LostStatusChanged) error {
	e.lostChanged = append(e.lostChanged, ev)
	return e.err
}

func (e *fakeEvents) FoundStatusChanged(ctx context.Context, ev models.FoundStatusChanged) error {
	e.foundChanged = append(e.foundChanged, ev)
	return e.err
}

func (e *fakeEvents) HealthCheck() error { return nil }

type fakeMailer struct {
	sentTo []string
	png    []byte
	err    error
}

func (m *fakeMailer) SendQRCode(to string, png []byte) error {
	if m.err != nil {
		return m.err
	}
	m.sentTo = append(m.sentTo, to)
	m.png = png
	return nil
}

type fakePinger struct{ err error }

func (p *fakePinger) HealthCheck(ctx context.Context) error { return p.err }

// --- test env ---

type testEnv struct {
	lost     *mapLostStore
	found    *mapFoundStore
	bookings *fakeBookingStore
	uploads  *fakeUploadStore
	client   *fakeMessageClient
	events   *fakeEvents
	mailer   *fakeMailer
	router   *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		lost:     newMapLostStore(),
		found:    newMapFoundStore(),
		bookings: &fakeBookingStore{bookings: map[string]*models.FlightBooking{}},
		uploads:  &fakeUploadStore{},
		client:   &fakeMessageClient{},
		events:   &fakeEvents{},
		mailer:   &fakeMailer{},
	}

	notifier := services.NewNotifier(env.client, "lostandfound@aerox.com", "+1 (123) 456-7890")
	h := NewHandler(
		env.lost,
		env.found,
		env.bookings,
		env.uploads,
		notifier,
		env.events,
		env.mailer,
		&fakePinger{},
	)

	r := mux.NewRouter()
	r.HandleFunc("/lost", h.ListLost).Methods("GET")
	r.HandleFunc("/lost", h.CreateLost).Methods("POST")
	r.HandleFunc("/lost/{id}", h.GetLost).Methods("GET")
	r.HandleFunc("/lost/{id}", h.UpdateLost).Methods("PUT")
	r.HandleFunc("/lost/{id}", h.DeleteLost).Methods("DELETE")
	r.HandleFunc("/found", h.ListFound).Methods("GET")
	r.HandleFunc("/found", h.CreateFound).Methods("POST")
	r.HandleFunc("/found/{id}", h.GetFound).Methods("GET")
	r.HandleFunc("/found/{id}", h.UpdateFound).Methods("PUT")
	r.HandleFunc("/found/{id}", h.DeleteFound).Methods("DELETE")
	r.HandleFunc("/uploads/{filename}", h.ServeUpload).Methods("GET")
	r.HandleFunc("/api/bookings/{id}", h.GetBooking).Methods("GET")
	r.HandleFunc("/api/send-qr-email", h.SendQREmail).Methods("POST")
	r.HandleFunc("/api/qr/encode", h.EncodeQR).Methods("POST")
	r.HandleFunc("/api/qr/decode", h.DecodeQR).Methods("POST")
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")
	env.router = r

	return env
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// multipartRequest builds a multipart/form-data request from form fields and
// optional files keyed by field name.
func multipartRequest(t *testing.T, method, url string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(name, name+".png")
		if err != nil {
			t.Fatalf("create form file %s: %v", name, err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write form file %s: %v", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
