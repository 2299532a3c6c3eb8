package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ngo-site-backend/internal/models"
	"ngo-site-backend/internal/repository"
	"ngo-site-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

type fakeStorage struct {
	mu   sync.Mutex
	puts int
}

func (f *fakeStorage) Put(_ context.Context, folder, _ string, _ io.Reader, _ int64) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	key := fmt.Sprintf("%s/obj-%d.jpg", folder, f.puts)
	return "https://cdn.test/" + key, key, nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error { return nil }

type fakeDonationStore struct {
	mu        sync.Mutex
	donations []*models.Donation
}

func (f *fakeDonationStore) Create(_ context.Context, d *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *d
	f.donations = append([]*models.Donation{&copied}, f.donations...)
	return nil
}

func (f *fakeDonationStore) List(_ context.Context) ([]*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Donation, len(f.donations))
	copy(out, f.donations)
	return out, nil
}

func (f *fakeDonationStore) SetVerified(_ context.Context, id string) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.donations {
		if d.ID == id {
			d.IsVerified = true
			copied := *d
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDonationStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.donations {
		if d.ID == id {
			f.donations = append(f.donations[:i], f.donations[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func newDonationRouter(store *fakeDonationStore) http.Handler {
	svc := services.NewDonationService(store, &fakeStorage{})
	h := NewDonationHandler(svc, services.NewFeedHub())

	r := chi.NewRouter()
	r.Post("/api/donations", h.Submit)
	r.Get("/api/donations", h.List)
	r.Put("/api/donations/{id}/verify", h.Verify)
	r.Delete("/api/donations/{id}", h.Delete)
	return r
}

func submitRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if withFile {
		part, err := mw.CreateFormFile("screenshot", "proof.jpg")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("jpeg bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/donations", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func donorFields() map[string]string {
	return map[string]string{
		"donorName": "Asha",
		"email":     "a@x.com",
		"phone":     "9999999999",
		"amount":    "500",
	}
}

func TestSubmitDonation(t *testing.T) {
	router := newDonationRouter(&fakeDonationStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, submitRequest(t, donorFields(), true))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var donation models.Donation
	if err := json.NewDecoder(rec.Body).Decode(&donation); err != nil {
		t.Fatal(err)
	}
	if donation.Amount != 500 {
		t.Fatalf("expected amount 500, got %v", donation.Amount)
	}
	if donation.IsVerified {
		t.Fatal("new donation must not be verified")
	}
	if donation.ID == "" || donation.ScreenshotURL == "" {
		t.Fatalf("incomplete record: %+v", donation)
	}
}

func TestSubmitDonationWithoutScreenshot(t *testing.T) {
	store := &fakeDonationStore{}
	router := newDonationRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, submitRequest(t, donorFields(), false))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(store.donations) != 0 {
		t.Fatal("no record must be persisted without a screenshot")
	}
}

func TestSubmitDonationBadAmount(t *testing.T) {
	router := newDonationRouter(&fakeDonationStore{})

	for _, amount := range []string{"", "abc", "-5", "0"} {
		fields := donorFields()
		fields["amount"] = amount
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, submitRequest(t, fields, true))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("amount %q: expected 400, got %d", amount, rec.Code)
		}
	}
}

func TestListDonationsNewestFirst(t *testing.T) {
	store := &fakeDonationStore{}
	router := newDonationRouter(store)

	for i := 0; i < 3; i++ {
		fields := donorFields()
		fields["donorName"] = fmt.Sprintf("Donor %d", i)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, submitRequest(t, fields, true))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		time.Sleep(time.Millisecond)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donations", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var donations []*models.Donation
	if err := json.NewDecoder(rec.Body).Decode(&donations); err != nil {
		t.Fatal(err)
	}
	if len(donations) != 3 {
		t.Fatalf("expected 3 donations, got %d", len(donations))
	}
	for i := 1; i < len(donations); i++ {
		if donations[i].CreatedAt.After(donations[i-1].CreatedAt) {
			t.Fatal("donations must be ordered newest first")
		}
	}
}

func TestListDonationsEmpty(t *testing.T) {
	router := newDonationRouter(&fakeDonationStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donations", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body == "null\n" {
		t.Fatal("empty listing must encode as an array, not null")
	}
}

func TestVerifyDonationTwice(t *testing.T) {
	store := &fakeDonationStore{}
	router := newDonationRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, submitRequest(t, donorFields(), true))
	var created models.Donation
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/donations/"+created.ID+"/verify", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("verify call %d: expected 200, got %d", i+1, rec.Code)
		}
		var updated models.Donation
		if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
			t.Fatal(err)
		}
		if !updated.IsVerified {
			t.Fatalf("verify call %d: record not verified", i+1)
		}
	}
}

func TestVerifyMissingDonation(t *testing.T) {
	router := newDonationRouter(&fakeDonationStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/donations/no-such-id/verify", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteDonation(t *testing.T) {
	store := &fakeDonationStore{}
	router := newDonationRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, submitRequest(t, donorFields(), true))
	var created models.Donation
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/donations/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Gone from the listing
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donations", nil))
	var donations []*models.Donation
	if err := json.NewDecoder(rec.Body).Decode(&donations); err != nil {
		t.Fatal(err)
	}
	if len(donations) != 0 {
		t.Fatalf("expected empty listing after delete, got %d records", len(donations))
	}

	// Deleting again reports not found instead of crashing
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/donations/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated delete, got %d", rec.Code)
	}
}
