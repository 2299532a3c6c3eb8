package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"ngo-site-backend/internal/models"
	"ngo-site-backend/internal/repository"

	"github.com/google/uuid"
)

type fakeStorage struct {
	mu      sync.Mutex
	puts    int
	putErr  error
	deleted []string
}

func (f *fakeStorage) Put(_ context.Context, folder, _ string, _ io.Reader, _ int64) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", "", f.putErr
	}
	f.puts++
	key := fmt.Sprintf("%s/obj-%d.jpg", folder, f.puts)
	return "https://cdn.test/" + key, key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeDonationStore struct {
	mu         sync.Mutex
	donations  []*models.Donation
	createErr  error
	storeCalls int
}

func (f *fakeDonationStore) Create(_ context.Context, d *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
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
	f.storeCalls++
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
	f.storeCalls++
	for i, d := range f.donations {
		if d.ID == id {
			f.donations = append(f.donations[:i], f.donations[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func validSubmission() SubmitDonationRequest {
	return SubmitDonationRequest{
		DonorName:   "Asha",
		Email:       "a@x.com",
		Phone:       "9999999999",
		Amount:      500,
		File:        strings.NewReader("jpeg bytes"),
		Size:        9,
		ContentType: "image/jpeg",
	}
}

func TestSubmitCreatesUnverifiedRecord(t *testing.T) {
	store := &fakeDonationStore{}
	svc := NewDonationService(store, &fakeStorage{})

	donation, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatal(err)
	}
	if donation.IsVerified {
		t.Fatal("new donation must not be verified")
	}
	if donation.Amount != 500 {
		t.Fatalf("unexpected amount: %v", donation.Amount)
	}
	if donation.ScreenshotURL == "" {
		t.Fatal("expected screenshot URL to be set")
	}
	if donation.ID == "" || donation.CreatedAt.IsZero() {
		t.Fatalf("expected generated identity, got %+v", donation)
	}
}

func TestSubmitGeneratesUniqueIDs(t *testing.T) {
	store := &fakeDonationStore{}
	svc := NewDonationService(store, &fakeStorage{})

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		donation, err := svc.Submit(context.Background(), validSubmission())
		if err != nil {
			t.Fatal(err)
		}
		if seen[donation.ID] {
			t.Fatalf("duplicate donation id %s", donation.ID)
		}
		seen[donation.ID] = true
	}
	if len(store.donations) != 5 {
		t.Fatalf("expected 5 records, got %d", len(store.donations))
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewDonationService(&fakeDonationStore{}, &fakeStorage{})

	cases := []struct {
		name   string
		mutate func(*SubmitDonationRequest)
	}{
		{"missing file", func(r *SubmitDonationRequest) { r.File = nil }},
		{"missing name", func(r *SubmitDonationRequest) { r.DonorName = "  " }},
		{"missing email", func(r *SubmitDonationRequest) { r.Email = "" }},
		{"missing phone", func(r *SubmitDonationRequest) { r.Phone = "" }},
		{"zero amount", func(r *SubmitDonationRequest) { r.Amount = 0 }},
		{"negative amount", func(r *SubmitDonationRequest) { r.Amount = -10 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSubmission()
			tc.mutate(&req)
			if _, err := svc.Submit(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSubmitRejectionPersistsNothing(t *testing.T) {
	store := &fakeDonationStore{}
	storage := &fakeStorage{}
	svc := NewDonationService(store, storage)

	req := validSubmission()
	req.File = nil
	if _, err := svc.Submit(context.Background(), req); err == nil {
		t.Fatal("expected error")
	}
	if len(store.donations) != 0 {
		t.Fatal("rejected submission must not persist a record")
	}
	if storage.puts != 0 {
		t.Fatal("rejected submission must not upload anything")
	}
}

func TestSubmitCleansUpUploadOnInsertFailure(t *testing.T) {
	store := &fakeDonationStore{createErr: errors.New("connection reset")}
	storage := &fakeStorage{}
	svc := NewDonationService(store, storage)

	if _, err := svc.Submit(context.Background(), validSubmission()); err == nil {
		t.Fatal("expected error")
	}
	if len(storage.deleted) != 1 {
		t.Fatalf("expected one compensating delete, got %d", len(storage.deleted))
	}
	if storage.deleted[0] != "donations/obj-1.jpg" {
		t.Fatalf("unexpected deleted key: %s", storage.deleted[0])
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	store := &fakeDonationStore{}
	svc := NewDonationService(store, &fakeStorage{})

	donation, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatal(err)
	}

	first, err := svc.Verify(context.Background(), donation.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Verify(context.Background(), donation.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !first.IsVerified || !second.IsVerified {
		t.Fatal("verify must set the flag on both calls")
	}
}

func TestVerifyMissingDonation(t *testing.T) {
	svc := NewDonationService(&fakeDonationStore{}, &fakeStorage{})
	missing := uuid.New().String()
	if _, err := svc.Verify(context.Background(), missing); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMalformedIDNeverReachesStore(t *testing.T) {
	store := &fakeDonationStore{}
	svc := NewDonationService(store, &fakeStorage{})

	if _, err := svc.Verify(context.Background(), "no-such-id"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "no-such-id"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.storeCalls != 0 {
		t.Fatalf("malformed id must be rejected before the store, got %d calls", store.storeCalls)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	store := &fakeDonationStore{}
	svc := NewDonationService(store, &fakeStorage{})

	donation, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), donation.ID); err != nil {
		t.Fatal(err)
	}
	listed, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(listed))
	}

	// Second delete finds nothing
	if err := svc.Delete(context.Background(), donation.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
