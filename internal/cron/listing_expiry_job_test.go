package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

func TestListingExpiryJobRecordsPerFarmerActivity(t *testing.T) {
	now := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)
	farmerA, farmerB := uuid.New(), uuid.New()
	expirer := &fakeListingExpirer{expired: []models.Listing{
		{ID: uuid.New(), FarmerID: farmerA, Title: "Tomatoes"},
		{ID: uuid.New(), FarmerID: farmerB, Title: "Beans"},
	}}
	recorder := &fakeExpiryRecorder{}
	job := newListingExpiryJob(t, expirer, recorder)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !expirer.lastNow.Equal(now) {
		t.Fatalf("expected sweep at %s, got %s", now, expirer.lastNow)
	}
	if len(recorder.inputs) != 2 {
		t.Fatalf("expected 2 feed entries, got %d", len(recorder.inputs))
	}
	if recorder.inputs[0].UserID != farmerA || recorder.inputs[1].UserID != farmerB {
		t.Fatal("entries not attributed to the listing farmers")
	}
	if recorder.inputs[0].Type != enums.ActivityTypeListingExpired {
		t.Fatalf("expected listing_expired, got %s", recorder.inputs[0].Type)
	}
}

func TestListingExpiryJobPropagatesSweepErrors(t *testing.T) {
	expirer := &fakeListingExpirer{err: errors.New("boom")}
	job := newListingExpiryJob(t, expirer, &fakeExpiryRecorder{})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestListingExpiryJobReportsRecordFailures(t *testing.T) {
	expirer := &fakeListingExpirer{expired: []models.Listing{
		{ID: uuid.New(), FarmerID: uuid.New(), Title: "Carrots"},
		{ID: uuid.New(), FarmerID: uuid.New(), Title: "Leeks"},
	}}
	recorder := &fakeExpiryRecorder{err: errors.New("feed down")}
	job := newListingExpiryJob(t, expirer, recorder)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated record error")
	}
	// Every listing is still attempted.
	if len(recorder.inputs) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(recorder.inputs))
	}
}

func newListingExpiryJob(t *testing.T, expirer *fakeListingExpirer, recorder *fakeExpiryRecorder) *listingExpiryJob {
	t.Helper()
	jobIface, err := NewListingExpiryJob(ListingExpiryJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Catalog:  expirer,
		Activity: recorder,
	})
	if err != nil {
		t.Fatalf("NewListingExpiryJob: %v", err)
	}
	job, ok := jobIface.(*listingExpiryJob)
	if !ok {
		t.Fatalf("expected listingExpiryJob, got %T", jobIface)
	}
	return job
}

type fakeListingExpirer struct {
	expired []models.Listing
	err     error
	lastNow time.Time
}

func (f *fakeListingExpirer) ExpireListings(ctx context.Context, now time.Time) ([]models.Listing, error) {
	f.lastNow = now
	if f.err != nil {
		return nil, f.err
	}
	return f.expired, nil
}

type fakeExpiryRecorder struct {
	inputs []activity.RecordInput
	err    error
}

func (f *fakeExpiryRecorder) Record(ctx context.Context, input activity.RecordInput) error {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return f.err
	}
	return nil
}
