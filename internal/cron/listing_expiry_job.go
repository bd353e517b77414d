package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

// ListingExpiryJobParams configure the listing expiry sweep.
type ListingExpiryJobParams struct {
	Logger   *logger.Logger
	Catalog  listingExpirer
	Activity expiryActivityRecorder
}

type listingExpirer interface {
	ExpireListings(ctx context.Context, now time.Time) ([]models.Listing, error)
}

type expiryActivityRecorder interface {
	Record(ctx context.Context, input activity.RecordInput) error
}

// NewListingExpiryJob builds the job that flips stale available listings to
// expired and tells each farmer about it.
func NewListingExpiryJob(params ListingExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &listingExpiryJob{
		logg:     params.Logger,
		catalog:  params.Catalog,
		activity: params.Activity,
		now:      time.Now,
	}, nil
}

type listingExpiryJob struct {
	logg     *logger.Logger
	catalog  listingExpirer
	activity expiryActivityRecorder
	now      func() time.Time
}

func (j *listingExpiryJob) Name() string { return "listing-expiry" }

func (j *listingExpiryJob) Run(ctx context.Context) error {
	expired, err := j.catalog.ExpireListings(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("listing expiry sweep: %w", err)
	}

	// The status flips are already persisted; feed entries are reported but
	// never undo the sweep.
	var recordErrs error
	for i := range expired {
		listing := &expired[i]
		err := j.activity.Record(ctx, activity.RecordInput{
			UserID:  listing.FarmerID,
			Type:    enums.ActivityTypeListingExpired,
			Message: fmt.Sprintf("Your listing %q has expired", listing.Title),
		})
		if err != nil {
			recordErrs = multierr.Append(recordErrs, fmt.Errorf("listing %s: %w", listing.ID, err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"listings_expired": len(expired),
	})
	j.logg.Info(logCtx, "listing expiry sweep complete")
	return recordErrs
}
