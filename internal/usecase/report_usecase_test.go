package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsena/internal/adapter/repository"
	"tsena/internal/domain/entity"
	"tsena/internal/usecase"
	"tsena/pkg/errors"
)

type reportFixture struct {
	store         *repository.MemoryStore
	notifications *usecase.NotificationUseCase
	reports       *usecase.ReportUseCase
	listing       *entity.Listing
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	notifications := usecase.NewNotificationUseCase(store.Notifications())
	reports := usecase.NewReportUseCase(store.Reports(), store.Listings(), notifications)

	listing := &entity.Listing{OwnerID: "seller-1", Title: "Mystery box", Price: 10}
	require.NoError(t, store.Listings().Create(ctx, listing))

	return &reportFixture{
		store:         store,
		notifications: notifications,
		reports:       reports,
		listing:       listing,
	}
}

func TestFileReport(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	report, err := f.reports.FileReport(ctx, "user-1", usecase.FileReportInput{
		ListingID:   f.listing.ID,
		Reason:      "scam",
		Description: "asks for payment outside the platform",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReportOpen, report.Status)

	// Filing alone notifies no one.
	count, err := f.notifications.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestFileReportValidation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.reports.FileReport(ctx, "user-1", usecase.FileReportInput{ListingID: f.listing.ID, Reason: "because"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.reports.FileReport(ctx, "seller-1", usecase.FileReportInput{ListingID: f.listing.ID, Reason: "scam"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.reports.FileReport(ctx, "user-1", usecase.FileReportInput{ListingID: "missing", Reason: "scam"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestDuplicateOpenReportConflicts(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.reports.FileReport(ctx, "user-1", usecase.FileReportInput{ListingID: f.listing.ID, Reason: "scam"})
	require.NoError(t, err)

	_, err = f.reports.FileReport(ctx, "user-1", usecase.FileReportInput{ListingID: f.listing.ID, Reason: "misleading"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestResolveReportNotifiesReporter(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	report, err := f.reports.FileReport(ctx, "user-1", usecase.FileReportInput{ListingID: f.listing.ID, Reason: "scam"})
	require.NoError(t, err)

	resolved, err := f.reports.ResolveReport(ctx, report.ID, usecase.ResolveReportInput{
		Outcome: "resolved",
		Note:    "listing removed from search",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReportResolved, resolved.Status)

	rows, total, err := f.notifications.ListNotifications(ctx, "user-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.NotificationReportOutcome, rows[0].Type)
	assert.Equal(t, "Your report has been resolved: listing removed from search", rows[0].Body)

	// Resolving twice is rejected.
	_, err = f.reports.ResolveReport(ctx, report.ID, usecase.ResolveReportInput{Outcome: "resolved"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestResolveReportHidesListing(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	report, err := f.reports.FileReport(ctx, "user-1", usecase.FileReportInput{ListingID: f.listing.ID, Reason: "prohibited_item"})
	require.NoError(t, err)

	_, err = f.reports.ResolveReport(ctx, report.ID, usecase.ResolveReportInput{
		Outcome:     "resolved",
		HideListing: true,
	})
	require.NoError(t, err)

	listing, err := f.store.Listings().GetByID(ctx, f.listing.ID)
	require.NoError(t, err)
	assert.True(t, listing.Hidden)

	// Reporter gets the outcome, owner gets the status change.
	reporterRows, _, err := f.notifications.ListNotifications(ctx, "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, reporterRows, 1)
	assert.Equal(t, entity.NotificationReportOutcome, reporterRows[0].Type)

	ownerRows, _, err := f.notifications.ListNotifications(ctx, "seller-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, ownerRows, 1)
	assert.Equal(t, entity.NotificationListingStatus, ownerRows[0].Type)
}
