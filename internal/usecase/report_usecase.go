package usecase

import (
	"context"
	"log"
	"time"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
)

var reportReasons = map[string]bool{
	"prohibited_item": true,
	"counterfeit":     true,
	"misleading":      true,
	"offensive":       true,
	"scam":            true,
	"other":           true,
}

type ReportUseCase struct {
	reportRepo    repository.ReportRepository
	listingRepo   repository.ListingRepository
	notifications *NotificationUseCase
}

func NewReportUseCase(
	reportRepo repository.ReportRepository,
	listingRepo repository.ListingRepository,
	notifications *NotificationUseCase,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo:    reportRepo,
		listingRepo:   listingRepo,
		notifications: notifications,
	}
}

type FileReportInput struct {
	ListingID   string `json:"listing_id" validate:"required"`
	Reason      string `json:"reason" validate:"required"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func (uc *ReportUseCase) FileReport(ctx context.Context, reporterID string, input FileReportInput) (*entity.Report, error) {
	if !reportReasons[input.Reason] {
		return nil, errors.BadRequest("Invalid report reason", nil)
	}

	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		log.Printf("FileReport Error: Listing %s not found: %v", input.ListingID, err)
		return nil, errors.NotFound("Listing", err)
	}

	if listing.OwnerID == reporterID {
		return nil, errors.BadRequest("You cannot report your own listing", nil)
	}

	if existing, err := uc.reportRepo.GetByReporterAndListing(ctx, reporterID, input.ListingID); err == nil && existing.Status == entity.ReportOpen {
		return nil, errors.Conflict("You have already reported this listing", nil)
	} else if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	report := &entity.Report{
		ListingID:   input.ListingID,
		ReporterID:  reporterID,
		Reason:      input.Reason,
		Description: input.Description,
		Status:      entity.ReportOpen,
	}
	if err := uc.reportRepo.Create(ctx, report); err != nil {
		log.Printf("FileReport Error: Failed to create report for listing %s: %v", input.ListingID, err)
		return nil, err
	}

	return report, nil
}

type ResolveReportInput struct {
	Outcome     string `json:"outcome" validate:"required,oneof=reviewed resolved"`
	Note        string `json:"note,omitempty" validate:"omitempty,max=1000"`
	HideListing bool   `json:"hide_listing"`
}

// ResolveReport closes out a moderation report. The reporter always
// gets a report_outcome notification; hiding the listing additionally
// notifies the owner.
func (uc *ReportUseCase) ResolveReport(ctx context.Context, reportID string, input ResolveReportInput) (*entity.Report, error) {
	report, err := uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		log.Printf("ResolveReport Error: Report %s not found: %v", reportID, err)
		return nil, errors.NotFound("Report", err)
	}

	if report.Status != entity.ReportOpen {
		return nil, errors.Conflict("Report has already been handled", nil)
	}

	report.Status = input.Outcome
	report.UpdatedAt = time.Now()
	if err := uc.reportRepo.Update(ctx, report); err != nil {
		log.Printf("ResolveReport Error: Failed to update report %s: %v", reportID, err)
		return nil, err
	}

	if input.HideListing {
		if err := uc.hideListing(ctx, report.ListingID); err != nil {
			log.Printf("ResolveReport Warning: Failed to hide listing %s: %v", report.ListingID, err)
		}
	}

	body := "Your report has been " + report.Status
	if input.Note != "" {
		body = body + ": " + input.Note
	}
	if _, err := uc.notifications.Publish(ctx, PublishInput{
		RecipientID: report.ReporterID,
		Type:        entity.NotificationReportOutcome,
		Title:       "Report update",
		Body:        body,
		Link:        "/listings/" + report.ListingID,
	}); err != nil {
		log.Printf("ResolveReport Warning: Failed to publish outcome notification for report %s: %v", reportID, err)
	}

	return report, nil
}

func (uc *ReportUseCase) hideListing(ctx context.Context, listingID string) error {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.Hidden {
		return nil
	}

	listing.Hidden = true
	listing.UpdatedAt = time.Now()
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return err
	}

	if _, err := uc.notifications.Publish(ctx, PublishInput{
		RecipientID: listing.OwnerID,
		Type:        entity.NotificationListingStatus,
		Title:       "Listing hidden",
		Body:        listing.Title + " has been hidden after review",
		Link:        "/listings/" + listing.ID,
	}); err != nil {
		log.Printf("hideListing Warning: Failed to notify owner of listing %s: %v", listing.ID, err)
	}

	return nil
}
