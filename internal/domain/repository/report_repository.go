package repository

import (
	"context"

	"tsena/internal/domain/entity"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	GetByReporterAndListing(ctx context.Context, reporterID, listingID string) (*entity.Report, error)
	Update(ctx context.Context, report *entity.Report) error
}
