package repository

import (
	"context"

	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"gorm.io/gorm"
)

// ReportRepository report data access interface
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	ListByReporter(ctx context.Context, reporterID uint64, page, limit int) ([]*domain.Report, int64, error)
	List(ctx context.Context, status *domain.ReportStatus, page, limit int) ([]*domain.Report, int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) ListByReporter(ctx context.Context, reporterID uint64, page, limit int) ([]*domain.Report, int64, error) {
	return r.page(r.db.WithContext(ctx).Where("reporter_id = ?", reporterID), page, limit)
}

func (r *reportRepository) List(ctx context.Context, status *domain.ReportStatus, page, limit int) ([]*domain.Report, int64, error) {
	query := r.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.page(query, page, limit)
}

func (r *reportRepository) page(query *gorm.DB, page, limit int) ([]*domain.Report, int64, error) {
	var total int64
	if err := query.Model(&domain.Report{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []*domain.Report
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}
